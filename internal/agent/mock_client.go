package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockCall records a single request made to a MockClient.
type MockCall struct {
	Prompt string
	Params TextParams
}

// MockClient provides fake text and image responses for testing and for
// offline runs.
type MockClient struct {
	mu        sync.Mutex
	responses map[string]string
	calls     []MockCall
	images    []string
	err       error
}

// NewMockClient creates a mock client with canned titles and captions.
// Scene parts are numbered in the order they are requested.
func NewMockClient() *MockClient {
	return &MockClient{
		responses: map[string]string{
			"Write a title for":           "The Lantern Keeper: A Tale of Two Winters",
			"caption for an illustration": "Two figures stand beneath a lantern at the edge of a frozen wood.",
		},
	}
}

// SetResponse returns response for every prompt starting with or containing
// match.
func (m *MockClient) SetResponse(match, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[match] = response
}

// SetError makes every subsequent call fail with err.
func (m *MockClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the text requests received so far.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// Images returns the image prompts received so far.
func (m *MockClient) Images() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.images...)
}

func (m *MockClient) Model() string {
	return "mock"
}

func (m *MockClient) GenerateText(ctx context.Context, prompt string, params TextParams) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Prompt: prompt, Params: params})
	if m.err != nil {
		return "", m.err
	}

	for match, response := range m.responses {
		if strings.Contains(prompt, match) {
			return response, nil
		}
	}
	return fmt.Sprintf("Mock part %d.", len(m.calls)), nil
}

func (m *MockClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.images = append(m.images, prompt)
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("https://images.invalid/%d.png", len(m.images)), nil
}
