package narrator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"

	"github.com/myrontuttle/storytime/internal/config"
	"github.com/myrontuttle/storytime/internal/core"
)

// GoogleSpeech synthesizes speech with Google Cloud Text-to-Speech.
type GoogleSpeech struct {
	svc *texttospeech.Service
}

// NewGoogleSpeech authenticates with, in order: the configured API key, the
// configured service account file, or application default credentials.
func NewGoogleSpeech(ctx context.Context, cfg config.NarrationConfig, opts ...option.ClientOption) (*GoogleSpeech, error) {
	switch {
	case len(opts) > 0:
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		creds, err := google.FindDefaultCredentials(ctx, texttospeech.CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("finding google credentials: %w", core.ErrNoAPIKey)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating text-to-speech service: %w", err)
	}
	return &GoogleSpeech{svc: svc}, nil
}

func (g *GoogleSpeech) SynthesizeSSML(ctx context.Context, ssml, languageCode, gender string) ([]byte, error) {
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Ssml: ssml},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: languageCode,
			SsmlGender:   gender,
		},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}

	resp, err := g.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decoding audio content: %w", err)
	}
	return audio, nil
}

// classify exposes HTTP failures as *core.APIError so they retry like the
// other providers.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &core.APIError{Provider: "texttospeech", Status: gerr.Code, Body: gerr.Message}
	}
	return fmt.Errorf("%w: %w", core.ErrNetworkError, err)
}
