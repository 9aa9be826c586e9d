// Package narrator synthesizes narration audio from story text.
package narrator

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/myrontuttle/storytime/internal/core"
	"github.com/myrontuttle/storytime/internal/storage"
)

const (
	// MaxInputLength bounds the SSML document sent per request.
	MaxInputLength = 5000

	IntroBreak = `<speak><break time="2s"/>`
	OutroBreak = `<break time="2s"/></speak>`
)

// Voice genders.
const (
	Male    = "MALE"
	Female  = "FEMALE"
	Neutral = "NEUTRAL"
)

// Speech turns an SSML document into MP3 audio.
type Speech interface {
	SynthesizeSSML(ctx context.Context, ssml, languageCode, gender string) ([]byte, error)
}

// Narrator writes synthesized clips to storage.
type Narrator struct {
	speech   Speech
	store    storage.Storage
	language string
	retry    core.RetryPolicy
	logger   *slog.Logger
}

type Option func(*Narrator)

func WithLanguage(code string) Option {
	return func(n *Narrator) {
		if code != "" {
			n.language = code
		}
	}
}

func WithRetry(p core.RetryPolicy) Option {
	return func(n *Narrator) { n.retry = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(n *Narrator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

func New(speech Speech, store storage.Storage, opts ...Option) *Narrator {
	n := &Narrator{
		speech:   speech,
		store:    store,
		language: "en-US",
		retry:    core.DefaultRetryPolicy(),
		logger:   slog.Default().With("component", "narrator"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Synthesize narrates text in the given voice gender and saves the MP3 to
// outputFile within the narrator's storage.
func (n *Narrator) Synthesize(ctx context.Context, text, voiceGender, outputFile string) error {
	ssml := n.SSML(text)
	gender := Gender(voiceGender)

	start := time.Now()
	var audio []byte
	err := core.Retry(ctx, n.retry, n.logger, "synthesize speech", func(ctx context.Context) error {
		var err error
		audio, err = n.speech.SynthesizeSSML(ctx, ssml, n.language, gender)
		return err
	})
	if err != nil {
		return fmt.Errorf("synthesizing %s: %w", outputFile, err)
	}

	if err := n.store.Save(ctx, outputFile, audio); err != nil {
		return fmt.Errorf("saving narration: %w", err)
	}

	n.logger.Info("audio content written",
		"file", outputFile,
		"bytes", len(audio),
		"voice", gender,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// SSML wraps text in two second pauses. The escaped text is truncated so
// the whole document fits in MaxInputLength bytes.
func (n *Narrator) SSML(text string) string {
	budget := MaxInputLength - len(IntroBreak) - len(OutroBreak)
	body := escape(text)
	if len(body) > budget {
		if n != nil && n.logger != nil {
			n.logger.Warn("input text is too long, truncating", "max_bytes", budget, "bytes", len(body))
		}
		body = escapePrefix(text, budget)
	}
	return IntroBreak + body + OutroBreak
}

func escape(text string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(text))
	return b.String()
}

// escapePrefix escapes text one rune at a time, stopping before the output
// would exceed limit bytes. Entities and UTF-8 sequences are never split.
func escapePrefix(text string, limit int) string {
	var b strings.Builder
	for _, r := range text {
		e := escape(string(r))
		if b.Len()+len(e) > limit {
			break
		}
		b.WriteString(e)
	}
	return b.String()
}

// Gender normalizes a voice gender; anything unrecognised is neutral.
func Gender(g string) string {
	switch strings.ToUpper(strings.TrimSpace(g)) {
	case Male:
		return Male
	case Female:
		return Female
	default:
		return Neutral
	}
}
