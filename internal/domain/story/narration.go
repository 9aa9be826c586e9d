package story

import (
	"strings"

	"github.com/myrontuttle/storytime/internal/domain/character"
)

// Voice genders understood by the narrator.
const (
	VoiceMale    = "MALE"
	VoiceFemale  = "FEMALE"
	VoiceNeutral = "NEUTRAL"
)

// OutroText is read over the closing card.
const OutroText = "The End. Thank you for watching."

// Clip is one narrated passage and the audio file it is synthesized to.
type Clip struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	File  string `json:"file"`
}

// Byline credits the models that wrote and illustrated the story.
func (s *Story) Byline() string {
	byline := "Written by " + s.Author + "."
	if s.Illustrator != "" {
		byline += " Illustrated by " + s.Illustrator + "."
	}
	return byline
}

// TitleText is read over the title card.
func (s *Story) TitleText() string {
	parts := []string{s.Title + "."}
	if s.Subtitle != "" {
		parts = append(parts, s.Subtitle+".")
	}
	parts = append(parts, s.Byline())
	return strings.Join(parts, " ")
}

// NarrationScript lists what is narrated, in playback order: the title
// card, every part of every scene, then the outro. Each scene contributes
// one clip per part, so clips line up with images in groups.
func (s *Story) NarrationScript() []Clip {
	voice := s.Voice()
	paths := s.Paths()

	texts := []string{s.TitleText()}
	for _, act := range s.Acts {
		for _, sc := range act {
			for _, p := range sc.Parts {
				texts = append(texts, p.Text)
			}
		}
	}
	texts = append(texts, OutroText)

	clips := make([]Clip, 0, len(texts))
	for i, text := range texts {
		clips = append(clips, Clip{Text: text, Voice: voice, File: paths.AudioFile(i)})
	}
	return clips
}

// Voice picks the narrator voice matching the protagonist.
func (s *Story) Voice() string {
	lead := s.Cast.Get(character.Protagonist)
	switch {
	case lead == nil:
		return VoiceNeutral
	case lead.Gender == character.Male:
		return VoiceMale
	case lead.Gender == character.Female:
		return VoiceFemale
	default:
		return VoiceNeutral
	}
}

// NarrationFiles returns the synthesized audio files in playback order.
func (s *Story) NarrationFiles() []string {
	files := make([]string, 0, len(s.Narration))
	for _, c := range s.Narration {
		files = append(files, c.File)
	}
	return files
}
