package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// NamingStrategy defines how a story's output files are named.
type NamingStrategy int

const (
	// NameByTitle uses the alphanumeric characters of the title (default)
	NameByTitle NamingStrategy = iota
	// NameByTimestamp uses timestamp + short ID
	NameByTimestamp
	// NameDescriptive uses timestamp + sanitized title + short ID
	NameDescriptive
)

// ParseNamingStrategy maps a configuration value to a strategy. Unknown
// values fall back to NameByTitle.
func ParseNamingStrategy(s string) NamingStrategy {
	switch strings.ToLower(s) {
	case "timestamp":
		return NameByTimestamp
	case "descriptive":
		return NameDescriptive
	default:
		return NameByTitle
	}
}

func (s NamingStrategy) String() string {
	switch s {
	case NameByTimestamp:
		return "timestamp"
	case NameDescriptive:
		return "descriptive"
	default:
		return "title"
	}
}

// BaseName derives the file name stem shared by a story's JSON document,
// image and audio directories, and video.
func BaseName(title, id string, strategy NamingStrategy, now time.Time) string {
	shortID := ShortID(id)

	switch strategy {
	case NameByTimestamp:
		// Format: 2025-07-16_1530_82f06b15
		return fmt.Sprintf("%s_%s", now.Format("2006-01-02_1504"), shortID)

	case NameDescriptive:
		// Format: 2025-07-16_1530_the-dragons-daughter_82f06b15
		return fmt.Sprintf("%s_%s_%s", now.Format("2006-01-02_1504"), sanitizeForFilename(title, 30), shortID)

	default:
		if name := Alnum(title); name != "" {
			return name
		}
		if shortID != "" {
			return "story_" + shortID
		}
		return "story"
	}
}

// ShortID is the leading eight characters of id.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// UniqueBase appends the short ID to base, for a story whose base name is
// already taken by another story.
func UniqueBase(base, id string) string {
	if shortID := ShortID(id); shortID != "" && !strings.HasSuffix(base, "_"+shortID) {
		return base + "_" + shortID
	}
	return base
}

// Alnum keeps only the letters and digits of s.
func Alnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sanitizeForFilename converts a string to a safe filename component
func sanitizeForFilename(s string, maxLen int) string {
	s = strings.ToLower(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || strings.ContainsRune("/\\:.-_", r):
			b.WriteRune('-')
		}
	}
	s = b.String()

	// Remove multiple consecutive hyphens
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}

	s = strings.Trim(s, "-")

	if len(s) > maxLen {
		s = s[:maxLen]
		s = strings.TrimRight(s, "-")
	}

	if s == "" {
		s = "story"
	}

	return s
}

// StoryPaths locates a story's artifacts relative to the stories directory.
type StoryPaths struct {
	Base string
}

func (p StoryPaths) StoryFile() string {
	return p.Base + ".json"
}

func (p StoryPaths) ImagesDir() string {
	return p.Base + "Images"
}

// ImageFile is the downloaded illustration for a scene label such as "A1S2".
func (p StoryPaths) ImageFile(label string) string {
	return filepath.Join(p.ImagesDir(), label+".png")
}

func (p StoryPaths) AudioDir() string {
	return p.Base + "Audio"
}

// AudioFile is the i-th narration clip, zero padded so the clips sort in
// playback order.
func (p StoryPaths) AudioFile(i int) string {
	return filepath.Join(p.AudioDir(), fmt.Sprintf("%03d.mp3", i))
}

func (p StoryPaths) VideoFile() string {
	return p.Base + ".mp4"
}
