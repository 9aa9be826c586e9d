// Package imageset illustrates a story: one generated image per scene in a
// shared art medium and style.
package imageset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/myrontuttle/storytime/internal/agent"
	"github.com/myrontuttle/storytime/internal/domain/kind"
	"github.com/myrontuttle/storytime/internal/domain/scene"
	"github.com/myrontuttle/storytime/internal/random"
)

var ArtMediums = []string{
	"charcoal",
	"tempera",
	"oil painting",
	"stained glass",
	"watercolor",
	"acrylic",
	"chalk",
	"pen and ink",
	"pencil",
	"soft pastel",
	"colored pencil",
	"crayon",
	"oil pastel",
	"collage",
	"airbrush",
	"photographic",
	"digital art",
	"pixel art",
	"vector art",
	"photobashing",
	"photo painting",
	"digital collage",
	"3d art",
}

var ArtStyles = []string{
	"primitivist",
	"folk art",
	"renaissance",
	"ukiyo-e",
	"figurative",
	"surreal",
	"expressionist",
	"impressionist",
	"pointillist",
	"post-impressionist",
	"dadaist",
	"art novueau",
	"pop art",
	"cubist",
	"fauvist",
	"modern art",
	"geometric",
	"minimalist",
	"realistic",
	"semi-realistic",
	"symbolic",
	"postmodern art",
	"futuristic",
	"street art",
	"concept art",
	"cartoon",
	"anime",
	"aesthetic",
	"fantasy",
	"caricature",
	"doodles",
	"disney",
	"pixar",
}

// Image is a labelled illustration URL.
type Image struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ImageSet is the illustrations of a story, in scene order.
type ImageSet struct {
	Medium string  `json:"medium"`
	Style  string  `json:"style"`
	Images []Image `json:"images"`

	gen    agent.ImageGenerator
	logger *slog.Logger
}

// New creates an image set. Empty medium or style are drawn at random.
func New(rng *rand.Rand, medium, style string, gen agent.ImageGenerator, logger *slog.Logger) *ImageSet {
	if medium == "" {
		medium = random.Choice(rng, ArtMediums)
	}
	if style == "" {
		style = random.Choice(rng, ArtStyles)
	}
	s := &ImageSet{Medium: medium, Style: style}
	s.Attach(gen, logger)
	return s
}

// Attach sets the generator used by AddSceneImage, for sets loaded from
// JSON.
func (s *ImageSet) Attach(gen agent.ImageGenerator, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default().With("component", "imageset")
	}
	s.gen = gen
	s.logger = logger
}

// Prompt describes sc in the set's medium and style.
func (s *ImageSet) Prompt(sc *scene.Scene) string {
	return fmt.Sprintf("A %s scene with a %s style. A %s %s at %s in %s. %s",
		s.Medium, s.Style,
		sc.Location.Area, sc.Location.Locale,
		sc.TimePeriod.TimeOfDay, sc.TimePeriod.Season,
		sc.Visual)
}

// AddSceneImage generates an illustration of sc under label. A failed
// generation is stored with an empty URL. Adding an existing label
// replaces its URL in place.
func (s *ImageSet) AddSceneImage(ctx context.Context, label string, sc *scene.Scene) {
	if s.logger == nil {
		s.Attach(s.gen, nil)
	}
	url := agent.Illustrate(ctx, s.gen, s.logger, s.Prompt(sc))
	for i := range s.Images {
		if s.Images[i].Label == label {
			s.Images[i].URL = url
			return
		}
	}
	s.Images = append(s.Images, Image{Label: label, URL: url})
}

// Labels returns the image labels in insertion order.
func (s *ImageSet) Labels() []string {
	labels := make([]string, 0, len(s.Images))
	for _, img := range s.Images {
		labels = append(labels, img.Label)
	}
	return labels
}

// URL returns the image URL for label, or "".
func (s *ImageSet) URL(label string) string {
	for _, img := range s.Images {
		if img.Label == label {
			return img.URL
		}
	}
	return ""
}

// Label names the image of a scene, e.g. "A2S3" for act 2, scene 3.
func Label(act, sceneNumber int) string {
	return fmt.Sprintf("A%dS%d", act, sceneNumber)
}

type imageSetJSON struct {
	Medium string  `json:"medium"`
	Style  string  `json:"style"`
	Images []Image `json:"images"`
}

func (s ImageSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		imageSetJSON
	}{kind.ImageSet, imageSetJSON{s.Medium, s.Style, s.Images}})
}

func (s *ImageSet) UnmarshalJSON(data []byte) error {
	var v struct {
		Kind string `json:"kind"`
		imageSetJSON
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if err := kind.Check(v.Kind, kind.ImageSet); err != nil {
		return err
	}
	s.Medium, s.Style, s.Images = v.Medium, v.Style, v.Images
	return nil
}
