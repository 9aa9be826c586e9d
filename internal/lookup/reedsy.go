package lookup

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const DefaultReedsyURL = "https://blog.reedsy.com/character-name-generator/"

// Reedsy looks up character names with the Reedsy name generator.
type Reedsy struct {
	*settings
	baseURL string
}

func NewReedsy(baseURL string, opts ...Option) *Reedsy {
	if baseURL == "" {
		baseURL = DefaultReedsyURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Reedsy{settings: newSettings("reedsy", opts), baseURL: baseURL}
}

// NameURL is the generator page for a name family, ethnicity and gender.
func (r *Reedsy) NameURL(nameType, ethnicity, gender string) string {
	return r.baseURL + url.PathEscape(nameType) + "/" + url.PathEscape(ethnicity) +
		"/?filter=" + url.QueryEscape(gender) + "&commit=Generate%20names"
}

// FullName returns the first name the generator lists.
func (r *Reedsy) FullName(ctx context.Context, ethnicity, gender, nameType string) (string, error) {
	names, err := r.scrape(ctx, "reedsy", r.NameURL(nameType, ethnicity, gender), parseNames)
	if err != nil {
		return "", err
	}
	return names[0], nil
}

// parseNames reads the first h3 of div#names-container.
func parseNames(doc *html.Node) []string {
	container := find(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && attr(n, "id") == "names-container"
	})
	if container == nil {
		return nil
	}
	h3 := find(container, isAtom(atom.H3))
	if h3 == nil {
		return nil
	}
	if name := text(h3); name != "" {
		return []string{name}
	}
	return nil
}
