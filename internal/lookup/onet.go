package lookup

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const DefaultONetURL = "https://www.onetonline.org/explore/interests/"

// ONet lists occupations by RIASEC interest areas from O*NET OnLine.
type ONet struct {
	*settings
	baseURL string
}

func NewONet(baseURL string, opts ...Option) *ONet {
	if baseURL == "" {
		baseURL = DefaultONetURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &ONet{settings: newSettings("onet", opts), baseURL: baseURL}
}

// Occupations returns the occupations matching three interest areas, in
// page order.
func (o *ONet) Occupations(ctx context.Context, interests []string) ([]string, error) {
	if len(interests) < 3 {
		return nil, fmt.Errorf("onet: need 3 interest areas, got %d", len(interests))
	}
	u := o.baseURL + url.PathEscape(interests[0]) + "/" + url.PathEscape(interests[1]) + "/" + url.PathEscape(interests[2]) + "/"
	return o.scrape(ctx, "onet", u, parseOccupations)
}

// parseOccupations reads the link text of every td[data-title=Occupation].
func parseOccupations(doc *html.Node) []string {
	cells := findAll(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Td && attr(n, "data-title") == "Occupation"
	})
	var jobs []string
	for _, td := range cells {
		a := find(td, isAtom(atom.A))
		if a == nil {
			continue
		}
		if job := text(a); job != "" {
			jobs = append(jobs, job)
		}
	}
	return jobs
}
