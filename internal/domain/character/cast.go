package character

import (
	"fmt"
	"slices"
)

// Principal story roles.
const (
	Protagonist   = "protagonist"
	Antagonist    = "antagonist"
	Deuteragonist = "deuteragonist"
	Confidante    = "confidante"
	LoveInterest  = "love interest"
	Foil          = "foil"
)

var PrincipalRoles = []string{
	Protagonist,
	Antagonist,
	Deuteragonist,
	Confidante,
	LoveInterest,
	Foil,
}

// TertiaryRole names the i-th minor role.
func TertiaryRole(i int) string {
	return fmt.Sprintf("tertiary %d", i)
}

// Member assigns a character to a role.
type Member struct {
	Role      string     `json:"role"`
	Character *Character `json:"character"`
}

// Cast is an ordered role to character mapping.
type Cast []Member

// Get returns the character playing role, or nil.
func (c Cast) Get(role string) *Character {
	for _, m := range c {
		if m.Role == role {
			return m.Character
		}
	}
	return nil
}

// Has reports whether role is cast.
func (c Cast) Has(role string) bool {
	return slices.ContainsFunc(c, func(m Member) bool { return m.Role == role })
}

// Roles returns the roles in cast order.
func (c Cast) Roles() []string {
	roles := make([]string, 0, len(c))
	for _, m := range c {
		roles = append(roles, m.Role)
	}
	return roles
}

// Subset returns the members playing roles, in the order given.
func (c Cast) Subset(roles []string) Cast {
	out := make(Cast, 0, len(roles))
	for _, r := range roles {
		if ch := c.Get(r); ch != nil {
			out = append(out, Member{Role: r, Character: ch})
		}
	}
	return out
}
