package workspace

import (
	"fmt"
	"strings"
)

// Id is the canonical "ecosystem/name" package identifier. Equality is
// case-sensitive and based on the rendered string form.
type Id struct {
	Ecosystem string
	Name      string
}

// NewId builds a canonical id from its parts.
func NewId(ecosystem, name string) Id {
	return Id{Ecosystem: ecosystem, Name: name}
}

func (id Id) String() string {
	return fmt.Sprintf("%s/%s", id.Ecosystem, id.Name)
}

func (id Id) IsZero() bool {
	return id.Ecosystem == "" && id.Name == ""
}

// ParseId splits a canonical "ecosystem/name" string into an Id. A string
// with no slash is not a canonical id; callers resolving a plain name
// should use the Workspace's plain-name index instead.
func ParseId(s string) (Id, bool) {
	idx := strings.IndexByte(s, '/')
	if idx < 0 {
		return Id{}, false
	}
	return Id{Ecosystem: s[:idx], Name: s[idx+1:]}, true
}
