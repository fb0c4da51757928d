package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidSurfaceName indicates a surface name that does not follow
// <scheme>://<owner>/<repo>/<issue|pull>/<number>.
var ErrInvalidSurfaceName = errors.New("invalid surface name")

var surfaceNamePattern = regexp.MustCompile(`^([a-z][a-z0-9+.-]*)://([^/\s]+)/([^/\s]+)/(issue|pull)/([0-9]+)$`)

// SurfaceName identifies the remote object an editing surface renders.
type SurfaceName struct {
	Scheme string
	Owner  string
	Repo   string
	Kind   Kind
	Number int
}

// ParseSurfaceName parses "<scheme>://<owner>/<repo>/<issue|pull>/<number>".
func ParseSurfaceName(name string) (SurfaceName, error) {
	m := surfaceNamePattern.FindStringSubmatch(name)
	if m == nil {
		return SurfaceName{}, fmt.Errorf("%w: %q", ErrInvalidSurfaceName, name)
	}

	number, err := strconv.Atoi(m[5])
	if err != nil || number <= 0 {
		return SurfaceName{}, fmt.Errorf("%w: bad number in %q", ErrInvalidSurfaceName, name)
	}

	return SurfaceName{
		Scheme: m[1],
		Owner:  m[2],
		Repo:   m[3],
		Kind:   Kind(m[4]),
		Number: number,
	}, nil
}

// RepoFullName returns "owner/repo".
func (n SurfaceName) RepoFullName() string {
	return n.Owner + "/" + n.Repo
}

// String formats the name back into its canonical form.
func (n SurfaceName) String() string {
	return fmt.Sprintf("%s://%s/%s/%s/%d", n.Scheme, n.Owner, n.Repo, n.Kind, n.Number)
}
