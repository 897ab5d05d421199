package project

import (
	"fmt"
	"strings"

	"github.com/shadowiq/shadowiq/internal/shared/id"
)

// Ref identifies a project either by UUID or by its human-facing code.
type Ref struct {
	ID   string
	Code string
}

// ParseRef accepts a UUID or a code such as SIQ-7KD2QX.
func ParseRef(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if canonical, ok := id.CanonicalUUID(raw); ok {
		return Ref{ID: canonical}, nil
	}
	if id.IsProjectCode(raw) {
		return Ref{Code: raw}, nil
	}
	return Ref{}, fmt.Errorf("malformed project reference %q", raw)
}

func (r Ref) String() string {
	if r.Code != "" {
		return r.Code
	}
	return r.ID
}
