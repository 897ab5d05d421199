package identity

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/shadowiq/shadowiq/internal/shared/id"
)

const (
	MinAliasLength = 3
	MaxAliasLength = 32

	generatedAliasPrefix = "User-"
	generatedAliasLength = 6
)

// NormalizeAlias returns the comparison key for an alias: NFKC normalized
// and case folded, so "Ｓｈａｄｏｗ" and "shadow" collide.
func NormalizeAlias(alias string) string {
	// A Caser is stateful, so one is built per call.
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(alias)))
}

// ValidateAlias checks length and allowed characters (letters, digits,
// '-', '_' and '.').
func ValidateAlias(alias string) error {
	alias = strings.TrimSpace(alias)
	n := len([]rune(alias))
	if n < MinAliasLength || n > MaxAliasLength {
		return fmt.Errorf("alias must be between %d and %d characters", MinAliasLength, MaxAliasLength)
	}
	for _, r := range alias {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			continue
		}
		return fmt.Errorf("alias contains invalid character %q", r)
	}
	return nil
}

// GenerateAlias returns an alias of the form User-XXXXXX for identities
// that only supplied an email address.
func GenerateAlias() (string, error) {
	suffix, err := id.Generate(generatedAliasLength)
	if err != nil {
		return "", err
	}
	return generatedAliasPrefix + suffix, nil
}
