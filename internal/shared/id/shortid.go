package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// codeAlphabet is restricted to upper-case letters and digits so project
	// codes survive being read aloud or typed by hand.
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultLength is the default length for generated short IDs
	DefaultLength = 12

	// ProjectCodeLength is the length of the random part of a project code.
	ProjectCodeLength = 6

	// DefaultProjectPrefix is used when no prefix is configured.
	DefaultProjectPrefix = "SIQ"
)

func generateFrom(chars string, length int) (string, error) {
	result := make([]byte, length)
	max := big.NewInt(int64(len(chars)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = chars[num.Int64()]
	}

	return string(result), nil
}

// Generate creates a random Base62 short ID of the given length.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	return generateFrom(alphabet, length)
}

// NewProjectCode returns a human-facing project code such as "SIQ-7KD2QX".
func NewProjectCode(prefix string) (string, error) {
	if prefix == "" {
		prefix = DefaultProjectPrefix
	}
	random, err := generateFrom(codeAlphabet, ProjectCodeLength)
	if err != nil {
		return "", err
	}
	return prefix + "-" + random, nil
}

// IsProjectCode reports whether s has the shape PREFIX-XXXXXX with an
// upper-case alphanumeric prefix and a six character random part.
func IsProjectCode(s string) bool {
	prefix, random, ok := strings.Cut(s, "-")
	if !ok || prefix == "" || len(prefix) > 8 || len(random) != ProjectCodeLength {
		return false
	}
	for _, part := range []string{prefix, random} {
		for _, r := range part {
			if !strings.ContainsRune(codeAlphabet, r) {
				return false
			}
		}
	}
	return true
}

// NewUUID returns a random UUID string used for identity and project ids.
func NewUUID() string {
	return uuid.NewString()
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// CanonicalUUID returns the lower-case hyphenated form of s.
func CanonicalUUID(s string) (string, bool) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewSortableID returns a ULID. IDs generated by one process sort in
// creation order, which the audit log relies on.
func NewSortableID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
