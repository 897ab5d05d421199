package project

import (
	"fmt"
	"path"
	"strings"
	"time"

	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
)

const maxFileNameLength = 200

// ProjectFile is a client upload attached to a project.
type ProjectFile struct {
	ID          string
	ProjectID   string
	UploadedBy  string
	FileType    vo.FileType
	FileName    string
	StorageKey  string
	SizeBytes   int64
	ContentType string
	CreatedAt   time.Time
}

// Deliverable is an analyst upload attached to a project.
type Deliverable struct {
	ID              string
	ProjectID       string
	UploadedBy      string
	DeliverableType vo.DeliverableType
	Title           string
	FileName        string
	StorageKey      string
	SizeBytes       int64
	ContentType     string
	CreatedAt       time.Time
}

// ObjectKey builds the storage key for an upload:
// projects/<code>/<kind>/<YYYYMMDDHHMMSS>_<filename>.
func ObjectKey(projectCode, kind, fileName string, at time.Time) (string, error) {
	name, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("projects/%s/%s/%s_%s", projectCode, kind, biztime.FormatCompact(at), name), nil
}

// KeyBelongsTo reports whether key was issued for the project and kind.
func KeyBelongsTo(key, projectCode, kind string) bool {
	return strings.HasPrefix(key, fmt.Sprintf("projects/%s/%s/", projectCode, kind)) &&
		!strings.Contains(key, "..")
}

// SanitizeFileName strips directories and replaces characters outside
// [A-Za-z0-9._-] with '_'.
func SanitizeFileName(fileName string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("file name is required")
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := b.String()
	if len(out) > maxFileNameLength {
		out = out[len(out)-maxFileNameLength:]
	}
	return out, nil
}
