package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

var migrationNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Generator creates new migration file pairs for every dialect so the
// mysql and postgres script sets stay in step.
type Generator struct {
	scriptsPath string
	dialects    []string
	logger      logger.Interface
}

// NewGenerator writes into scriptsPath/<dialect>.
func NewGenerator(scriptsPath string, log logger.Interface) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		dialects:    []string{"mysql", "postgres"},
		logger:      log.With("component", "migration.generator"),
	}
}

// CreateMigration writes NNNNNN_<name>.up.sql and .down.sql with the next
// sequence number and returns the paths it created.
func (g *Generator) CreateMigration(name string) ([]string, error) {
	if !migrationNamePattern.MatchString(name) {
		return nil, fmt.Errorf("migration name must match %s", migrationNamePattern)
	}

	var created []string
	for _, dialect := range g.dialects {
		dir := filepath.Join(g.scriptsPath, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("failed to create scripts directory: %w", err)
		}

		next, err := nextSequence(dir)
		if err != nil {
			return created, err
		}

		for _, direction := range []string{"up", "down"} {
			path := filepath.Join(dir, fmt.Sprintf("%06d_%s.%s.sql", next, name, direction))
			body := fmt.Sprintf("-- %s migration (%s): %s\n", direction, dialect, name)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				return created, fmt.Errorf("failed to write %s: %w", path, err)
			}
			created = append(created, path)
		}
	}

	g.logger.Infow("migration files created", "name", name, "files", created)
	return created, nil
}

func nextSequence(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var seqs []int
	for _, e := range entries {
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(prefix); err == nil {
			seqs = append(seqs, n)
		}
	}
	if len(seqs) == 0 {
		return 1, nil
	}
	sort.Ints(seqs)
	return seqs[len(seqs)-1] + 1, nil
}
