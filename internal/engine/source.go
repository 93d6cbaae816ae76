package engine

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/anvildb/anvil/internal/anerr"
)

// scriptNamePattern matches migration script filenames:
// 14-digit timestamp, underscore, descriptive name, .yaml extension.
var scriptNamePattern = regexp.MustCompile(`^(\d{14})_(.+)\.yaml$`)

// Source discovers and manages migration scripts in one directory.
type Source struct {
	dir string
}

// NewSource returns a script source for the given directory.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// Dir returns the migrations directory.
func (s *Source) Dir() string {
	return s.dir
}

// List loads all migration scripts, sorted ascending by timestamp. A
// missing directory yields an empty list.
func (s *Source) List() ([]*Migration, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, anerr.Wrapf(anerr.ErrMigrationNotFound, err, "cannot read migrations directory %s", s.dir)
	}

	var migrations []*Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := scriptNamePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, anerr.Wrapf(anerr.ErrScriptInvalid, err, "cannot read migration script %s", path)
		}
		up, down, err := DecodeScript(data)
		if err != nil {
			return nil, anerr.Wrapf(anerr.ErrScriptInvalid, err, "invalid migration script %s", entry.Name())
		}
		migrations = append(migrations, &Migration{
			Timestamp: match[1],
			Name:      match[2],
			Up:        up,
			Down:      down,
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Key() < migrations[j].Key()
	})
	return migrations, nil
}

// Write serializes a migration to <timestamp>_<name>.yaml, creating the
// directory if needed. Returns the script path.
func (s *Source) Write(m *Migration) (string, error) {
	data, err := EncodeScript(m)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", anerr.Wrapf(anerr.ErrMigrationFailed, err, "cannot create migrations directory %s", s.dir)
	}
	path := filepath.Join(s.dir, m.Key()+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", anerr.Wrapf(anerr.ErrMigrationFailed, err, "cannot write migration script %s", path)
	}
	return path, nil
}

// Remove deletes every script whose descriptive name matches. The ledger
// is not touched. Returns the deleted script keys.
func (s *Source) Remove(name string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, anerr.Wrapf(anerr.ErrMigrationNotFound, err, "cannot read migrations directory %s", s.dir)
	}

	var removed []string
	for _, entry := range entries {
		match := scriptNamePattern.FindStringSubmatch(entry.Name())
		if match == nil || match[2] != name {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return removed, anerr.Wrapf(anerr.ErrMigrationFailed, err, "cannot remove migration script %s", entry.Name())
		}
		removed = append(removed, match[1]+"_"+match[2])
	}
	if len(removed) == 0 {
		return nil, anerr.Newf(anerr.ErrMigrationNotFound, "no migration script named %q", name)
	}
	return removed, nil
}
