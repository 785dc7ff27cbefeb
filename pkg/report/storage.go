package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/vfc-go/mca/pkg/logging"
)

// Storage persists Documents to a directory as one JSON file per report,
// optionally pruning older files once a count is exceeded.
type Storage struct {
	outputDir string
	keepLastN int
	logger    *logging.Logger
}

// NewStorage builds a Storage rooted at outputDir, creating it if absent.
func NewStorage(outputDir string, keepLastN int, logger *logging.Logger) (*Storage, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create report output directory")
	}
	return &Storage{outputDir: outputDir, keepLastN: keepLastN, logger: logger}, nil
}

// Save writes d to a timestamped file under the Storage's output
// directory and returns the path written.
func (s *Storage) Save(d *Document) (string, error) {
	filename := d.GeneratedAt.Format("20060102-150405") + "-" + sanitizeName(d.TrialName) + ".json"
	path := filepath.Join(s.outputDir, filename)

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write report file")
	}

	if s.logger != nil {
		s.logger.Info("report saved", "path", path)
	}

	if s.keepLastN > 0 {
		if err := s.cleanup(); err != nil && s.logger != nil {
			s.logger.Warn("failed to prune old reports", "error", err)
		}
	}

	return path, nil
}

// Load reads a Document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read report file")
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "unmarshal report")
	}
	return &d, nil
}

// List returns every report under the output directory, newest first.
func (s *Storage) List() ([]string, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, errors.Wrap(err, "read report output directory")
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(s.outputDir, e.Name()))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

func (s *Storage) cleanup() error {
	paths, err := s.List()
	if err != nil {
		return err
	}
	if len(paths) <= s.keepLastN {
		return nil
	}
	for _, p := range paths[s.keepLastN:] {
		if err := os.Remove(p); err != nil && s.logger != nil {
			s.logger.Warn("failed to delete old report", "path", p, "error", err)
		}
	}
	return nil
}

func sanitizeName(name string) string {
	if name == "" {
		return "trial"
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
