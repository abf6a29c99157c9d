// Package store persists the per-tool version and upgrade-check record kept in
// <global dir>/config.json, and reads package descriptors of the same shape.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	appErrors "superrename/internal/errors"
)

const (
	// ConfigFileName is the name of the state document inside the global dir.
	ConfigFileName = "config.json"
	// DateLayout formats upgrade-check dates as year-month-day without zero padding.
	DateLayout = "2006-1-2"
)

// ToolRecord is the stored state for one tool.
type ToolRecord struct {
	Version     string `json:"version"`
	LastUpgrade string `json:"lastUpgrade,omitempty"`
}

// Document maps a tool name to its record.
type Document map[string]ToolRecord

// Store reads and writes Documents. The zero value is not usable; use New.
type Store struct {
	dir      string
	toolName string
	version  string
	now      func() time.Time
	out      io.Writer
	logger   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for upgrade-check dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithOutput sets where user-facing notices (such as directory creation) are printed.
func WithOutput(w io.Writer) Option {
	return func(s *Store) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store rooted at the global dir for the named tool running at version.
func New(dir, toolName, version string, opts ...Option) *Store {
	s := &Store{
		dir:      dir,
		toolName: toolName,
		version:  version,
		now:      time.Now,
		out:      io.Discard,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("store")
	return s
}

// Dir returns the global directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the default config document path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, ConfigFileName)
}

// Today returns the current local date in DateLayout.
func (s *Store) Today() string {
	return s.now().Format(DateLayout)
}

// Default returns a fresh document holding only the running tool's record.
func (s *Store) Default() Document {
	return Document{
		s.toolName: {
			Version:     s.version,
			LastUpgrade: s.Today(),
		},
	}
}

// Load reads a document.
//
// With an empty path it uses the default location: the global dir is created when
// missing and a default document is written if config.json does not exist, so the
// returned document is never nil. With an explicit path, a missing file yields a nil
// document and no error. In both cases blank content yields the default document
// without touching the file, and unparseable content is a parse_failed error.
func (s *Store) Load(path string) (Document, error) {
	if path == "" {
		path = s.Path()
		if err := s.ensureDir(s.dir); err != nil {
			return nil, err
		}
	} else if !exists(path) {
		return nil, nil
	}

	if !exists(path) {
		doc := s.Default()
		if err := s.Save(doc, path); err != nil {
			return nil, err
		}
		return doc, nil
	}

	//nolint:gosec // G304: reads the tool's own config or a descriptor inside its clone
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s.Default(), nil
	}
	return decode(path, data)
}

// LoadDescriptor reads a package descriptor strictly: a missing, blank, or
// unreadable file yields a nil document and no error. Unparseable content is a
// parse_failed error.
func (s *Store) LoadDescriptor(path string) (Document, error) {
	//nolint:gosec // G304: path points inside the tool's own repository clone
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("descriptor unreadable", zap.String("path", path), zap.Error(err))
		}
		return nil, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		s.logger.Debug("descriptor is blank", zap.String("path", path))
		return nil, nil
	}
	return decode(path, data)
}

// Save writes doc as tab-indented JSON, to the default location when path is empty.
// The parent directory is created when missing.
func (s *Store) Save(doc Document, path string) error {
	if path == "" {
		path = s.Path()
	}
	if err := s.ensureDir(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	//nolint:gosec // G306: config is not secret and mirrors the user's own files
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Debug("config saved", zap.String("path", path))
	return nil
}

func (s *Store) ensureDir(dir string) error {
	if exists(dir) {
		return nil
	}
	_, _ = fmt.Fprintf(s.out, "Create project global config dir => %s\n", dir)
	//nolint:gosec // G301: global dir needs standard permissions
	if err := os.MkdirAll(dir, 0755); err != nil {
		return appErrors.New(appErrors.CodeConfigurationError, fmt.Sprintf("create config directory %s", dir), err)
	}
	return nil
}

func decode(path string, data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, appErrors.New(appErrors.CodeParseFailed, fmt.Sprintf("parse %s: %v", path, err), err)
	}
	if doc == nil {
		// A literal "null" document.
		doc = Document{}
	}
	return doc, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
