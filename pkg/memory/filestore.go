package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/SWORDIntel/autocoder-sub000/pkg/logging"
)

const frontMatterDelimiter = "---"

// FileStore persists notes as markdown files with YAML front matter, one file
// per note, under a single directory.
type FileStore struct {
	dir string
	log *logging.Logger
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string, log *logging.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("memory directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create memory directory: %w", err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

// Save writes the note to a new file named after its generated ID.
func (s *FileStore) Save(ctx context.Context, note *Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if note == nil {
		return fmt.Errorf("note cannot be nil")
	}

	meta := Meta{
		ID:        "note_" + uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		SessionID: logging.GetSessionID(),
		Project:   note.Project,
		File:      note.File,
		Note:      note.Note,
		Tags:      note.Tags,
	}

	raw, err := serialize(&meta, note.Content)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, meta.ID+".md")
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write note %s: %w", meta.ID, err)
	}

	if s.log != nil {
		s.log.Debugf("saved memory note %s for %s", meta.ID, note.File)
	}
	return nil
}

// serialize renders front matter plus body to the on-disk representation.
func serialize(meta *Meta, body string) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize note front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(frontMatterDelimiter + "\n")
	sb.Write(yamlBytes)
	sb.WriteString(frontMatterDelimiter + "\n\n")
	sb.WriteString(body)
	return []byte(sb.String()), nil
}
