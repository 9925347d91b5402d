// Package memory persists the notes the self-improvement cycle hands to the
// external memory collaborator. Saving is best-effort by contract: callers
// log failures and move on, a save error never changes a cycle's outcome.
package memory

import (
	"context"
	"time"
)

// Note records one successful committed improvement.
type Note struct {
	Project string   `yaml:"project"`
	File    string   `yaml:"file"`
	Note    string   `yaml:"note"`
	Tags    []string `yaml:"tags,omitempty"`

	// Content is the committed file body, stored outside the front matter.
	Content string `yaml:"-"`
}

// Meta is the YAML front matter persisted with each note.
type Meta struct {
	ID        string    `yaml:"id"`
	CreatedAt time.Time `yaml:"created_at"`
	SessionID string    `yaml:"session_id"`
	Project   string    `yaml:"project"`
	File      string    `yaml:"file"`
	Note      string    `yaml:"note"`
	Tags      []string  `yaml:"tags,omitempty"`
}

// Saver is the write interface the cycle depends on.
type Saver interface {
	Save(ctx context.Context, note *Note) error
}
