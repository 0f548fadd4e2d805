package notes

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/whispernotes/whisper/pkg/core"
)

// frontmatter is the metadata block written ahead of the note body.
type frontmatter struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	Notebook  string   `yaml:"notebook,omitempty"`
	Tags      []string `yaml:"tags,omitempty"`
	CreatedAt string   `yaml:"created"`
	UpdatedAt string   `yaml:"updated"`
}

// MarshalMarkdown renders a note as a Markdown file with YAML frontmatter,
// the interchange format plain-text note vaults understand. notebookName
// may be empty for detached notes.
func MarshalMarkdown(n core.Note, notebookName string) ([]byte, error) {
	var buf bytes.Buffer

	meta := frontmatter{
		ID:        n.ID,
		Title:     n.Title,
		Notebook:  notebookName,
		Tags:      n.Tags,
		CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: n.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(meta); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	encoder.Close()
	buf.WriteString("---\n")
	buf.WriteString(n.Body)
	if !strings.HasSuffix(n.Body, "\n") {
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// Export writes every note as a Markdown file under dir, one file per note
// named after its title (falling back to the id for untitled notes).
// Returns the number of files written.
func (s *NoteStore) Export(dir string, notebooks *NotebookStore) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	all := s.All()
	seen := make(map[string]int)
	for _, n := range all {
		name := exportFilename(n, seen)

		var notebookName string
		if n.NotebookID != "" && notebooks != nil {
			if nb, ok := notebooks.Get(n.NotebookID); ok {
				notebookName = nb.Name
			}
		}

		data, err := MarshalMarkdown(n, notebookName)
		if err != nil {
			return 0, err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return 0, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return len(all), nil
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9._ -]+`)

// exportFilename derives a filesystem-safe, collision-free name for a note.
func exportFilename(n core.Note, seen map[string]int) string {
	base := strings.TrimSpace(unsafeFilename.ReplaceAllString(n.Title, ""))
	if base == "" {
		base = n.ID
	}
	seen[base]++
	if count := seen[base]; count > 1 {
		base = fmt.Sprintf("%s-%d", base, count)
	}
	return base + ".md"
}
