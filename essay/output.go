package essay

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// DefaultBaseDir is the directory generated essays are written to.
const DefaultBaseDir = "essays"

// timestampLayout gives second-level precision, enough to keep repeated runs
// on the same topic from colliding.
const timestampLayout = "20060102_150405"

// Resolver computes destination file paths for generated essays and ensures
// the base directory exists.
type Resolver struct {
	baseDir string

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewResolver creates a Resolver rooted at baseDir, falling back to
// DefaultBaseDir when baseDir is empty.
func NewResolver(baseDir string) *Resolver {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	return &Resolver{baseDir: baseDir}
}

// BaseDir returns the directory essays are resolved under.
func (r *Resolver) BaseDir() string {
	return r.baseDir
}

// Resolve returns the destination path for an essay. An explicit name wins
// over the topic-derived name and gets a .md extension if it is missing.
// Otherwise the name is scientific_essay_<safe_topic>.md, with a
// second-precision timestamp appended when useTimestamp is set. The base
// directory is created if absent; a creation failure is propagated.
func (r *Resolver) Resolve(topic, explicitName string, useTimestamp bool) (string, error) {
	if err := os.MkdirAll(r.baseDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", r.baseDir, err)
	}

	if explicitName != "" {
		name := explicitName
		if !strings.HasSuffix(name, ".md") {
			name += ".md"
		}
		return filepath.Join(r.baseDir, name), nil
	}

	name := "scientific_essay_" + SafeTopic(topic)
	if useTimestamp {
		name += "_" + r.now().Format(timestampLayout)
	}
	return filepath.Join(r.baseDir, name+".md"), nil
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// SafeTopic converts a topic into a filesystem-safe name by replacing every
// rune that is not a letter or digit with an underscore.
func SafeTopic(topic string) string {
	var b strings.Builder
	b.Grow(len(topic))
	for _, c := range topic {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			b.WriteRune(c)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// WriteEssay persists generated essay text verbatim. The write is whole-file
// and non-atomic; collision risk is handled upstream by the timestamp policy.
func WriteEssay(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write essay to %s: %w", path, err)
	}
	return nil
}
