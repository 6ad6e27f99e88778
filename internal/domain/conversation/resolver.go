package conversation

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a directory has no resumable conversation.
var ErrNotFound = errors.New("no conversation found")

const (
	recordPattern = "*.jsonl"
	// headLines bounds how many records are read looking for the cwd.
	headLines = 16
	maxLine   = 1 << 20
)

var keyChars = regexp.MustCompile(`[^A-Za-z0-9]`)

// Conversation is one resumable conversation record.
type Conversation struct {
	ID       string
	Path     string
	Modified time.Time
}

// record is the subset of a conversation line the resolver needs.
type record struct {
	Cwd       string `json:"cwd"`
	SessionID string `json:"sessionId"`
}

// Resolver looks up conversations under the CLI state directory.
type Resolver struct {
	stateDir string
}

// NewResolver creates a resolver over stateDir (typically ~/.claude).
func NewResolver(stateDir string) *Resolver {
	return &Resolver{stateDir: stateDir}
}

// ProjectKey maps a working directory to its state subdirectory name.
func ProjectKey(dir string) string {
	return keyChars.ReplaceAllString(filepath.Clean(dir), "-")
}

// ProjectDir returns the state directory holding records for dir.
func (r *Resolver) ProjectDir(dir string) string {
	return filepath.Join(r.stateDir, "projects", ProjectKey(dir))
}

// Latest returns the most recently modified conversation started in dir.
// Files whose name is not a conversation id, or whose records name a
// different working directory (two paths can share a key), are skipped.
func (r *Resolver) Latest(dir string) (Conversation, error) {
	projectDir := r.ProjectDir(dir)
	if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
		return Conversation{}, fmt.Errorf("%w in %s", ErrNotFound, dir)
	}

	names, err := doublestar.Glob(os.DirFS(projectDir), recordPattern)
	if err != nil {
		return Conversation{}, fmt.Errorf("failed to scan %s: %w", projectDir, err)
	}

	candidates := make([]Conversation, 0, len(names))
	for _, name := range names {
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		info, err := os.Stat(filepath.Join(projectDir, name))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, Conversation{
			ID:       id,
			Path:     filepath.Join(projectDir, name),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Modified.After(candidates[j].Modified)
	})

	want := filepath.Clean(dir)
	for _, c := range candidates {
		cwd, err := recordedCwd(c.Path)
		if err != nil {
			continue
		}
		if cwd != "" && filepath.Clean(cwd) != want {
			continue
		}
		return c, nil
	}
	return Conversation{}, fmt.Errorf("%w in %s", ErrNotFound, dir)
}

// recordedCwd returns the first cwd found in the head of a record file.
func recordedCwd(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	for i := 0; i < headLines && scanner.Scan(); i++ {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := sonic.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.Cwd != "" {
			// the decoder may alias the scanner's buffer
			return strings.Clone(rec.Cwd), nil
		}
	}
	return "", nil
}
