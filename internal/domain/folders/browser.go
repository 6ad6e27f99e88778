package folders

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

var (
	// ErrPathTraversal is returned for paths resolving outside the root.
	ErrPathTraversal = errors.New("path escapes the browsing root")
	// ErrNotFound is returned for paths that are not existing directories.
	ErrNotFound = errors.New("directory not found")
)

// IgnoredDirs are never offered, in addition to every dot-directory.
var IgnoredDirs = map[string]bool{
	".git": true, "node_modules": true, "__pycache__": true,
	"venv": true, ".venv": true, ".tox": true,
	".mypy_cache": true, ".pytest_cache": true,
	"dist": true, "build": true, ".next": true, ".nuxt": true,
}

// Listing is one level of the folder picker.
type Listing struct {
	Folders  []string `json:"folders"`
	Current  string   `json:"current"`
	Absolute string   `json:"absolute"`
	CanGoUp  bool     `json:"can_go_up"`
	RootName string   `json:"root_name"`
}

// Browser lists directories below root.
type Browser struct {
	root string
}

// NewBrowser creates a browser confined to root, which must be an existing
// directory. The root is stored with symlinks resolved.
func NewBrowser(root string) (*Browser, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("invalid browsing root %s: %w", root, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("invalid browsing root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("browsing root %s is not a directory", root)
	}
	return &Browser{root: resolved}, nil
}

// Root returns the resolved browsing root.
func (b *Browser) Root() string {
	return b.root
}

// Resolve maps path to an absolute directory inside the root. Relative
// paths are taken from the root; absolute paths must already lie inside it.
func (b *Browser) Resolve(path string) (string, error) {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %s", ErrPathTraversal, path)
		}
	}

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(b.root, path)
	}

	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if !b.contains(resolved) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, path)
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return resolved, nil
}

func (b *Browser) contains(path string) bool {
	rel, err := filepath.Rel(b.root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// List returns the visible subdirectories of path, sorted case-insensitively.
func (b *Browser) List(ctx context.Context, path string) (*Listing, error) {
	target, err := b.Resolve(path)
	if err != nil {
		return nil, err
	}

	folders, err := b.scan(ctx, target)
	if err != nil {
		return nil, err
	}

	current, _ := filepath.Rel(b.root, target)
	if current == "." {
		current = ""
	}

	return &Listing{
		Folders:  folders,
		Current:  filepath.ToSlash(current),
		Absolute: target,
		CanGoUp:  target != b.root,
		RootName: filepath.Base(b.root),
	}, nil
}

// scan walks exactly one level below dir.
func (b *Browser) scan(ctx context.Context, dir string) ([]string, error) {
	var (
		mu      sync.Mutex
		folders = []string{}
	)
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, dir, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || p == dir {
			return nil
		}

		name := d.Name()
		visible := !strings.HasPrefix(name, ".") && !IgnoredDirs[name]
		isDir := d.IsDir()
		if !isDir && d.Type()&os.ModeSymlink != 0 && visible {
			if info, err := os.Stat(p); err == nil && info.IsDir() {
				isDir = true
			}
		}

		if isDir && visible {
			mu.Lock()
			folders = append(folders, name)
			mu.Unlock()
		}
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	sort.Slice(folders, func(i, j int) bool {
		return strings.ToLower(folders[i]) < strings.ToLower(folders[j])
	})
	return folders, nil
}
