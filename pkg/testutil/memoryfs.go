package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFS implements types.FS with in-memory storage. It tracks
// symlinks explicitly: Stat follows them, Lstat does not, and ReadDir
// reports them with fs.ModeSymlink so the farm walkers behave as they
// do on a real filesystem.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string]*fileNode

	// Error injection, keyed by cleaned absolute path
	errorPaths map[string]error
}

// fileNode represents a file, directory, or symlink in memory
type fileNode struct {
	name     string
	mode     os.FileMode
	modTime  time.Time
	content  []byte
	isDir    bool
	isLink   bool
	linkDest string
	children map[string]*fileNode
}

// NewMemoryFS creates a new in-memory filesystem containing only /.
func NewMemoryFS() *MemoryFS {
	root := &fileNode{
		name:     "/",
		mode:     0755 | os.ModeDir,
		modTime:  time.Now(),
		isDir:    true,
		children: make(map[string]*fileNode),
	}
	return &MemoryFS{
		files:      map[string]*fileNode{"/": root},
		errorPaths: make(map[string]error),
	}
}

func normalizePath(path string) string {
	if !filepath.IsAbs(path) {
		path = "/" + path
	}
	return filepath.Clean(path)
}

func (m *MemoryFS) getNode(path string) (*fileNode, error) {
	path = normalizePath(path)
	if err, ok := m.errorPaths[path]; ok {
		return nil, err
	}
	node, exists := m.files[path]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return node, nil
}

// followLinks resolves a node through symlink chains, bounded to avoid
// cycles.
func (m *MemoryFS) followLinks(path string, node *fileNode) (*fileNode, error) {
	for depth := 0; node.isLink; depth++ {
		if depth > 40 {
			return nil, &fs.PathError{Op: "stat", Path: path, Err: errors.New("too many levels of symbolic links")}
		}
		target := node.linkDest
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		next, err := m.getNode(target)
		if err != nil {
			return nil, err
		}
		path = target
		node = next
	}
	return node, nil
}

func (m *MemoryFS) getParentAndName(path string) (parent *fileNode, name string, err error) {
	path = normalizePath(path)
	dir := filepath.Dir(path)
	name = filepath.Base(path)

	parent, err = m.getNode(dir)
	if err != nil {
		return nil, "", err
	}
	if !parent.isDir {
		return nil, "", &fs.PathError{Op: "open", Path: dir, Err: errors.New("not a directory")}
	}
	return parent, name, nil
}

// Stat returns file info, following symlinks.
func (m *MemoryFS) Stat(name string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(name)
	if err != nil {
		return nil, err
	}
	node, err = m.followLinks(normalizePath(name), node)
	if err != nil {
		return nil, err
	}
	return &fileInfo{node: node, name: filepath.Base(name)}, nil
}

// Lstat returns file info without following symlinks.
func (m *MemoryFS) Lstat(name string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(name)
	if err != nil {
		return nil, err
	}
	return &fileInfo{node: node, name: filepath.Base(name)}, nil
}

// ReadFile reads the entire file content, following symlinks.
func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(name)
	if err != nil {
		return nil, err
	}
	node, err = m.followLinks(normalizePath(name), node)
	if err != nil {
		return nil, err
	}
	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: errors.New("is a directory")}
	}

	content := make([]byte, len(node.content))
	copy(content, node.content)
	return content, nil
}

// WriteFile writes data to a file, creating parent directories as needed.
func (m *MemoryFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := normalizePath(name)
	if err, ok := m.errorPaths[path]; ok {
		return err
	}

	parent, filename, err := m.getParentAndName(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := m.mkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		parent, filename, err = m.getParentAndName(path)
		if err != nil {
			return err
		}
	}

	node := &fileNode{
		name:    filename,
		mode:    perm,
		modTime: time.Now(),
		content: make([]byte, len(data)),
	}
	copy(node.content, data)

	parent.children[filename] = node
	m.files[path] = node
	return nil
}

// MkdirAll creates a directory and all necessary parents.
func (m *MemoryFS) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mkdirAll(path, perm)
}

func (m *MemoryFS) mkdirAll(path string, perm os.FileMode) error {
	path = normalizePath(path)
	if err, ok := m.errorPaths[path]; ok {
		return err
	}

	if node, err := m.getNode(path); err == nil {
		if !node.isDir {
			return &fs.PathError{Op: "mkdir", Path: path, Err: errors.New("file exists")}
		}
		return nil
	}

	parts := strings.Split(path, "/")
	current := "/"
	currentNode := m.files["/"]

	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		next := filepath.Join(current, parts[i])

		if child, exists := currentNode.children[parts[i]]; exists {
			if !child.isDir {
				return &fs.PathError{Op: "mkdir", Path: next, Err: errors.New("not a directory")}
			}
			currentNode = child
			current = next
			continue
		}

		newDir := &fileNode{
			name:     parts[i],
			mode:     perm | os.ModeDir,
			modTime:  time.Now(),
			isDir:    true,
			children: make(map[string]*fileNode),
		}
		currentNode.children[parts[i]] = newDir
		m.files[next] = newDir

		currentNode = newDir
		current = next
	}
	return nil
}

// ReadDir reads a directory and returns its entries sorted by name.
func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(name)
	if err != nil {
		return nil, err
	}
	if !node.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.New("not a directory")}
	}

	names := make([]string, 0, len(node.children))
	for childName := range node.children {
		names = append(names, childName)
	}
	sort.Strings(names)

	entries := make([]fs.DirEntry, 0, len(names))
	for _, childName := range names {
		entries = append(entries, &dirEntry{
			name: childName,
			info: &fileInfo{node: node.children[childName], name: childName},
		})
	}
	return entries, nil
}

// Symlink creates a symbolic link.
func (m *MemoryFS) Symlink(target, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	linkPath := normalizePath(link)
	if err, ok := m.errorPaths[linkPath]; ok {
		return err
	}
	if _, exists := m.files[linkPath]; exists {
		return &fs.PathError{Op: "symlink", Path: link, Err: os.ErrExist}
	}

	parent, filename, err := m.getParentAndName(linkPath)
	if err != nil {
		return err
	}

	node := &fileNode{
		name:     filename,
		mode:     0777 | os.ModeSymlink,
		modTime:  time.Now(),
		isLink:   true,
		linkDest: target,
	}
	parent.children[filename] = node
	m.files[linkPath] = node
	return nil
}

// Readlink returns the destination of a symbolic link.
func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(name)
	if err != nil {
		return "", err
	}
	if !node.isLink {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: errors.New("not a symbolic link")}
	}
	return node.linkDest, nil
}

// Rename moves a file or link. Used by the executor for atomic link
// replacement, so an existing destination is overwritten.
func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldAbs := normalizePath(oldpath)
	newAbs := normalizePath(newpath)
	if err, ok := m.errorPaths[newAbs]; ok {
		return err
	}

	node, err := m.getNode(oldAbs)
	if err != nil {
		return err
	}

	newParent, newName, err := m.getParentAndName(newAbs)
	if err != nil {
		return err
	}
	oldParent, oldName, err := m.getParentAndName(oldAbs)
	if err != nil {
		return err
	}

	delete(oldParent.children, oldName)
	delete(m.files, oldAbs)

	node.name = newName
	newParent.children[newName] = node
	m.files[newAbs] = node
	return nil
}

// Remove removes a file, link, or empty directory.
func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := normalizePath(name)
	if err, ok := m.errorPaths[path]; ok {
		return err
	}

	node, err := m.getNode(path)
	if err != nil {
		return err
	}
	if node.isDir && len(node.children) > 0 {
		return &fs.PathError{Op: "remove", Path: name, Err: errors.New("directory not empty")}
	}

	parent, filename, err := m.getParentAndName(path)
	if err != nil {
		return err
	}
	delete(parent.children, filename)
	delete(m.files, path)
	return nil
}

// RemoveAll removes a file or directory recursively.
func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = normalizePath(path)

	var toRemove []string
	for p := range m.files {
		if strings.HasPrefix(p, path+"/") || p == path {
			toRemove = append(toRemove, p)
		}
	}
	for _, p := range toRemove {
		delete(m.files, p)
		if dir := filepath.Dir(p); dir != p {
			if parent, ok := m.files[dir]; ok && parent.isDir {
				delete(parent.children, filepath.Base(p))
			}
		}
	}
	return nil
}

// WithError configures the filesystem to return an error for a specific path
func (m *MemoryFS) WithError(path string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorPaths[normalizePath(path)] = err
	return m
}

// Exists reports whether a path exists (without following symlinks).
func (m *MemoryFS) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[normalizePath(path)]
	return ok
}

// Snapshot returns every path in the filesystem with its link target
// ("" for non-links). Tests use it to assert dry-run purity.
func (m *MemoryFS) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := make(map[string]string, len(m.files))
	for p, node := range m.files {
		snap[p] = node.linkDest
	}
	return snap
}

// fileInfo implements os.FileInfo
type fileInfo struct {
	node *fileNode
	name string
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return int64(len(fi.node.content)) }
func (fi *fileInfo) Mode() os.FileMode  { return fi.node.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.node.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.node.isDir }
func (fi *fileInfo) Sys() interface{}   { return fi.node }

// dirEntry implements fs.DirEntry
type dirEntry struct {
	name string
	info os.FileInfo
}

func (de *dirEntry) Name() string               { return de.name }
func (de *dirEntry) IsDir() bool                { return de.info.IsDir() }
func (de *dirEntry) Type() os.FileMode          { return de.info.Mode().Type() }
func (de *dirEntry) Info() (os.FileInfo, error) { return de.info, nil }
