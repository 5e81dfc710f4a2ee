// Package testutil provides test doubles for tagfarm: an in-memory
// types.FS with symlink support and a canned catalog client.
package testutil

import (
	"context"
	"testing"

	"github.com/arthur-debert/tagfarm/pkg/catalog"
)

// MustWriteFile writes a file into the MemoryFS or fails the test.
func MustWriteFile(t *testing.T, fs *MemoryFS, path string, content string) {
	t.Helper()
	if err := fs.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

// MustSymlink creates a symlink (and its parent directory) in the
// MemoryFS or fails the test.
func MustSymlink(t *testing.T, fs *MemoryFS, target, link string) {
	t.Helper()
	if err := fs.MkdirAll(parentOf(link), 0755); err != nil {
		t.Fatalf("MkdirAll for %s: %v", link, err)
	}
	if err := fs.Symlink(target, link); err != nil {
		t.Fatalf("Symlink(%s -> %s): %v", link, target, err)
	}
}

func parentOf(path string) string {
	for i := len(path) - 1; i > 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "/"
}

// StubCatalog is a canned catalog.Client for command-level tests.
type StubCatalog struct {
	Tags            []catalog.Tag
	Performers      []catalog.Performer
	TagScenes       map[string][]catalog.Scene // keyed by tag ID
	PerformerScenes map[string][]catalog.Scene // keyed by performer ID
	Err             error
}

func (s *StubCatalog) FindTags(ctx context.Context) ([]catalog.Tag, error) {
	return s.Tags, s.Err
}

func (s *StubCatalog) FindPerformers(ctx context.Context) ([]catalog.Performer, error) {
	return s.Performers, s.Err
}

func (s *StubCatalog) TagByName(ctx context.Context, name string) (*catalog.Tag, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Tags {
		if s.Tags[i].Name == name {
			return &s.Tags[i], nil
		}
	}
	return nil, nil
}

func (s *StubCatalog) PerformerByName(ctx context.Context, name string) (*catalog.Performer, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.Performers {
		if s.Performers[i].Name == name {
			return &s.Performers[i], nil
		}
	}
	return nil, nil
}

func (s *StubCatalog) ScenesByTag(ctx context.Context, tagID string) ([]catalog.Scene, error) {
	return s.TagScenes[tagID], s.Err
}

func (s *StubCatalog) ScenesByPerformer(ctx context.Context, performerID string) ([]catalog.Scene, error) {
	return s.PerformerScenes[performerID], s.Err
}

var _ catalog.Client = (*StubCatalog)(nil)
