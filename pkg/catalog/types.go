package catalog

import "path/filepath"

// Tag is a catalog tag record.
type Tag struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Favorite bool   `json:"favorite"`
}

// Performer is a catalog performer record.
type Performer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Favorite bool   `json:"favorite"`
}

// SceneFile is one media file backing a scene.
type SceneFile struct {
	Path     string `json:"path"`
	Basename string `json:"basename"`
}

// Scene is a catalog scene record. The first file's path is the source
// path used for linking; a scene without files cannot be linked.
type Scene struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Files []SceneFile `json:"files"`
}

// SourcePath returns the scene's source file path, or "" when the scene
// has no resolvable file.
func (s Scene) SourcePath() string {
	if len(s.Files) == 0 {
		return ""
	}
	return s.Files[0].Path
}

// Extension returns the source file's extension including the dot.
func (s Scene) Extension() string {
	return filepath.Ext(s.SourcePath())
}
