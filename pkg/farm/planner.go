package farm

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/tagfarm/pkg/catalog"
	"github.com/arthur-debert/tagfarm/pkg/logging"
)

// Group is one farm directory worth of scenes: a selected tag or
// performer together with its associated scenes.
type Group struct {
	Category Category
	Name     string // raw catalog display name
	Scenes   []catalog.Scene
}

// PlanOptions control link naming during planning.
type PlanOptions struct {
	// FarmRoot is the linkfarm root directory.
	FarmRoot string
	// UseTitle names links after the scene title when it is non-empty;
	// otherwise the source file basename is used.
	UseTitle bool
	// PathMap rewrites scene source path prefixes, longest prefix wins.
	PathMap map[string]string
}

// BuildPlan reconciles the selected catalog subset against the current
// farm state. Links already pointing at the right target become no-ops,
// missing links become creates, links pointing elsewhere become
// replaces. Links on disk that the selection does not derive are left
// untouched; build is never destructive of unrelated entries.
//
// The output is deterministic regardless of input ordering: groups are
// processed sorted, scenes within a group in ascending scene-ID order
// (numeric-aware), and operations come out sorted by link path.
func BuildPlan(groups []Group, state *State, opts PlanOptions) *Plan {
	logger := logging.GetLogger("farm.planner")
	plan := &Plan{}

	root := filepath.Clean(opts.FarmRoot)
	dirSet := map[string]bool{
		root: true,
		filepath.Join(root, string(CategoryTag)):       true,
		filepath.Join(root, string(CategoryPerformer)): true,
	}

	sorted := make([]Group, len(groups))
	copy(sorted, groups)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Category != sorted[j].Category {
			return sorted[i].Category < sorted[j].Category
		}
		return sorted[i].Name < sorted[j].Name
	})

	// Distinct raw names can sanitize to the same directory; merge such
	// groups before naming so clashes resolve with scene-ID suffixes
	// instead of one group silently overwriting the other.
	type dirGroup struct {
		dir   string
		group Group
	}
	var dirGroups []dirGroup
	dirIndex := make(map[string]int)
	for _, group := range sorted {
		dir := filepath.Join(root, string(group.Category), Sanitize(group.Name))
		if i, ok := dirIndex[dir]; ok {
			prev := &dirGroups[i].group
			if prev.Name != group.Name {
				plan.Warnings = append(plan.Warnings,
					fmt.Sprintf("%s %q and %q share the directory %s", group.Category, prev.Name, group.Name, dir))
			}
			prev.Scenes = append(prev.Scenes, group.Scenes...)
			continue
		}
		dirIndex[dir] = len(dirGroups)
		dirGroups = append(dirGroups, dirGroup{dir: dir, group: group})
	}

	// Target set keyed by full link path.
	targets := make(map[string]string)

	for _, dg := range dirGroups {
		entries := planGroup(dg.group, dg.dir, opts, plan)
		if len(entries) == 0 {
			continue
		}
		dirSet[dg.dir] = true
		for path, target := range entries {
			targets[path] = target
		}
	}

	// Compare the target set against on-disk reality.
	for path, target := range targets {
		op := Operation{LinkPath: path, Target: target}
		if existing, ok := state.Lookup(path); !ok {
			op.Kind = OpCreate
		} else if existing.Target == target {
			op.Kind = OpNoop
		} else {
			op.Kind = OpReplace
			op.OldTarget = existing.Target
		}
		plan.Ops = append(plan.Ops, op)
	}

	for dir := range dirSet {
		plan.Dirs = append(plan.Dirs, dir)
	}
	// Lexicographic order puts parents before children.
	sort.Strings(plan.Dirs)
	sort.Slice(plan.Ops, func(i, j int) bool { return plan.Ops[i].LinkPath < plan.Ops[j].LinkPath })

	create, replace, noop, _ := plan.Counts()
	logger.Debug().
		Int("groups", len(sorted)).
		Int("create", create).
		Int("replace", replace).
		Int("noop", noop).
		Int("warnings", len(plan.Warnings)).
		Msg("plan computed")
	return plan
}

// planGroup derives the link name for every scene in one group and
// returns the group's entries keyed by link path. Name collisions are
// resolved deterministically: when several distinct scenes derive the
// same base name, each gets a scene-ID suffix; should a literal name
// still clash with a suffixed one, a hash-qualified suffix settles it.
func planGroup(group Group, groupDir string, opts PlanOptions, plan *Plan) map[string]string {
	scenes := dedupeScenes(group.Scenes)
	sort.Slice(scenes, func(i, j int) bool { return sceneIDLess(scenes[i].ID, scenes[j].ID) })

	type naming struct {
		scene  catalog.Scene
		base   string
		ext    string
		raw    string
		target string
	}

	var namings []naming
	baseCount := make(map[string]int)
	for _, scene := range scenes {
		source := scene.SourcePath()
		if source == "" {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("scene %s (%s/%s) has no source file, skipped",
					scene.ID, group.Category, group.Name))
			continue
		}
		// Clean so the comparison against state (which stores cleaned
		// targets) converges even when the catalog reports unclean paths.
		target := filepath.Clean(ApplyPathMap(source, opts.PathMap))

		raw := scene.Title
		if !opts.UseTitle || raw == "" {
			base := filepath.Base(target)
			raw = strings.TrimSuffix(base, filepath.Ext(base))
		}
		namings = append(namings, naming{
			scene:  scene,
			base:   Sanitize(raw),
			ext:    scene.Extension(),
			raw:    raw,
			target: target,
		})
		baseCount[Sanitize(raw)]++
	}

	entries := make(map[string]string, len(namings))
	taken := make(map[string]bool, len(namings))
	for _, n := range namings {
		name := n.base + n.ext
		if baseCount[n.base] > 1 {
			name = fmt.Sprintf("%s [%s]%s", n.base, n.scene.ID, n.ext)
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("link name collision under %s/%s: scene %s linked as %q",
					group.Category, group.Name, n.scene.ID, name))
		}
		if taken[name] {
			name = fmt.Sprintf("%s [%s-%s]%s", n.base, n.scene.ID, hash6(n.scene.ID+n.raw), n.ext)
		}
		if taken[name] {
			// Only reachable with pathological duplicate scene records.
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("cannot derive a unique link name for scene %s under %s/%s, skipped",
					n.scene.ID, group.Category, group.Name))
			continue
		}
		taken[name] = true
		entries[filepath.Join(groupDir, name)] = n.target
	}
	return entries
}

func dedupeScenes(scenes []catalog.Scene) []catalog.Scene {
	seen := make(map[string]bool, len(scenes))
	out := make([]catalog.Scene, 0, len(scenes))
	for _, s := range scenes {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}

// sceneIDLess orders scene IDs numerically when both parse as integers,
// so "9" sorts before "10"; otherwise lexicographically.
func sceneIDLess(a, b string) bool {
	ai, aerr := strconv.ParseUint(a, 10, 64)
	bi, berr := strconv.ParseUint(b, 10, 64)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

// ApplyPathMap rewrites a source path whose prefix matches a mapping
// key, longest prefix first. Matches are path-segment aligned: the key
// "/media/a" does not match "/media/abc". An empty map is the identity.
func ApplyPathMap(path string, pathMap map[string]string) string {
	if len(pathMap) == 0 {
		return path
	}
	keys := make([]string, 0, len(pathMap))
	for k := range pathMap {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, from := range keys {
		prefix := strings.TrimSuffix(from, "/")
		if path == prefix {
			return pathMap[from]
		}
		if strings.HasPrefix(path, prefix+"/") {
			return filepath.Join(pathMap[from], strings.TrimPrefix(path, prefix+"/"))
		}
	}
	return path
}
