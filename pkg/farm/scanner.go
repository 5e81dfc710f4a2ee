package farm

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/tagfarm/pkg/types"
)

// DanglingLink is a symlink whose target is gone, or whose target could
// not be inspected. The two need different remediation: dangling links
// are removed by clean, unresolvable ones are only reported.
type DanglingLink struct {
	Path         string
	Target       string
	Unresolvable bool
	Reason       string
}

// ScanDangling walks the farm tree independent of the catalog and
// returns every symlink whose target no longer exists, plus those whose
// target resolution failed with something other than not-found. Results
// come out sorted by link path.
func ScanDangling(fsys types.FS, root string) ([]DanglingLink, error) {
	var found []DanglingLink

	err := walkLinks(fsys, root, func(linkPath, target string) {
		resolved := resolveTarget(filepath.Dir(linkPath), target)
		_, err := fsys.Stat(resolved)
		switch {
		case err == nil:
		case os.IsNotExist(err):
			found = append(found, DanglingLink{Path: linkPath, Target: resolved})
		default:
			found = append(found, DanglingLink{
				Path:         linkPath,
				Target:       resolved,
				Unresolvable: true,
				Reason:       err.Error(),
			})
		}
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}

// RemovalPlan maps scan results to delete operations. Dangling links
// become removes; unresolvable ones become warnings so a permission
// problem is investigated rather than silently deleted.
func RemovalPlan(links []DanglingLink) *Plan {
	plan := &Plan{}
	for _, l := range links {
		if l.Unresolvable {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("cannot resolve target of %s (%s), leaving it alone", l.Path, l.Reason))
			continue
		}
		plan.Ops = append(plan.Ops, Operation{Kind: OpRemove, LinkPath: l.Path, Target: l.Target})
	}
	return plan
}
