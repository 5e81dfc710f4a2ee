package farm_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tagfarm/pkg/farm"
	"github.com/arthur-debert/tagfarm/pkg/testutil"
)

func TestScanDangling(t *testing.T) {
	mfs := testutil.NewMemoryFS()
	testutil.MustWriteFile(t, mfs, "/media/a.mp4", "a")
	testutil.MustSymlink(t, mfs, "/media/a.mp4", "/farm/tags/Favorites/good.mp4")
	testutil.MustSymlink(t, mfs, "/media/gone.mp4", "/farm/tags/Favorites/stale.mp4")
	testutil.MustSymlink(t, mfs, "/media/gone2.mp4", "/farm/performers/Jane/stale.mp4")

	found, err := farm.ScanDangling(mfs, "/farm")
	require.NoError(t, err)

	require.Len(t, found, 2)
	// Sorted by link path.
	assert.Equal(t, "/farm/performers/Jane/stale.mp4", found[0].Path)
	assert.Equal(t, "/farm/tags/Favorites/stale.mp4", found[1].Path)
	assert.Equal(t, "/media/gone.mp4", found[1].Target)
	assert.False(t, found[0].Unresolvable)
}

func TestScanDanglingResolvesRelativeTargets(t *testing.T) {
	mfs := testutil.NewMemoryFS()
	testutil.MustWriteFile(t, mfs, "/farm/tags/media/a.mp4", "a")
	testutil.MustSymlink(t, mfs, "../media/a.mp4", "/farm/tags/Favorites/rel.mp4")
	testutil.MustSymlink(t, mfs, "../media/gone.mp4", "/farm/tags/Favorites/relgone.mp4")

	found, err := farm.ScanDangling(mfs, "/farm")
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.Equal(t, "/farm/tags/Favorites/relgone.mp4", found[0].Path)
	assert.Equal(t, "/farm/tags/media/gone.mp4", found[0].Target)
}

func TestScanDanglingUnresolvableTarget(t *testing.T) {
	mfs := testutil.NewMemoryFS()
	testutil.MustSymlink(t, mfs, "/media/secret.mp4", "/farm/tags/T/odd.mp4")
	mfs.WithError("/media/secret.mp4", errors.New("permission denied"))

	found, err := farm.ScanDangling(mfs, "/farm")
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.True(t, found[0].Unresolvable)
	assert.Contains(t, found[0].Reason, "permission denied")
}

func TestScanDanglingMissingRoot(t *testing.T) {
	mfs := testutil.NewMemoryFS()
	found, err := farm.ScanDangling(mfs, "/farm")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRemovalPlan(t *testing.T) {
	links := []farm.DanglingLink{
		{Path: "/farm/tags/T/stale.mp4", Target: "/media/gone.mp4"},
		{Path: "/farm/tags/T/odd.mp4", Target: "/media/secret.mp4", Unresolvable: true, Reason: "permission denied"},
	}

	plan := farm.RemovalPlan(links)

	// Dangling becomes a remove, unresolvable only a warning.
	require.Len(t, plan.Ops, 1)
	assert.Equal(t, farm.OpRemove, plan.Ops[0].Kind)
	assert.Equal(t, "/farm/tags/T/stale.mp4", plan.Ops[0].LinkPath)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "/farm/tags/T/odd.mp4")
	assert.Contains(t, plan.Warnings[0], "leaving it alone")
}
