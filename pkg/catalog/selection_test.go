package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tagfarm/pkg/catalog"
	"github.com/arthur-debert/tagfarm/pkg/errors"
	"github.com/arthur-debert/tagfarm/pkg/testutil"
)

func stub() *testutil.StubCatalog {
	return &testutil.StubCatalog{
		Tags: []catalog.Tag{
			{ID: "1", Name: "Action", Favorite: true},
			{ID: "2", Name: "Drama", Favorite: false},
			{ID: "3", Name: "Horror", Favorite: true},
		},
		Performers: []catalog.Performer{
			{ID: "10", Name: "Jane Doe", Favorite: true},
			{ID: "11", Name: "John Roe", Favorite: false},
		},
	}
}

func TestSelectTagsFavourites(t *testing.T) {
	selected, warnings, err := catalog.SelectTags(context.Background(), stub(), true, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, selected, 2)
	// Sorted by name.
	assert.Equal(t, "Action", selected[0].Name)
	assert.Equal(t, "Horror", selected[1].Name)
}

func TestSelectTagsByName(t *testing.T) {
	selected, warnings, err := catalog.SelectTags(context.Background(), stub(), false, []string{"Drama"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, selected, 1)
	assert.Equal(t, "2", selected[0].ID)
}

func TestSelectTagsDeduplicates(t *testing.T) {
	// A favourite that is also named explicitly appears once.
	selected, _, err := catalog.SelectTags(context.Background(), stub(), true, []string{"Action", "Action"})
	require.NoError(t, err)
	assert.Len(t, selected, 2)
}

func TestSelectTagsUnknownNameWarnsWithSuggestion(t *testing.T) {
	selected, warnings, err := catalog.SelectTags(context.Background(), stub(), false, []string{"Actio"})
	require.NoError(t, err)
	assert.Empty(t, selected)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `tag "Actio" not found in catalog`)
	assert.Contains(t, warnings[0], `"Action"`)
}

func TestSelectTagsUnknownNameNoSuggestion(t *testing.T) {
	selected, warnings, err := catalog.SelectTags(context.Background(), stub(), false, []string{"zzzz"})
	require.NoError(t, err)
	assert.Empty(t, selected)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `tag "zzzz" not found in catalog`)
	assert.NotContains(t, warnings[0], "did you mean")
}

func TestSelectTagsEmptySelection(t *testing.T) {
	// Nothing configured, nothing fetched.
	selected, warnings, err := catalog.SelectTags(context.Background(), &testutil.StubCatalog{}, false, nil)
	require.NoError(t, err)
	assert.Empty(t, selected)
	assert.Empty(t, warnings)
}

func TestSelectTagsCatalogErrorIsFatal(t *testing.T) {
	s := stub()
	s.Err = errors.New(errors.ErrCatalogNetwork, "connection refused")

	_, _, err := catalog.SelectTags(context.Background(), s, true, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCatalogNetwork))
}

func TestSelectPerformers(t *testing.T) {
	selected, warnings, err := catalog.SelectPerformers(context.Background(), stub(), true, []string{"John Roe", "Nobody"})
	require.NoError(t, err)

	require.Len(t, selected, 2)
	assert.Equal(t, "Jane Doe", selected[0].Name)
	assert.Equal(t, "John Roe", selected[1].Name)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `performer "Nobody" not found`)
}
