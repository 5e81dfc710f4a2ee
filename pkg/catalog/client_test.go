package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tagfarm/pkg/catalog"
	"github.com/arthur-debert/tagfarm/pkg/errors"
)

func fastBackoff() catalog.Option {
	return catalog.WithBackoff(time.Millisecond, time.Millisecond, 4)
}

func respond(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(body)); err != nil {
		t.Errorf("write response: %v", err)
	}
}

func TestClientSendsAPIKeyHeader(t *testing.T) {
	var gotKey, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("ApiKey")
		gotContentType = r.Header.Get("Content-Type")
		respond(t, w, `{"data": {"findTags": {"tags": []}}}`)
	}))
	defer srv.Close()

	c := catalog.New(srv.URL, "secret-key", fastBackoff())
	_, err := c.FindTags(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "application/json", gotContentType)
}

func TestClientOmitsAPIKeyHeaderWhenUnset(t *testing.T) {
	var hasKey bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasKey = r.Header["Apikey"]
		respond(t, w, `{"data": {"findTags": {"tags": []}}}`)
	}))
	defer srv.Close()

	c := catalog.New(srv.URL, "", fastBackoff())
	_, err := c.FindTags(context.Background())
	require.NoError(t, err)
	assert.False(t, hasKey)
}

func TestClientFindTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, `{"data": {"findTags": {"tags": [
			{"id": "1", "name": "Action", "favorite": true},
			{"id": "2", "name": "Drama", "favorite": false}
		]}}}`)
	}))
	defer srv.Close()

	c := catalog.New(srv.URL, "", fastBackoff())
	tags, err := c.FindTags(context.Background())
	require.NoError(t, err)

	require.Len(t, tags, 2)
	assert.Equal(t, catalog.Tag{ID: "1", Name: "Action", Favorite: true}, tags[0])
	assert.Equal(t, catalog.Tag{ID: "2", Name: "Drama", Favorite: false}, tags[1])
}

func TestClientScenesByTag(t *testing.T) {
	var req struct {
		Variables map[string]interface{} `json:"variables"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		respond(t, w, `{"data": {"findScenes": {"scenes": [
			{"id": "42", "title": "My Clip", "files": [
				{"path": "/media/a.mp4", "basename": "a.mp4"}
			]}
		]}}}`)
	}))
	defer srv.Close()

	c := catalog.New(srv.URL, "", fastBackoff())
	scenes, err := c.ScenesByTag(context.Background(), "7")
	require.NoError(t, err)

	assert.Equal(t, "7", req.Variables["tag_id"])
	require.Len(t, scenes, 1)
	assert.Equal(t, "42", scenes[0].ID)
	assert.Equal(t, "My Clip", scenes[0].Title)
	assert.Equal(t, "/media/a.mp4", scenes[0].SourcePath())
}

func TestClientTagByName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, `{"data": {"findTags": {"tags": [
			{"id": "3", "name": "Horror", "favorite": false}
		]}}}`)
	}))
	defer srv.Close()

	c := catalog.New(srv.URL, "", fastBackoff())
	tag, err := c.TagByName(context.Background(), "Horror")
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, "3", tag.ID)
}

func TestClientTagByNameMissingIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, `{"data": {"findTags": {"tags": []}}}`)
	}))
	defer srv.Close()

	c := catalog.New(srv.URL, "", fastBackoff())
	tag, err := c.TagByName(context.Background(), "Nope")
	require.NoError(t, err)
	assert.Nil(t, tag)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		respond(t, w, `{"data": {"findTags": {"tags": []}}}`)
	}))
	defer srv.Close()

	c := catalog.New(srv.URL, "", fastBackoff())
	_, err := c.FindTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestClientExhaustsRetries(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := catalog.New(srv.URL, "", catalog.WithBackoff(time.Millisecond, time.Millisecond, 3))
	_, err := c.FindTags(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCatalogNetwork))
	assert.Equal(t, 3, attempts)
}

func TestClientAuthFailureFailsFast(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := catalog.New(srv.URL, "wrong-key", fastBackoff())
	_, err := c.FindTags(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCatalogAuth))
	assert.Equal(t, 1, attempts)
}

func TestClientGraphQLErrorFailsFast(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		respond(t, w, `{"errors": [{"message": "Cannot query field \"bogus\""}]}`)
	}))
	defer srv.Close()

	c := catalog.New(srv.URL, "", fastBackoff())
	_, err := c.FindTags(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCatalogQuery))
	assert.Contains(t, err.Error(), "bogus")
	assert.Equal(t, 1, attempts)
}

func TestClientNetworkErrorRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := catalog.New(srv.URL, "", catalog.WithBackoff(time.Millisecond, time.Millisecond, 2))
	_, err := c.FindTags(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCatalogNetwork))
}
