// Package catalog is the data-access client for the Stash GraphQL API.
// It fetches tag, performer, and scene records and carries no farm
// logic. All failures surface as errors.Error values with one of the
// catalog codes; callers treat any of them as fatal for the run.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/tagfarm/pkg/errors"
	"github.com/arthur-debert/tagfarm/pkg/logging"
)

const defaultTimeout = 30 * time.Second

// Client fetches catalog records. Implementations must be safe for
// sequential reuse; tagfarm never calls them concurrently.
type Client interface {
	FindTags(ctx context.Context) ([]Tag, error)
	FindPerformers(ctx context.Context) ([]Performer, error)
	TagByName(ctx context.Context, name string) (*Tag, error)
	PerformerByName(ctx context.Context, name string) (*Performer, error)
	ScenesByTag(ctx context.Context, tagID string) ([]Scene, error)
	ScenesByPerformer(ctx context.Context, performerID string) ([]Scene, error)
}

// HTTPClient talks GraphQL over HTTP to a Stash server.
type HTTPClient struct {
	url         string
	apiKey      string
	httpClient  *http.Client
	logger      zerolog.Logger
	backoffBase time.Duration
	backoffCap  time.Duration
	maxAttempts int
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithBackoff overrides the retry schedule. Tests use this to avoid
// real sleeps.
func WithBackoff(base, cap time.Duration, maxAttempts int) Option {
	return func(c *HTTPClient) {
		c.backoffBase = base
		c.backoffCap = cap
		c.maxAttempts = maxAttempts
	}
}

// New creates a catalog client for the given GraphQL endpoint. The API
// key is optional and sent in the ApiKey header when set.
func New(url, apiKey string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		url:         url,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		logger:      logging.GetLogger("catalog"),
		backoffBase: 500 * time.Millisecond,
		backoffCap:  8 * time.Second,
		maxAttempts: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// execute runs one GraphQL query, retrying transient network failures
// with bounded exponential backoff. Authentication and query errors
// fail fast.
func (c *HTTPClient) execute(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode query")
	}

	backoff := c.backoffBase
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Debug().Int("attempt", attempt).Dur("backoff", backoff).Msg("retrying catalog request")
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), errors.ErrCatalogNetwork, "catalog request cancelled")
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.backoffCap {
				backoff = c.backoffCap
			}
		}

		retryable, err := c.doRequest(ctx, payload, out)
		if err == nil {
			return nil
		}
		if !retryable {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// doRequest performs a single round trip. The bool reports whether the
// failure is transient and worth retrying.
func (c *HTTPClient) doRequest(ctx context.Context, payload []byte, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCatalogNetwork, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("ApiKey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, errors.Wrapf(err, errors.ErrCatalogNetwork, "request to %s failed", c.url)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, errors.Wrap(err, errors.ErrCatalogNetwork, "failed to read response")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return false, errors.Newf(errors.ErrCatalogAuth, "catalog rejected credentials (HTTP %d)", resp.StatusCode)
	case resp.StatusCode >= 500:
		return true, errors.Newf(errors.ErrCatalogNetwork, "catalog server error (HTTP %d)", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return false, errors.Newf(errors.ErrCatalogQuery, "unexpected catalog response (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false, errors.Wrap(err, errors.ErrCatalogQuery, "malformed catalog response")
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return false, errors.Newf(errors.ErrCatalogQuery, "GraphQL errors: %v", msgs)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return false, errors.Wrap(err, errors.ErrCatalogQuery, "malformed catalog data")
	}
	return false, nil
}

const findTagsQuery = `
query FindTags {
    findTags(filter: { per_page: -1 }) {
        tags {
            id
            name
            favorite
        }
    }
}`

// FindTags returns every tag in the catalog.
func (c *HTTPClient) FindTags(ctx context.Context) ([]Tag, error) {
	var result struct {
		FindTags struct {
			Tags []Tag `json:"tags"`
		} `json:"findTags"`
	}
	if err := c.execute(ctx, findTagsQuery, nil, &result); err != nil {
		return nil, err
	}
	return result.FindTags.Tags, nil
}

const findPerformersQuery = `
query FindPerformers {
    findPerformers(filter: { per_page: -1 }) {
        performers {
            id
            name
            favorite
        }
    }
}`

// FindPerformers returns every performer in the catalog.
func (c *HTTPClient) FindPerformers(ctx context.Context) ([]Performer, error) {
	var result struct {
		FindPerformers struct {
			Performers []Performer `json:"performers"`
		} `json:"findPerformers"`
	}
	if err := c.execute(ctx, findPerformersQuery, nil, &result); err != nil {
		return nil, err
	}
	return result.FindPerformers.Performers, nil
}

const tagByNameQuery = `
query FindTags($name: String!) {
    findTags(
        tag_filter: { name: { value: $name, modifier: EQUALS } }
        filter: { per_page: 1 }
    ) {
        tags {
            id
            name
            favorite
        }
    }
}`

// TagByName returns the tag with the exact given name, or nil when the
// catalog has none.
func (c *HTTPClient) TagByName(ctx context.Context, name string) (*Tag, error) {
	var result struct {
		FindTags struct {
			Tags []Tag `json:"tags"`
		} `json:"findTags"`
	}
	if err := c.execute(ctx, tagByNameQuery, map[string]interface{}{"name": name}, &result); err != nil {
		return nil, err
	}
	if len(result.FindTags.Tags) == 0 {
		return nil, nil
	}
	return &result.FindTags.Tags[0], nil
}

const performerByNameQuery = `
query FindPerformers($name: String!) {
    findPerformers(
        performer_filter: { name: { value: $name, modifier: EQUALS } }
        filter: { per_page: 1 }
    ) {
        performers {
            id
            name
            favorite
        }
    }
}`

// PerformerByName returns the performer with the exact given name, or
// nil when the catalog has none.
func (c *HTTPClient) PerformerByName(ctx context.Context, name string) (*Performer, error) {
	var result struct {
		FindPerformers struct {
			Performers []Performer `json:"performers"`
		} `json:"findPerformers"`
	}
	if err := c.execute(ctx, performerByNameQuery, map[string]interface{}{"name": name}, &result); err != nil {
		return nil, err
	}
	if len(result.FindPerformers.Performers) == 0 {
		return nil, nil
	}
	return &result.FindPerformers.Performers[0], nil
}

const scenesByTagQuery = `
query FindScenes($tag_id: ID!) {
    findScenes(
        scene_filter: { tags: { value: [$tag_id], modifier: INCLUDES } }
        filter: { per_page: -1 }
    ) {
        scenes {
            id
            title
            files {
                path
                basename
            }
        }
    }
}`

// ScenesByTag returns every scene carrying the given tag.
func (c *HTTPClient) ScenesByTag(ctx context.Context, tagID string) ([]Scene, error) {
	var result struct {
		FindScenes struct {
			Scenes []Scene `json:"scenes"`
		} `json:"findScenes"`
	}
	if err := c.execute(ctx, scenesByTagQuery, map[string]interface{}{"tag_id": tagID}, &result); err != nil {
		return nil, err
	}
	return result.FindScenes.Scenes, nil
}

const scenesByPerformerQuery = `
query FindScenes($performer_id: ID!) {
    findScenes(
        scene_filter: { performers: { value: [$performer_id], modifier: INCLUDES } }
        filter: { per_page: -1 }
    ) {
        scenes {
            id
            title
            files {
                path
                basename
            }
        }
    }
}`

// ScenesByPerformer returns every scene featuring the given performer.
func (c *HTTPClient) ScenesByPerformer(ctx context.Context, performerID string) ([]Scene, error) {
	var result struct {
		FindScenes struct {
			Scenes []Scene `json:"scenes"`
		} `json:"findScenes"`
	}
	if err := c.execute(ctx, scenesByPerformerQuery, map[string]interface{}{"performer_id": performerID}, &result); err != nil {
		return nil, err
	}
	return result.FindScenes.Scenes, nil
}

var _ Client = (*HTTPClient)(nil)

// String implements fmt.Stringer for log output without leaking the key.
func (c *HTTPClient) String() string {
	if c.apiKey != "" {
		return fmt.Sprintf("catalog{%s, authenticated}", c.url)
	}
	return fmt.Sprintf("catalog{%s}", c.url)
}
