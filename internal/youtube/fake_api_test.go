package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	Title   string
	Uploads string
}

// fakeAPI serves the subset of the YouTube Data API v3 the client calls.
type fakeAPI struct {
	mu sync.Mutex

	channels  map[string]fakeChannel
	handles   map[string]string
	search    map[string]string
	playlists map[string][]string
	category  map[string]string

	// failPath makes every request to that path answer with failStatus.
	failPath   string
	failStatus int
	// failPageToken fails only the playlistItems request carrying this token.
	failPageToken string

	calls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		channels:  map[string]fakeChannel{},
		handles:   map[string]string{},
		search:    map[string]string{},
		playlists: map[string][]string{},
		category:  map[string]string{},
		calls:     map[string]int{},
	}
}

func (f *fakeAPI) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls[r.URL.Path]++
	f.mu.Unlock()

	if f.failPath != "" && r.URL.Path == f.failPath {
		writeAPIError(w, f.failStatus)
		return
	}

	q := r.URL.Query()
	switch r.URL.Path {
	case "/youtube/v3/channels":
		f.serveChannels(w, q.Get("forHandle"), q.Get("id"))
	case "/youtube/v3/search":
		f.serveSearch(w, q.Get("q"))
	case "/youtube/v3/playlistItems":
		if f.failPageToken != "" && q.Get("pageToken") == f.failPageToken {
			writeAPIError(w, http.StatusBadRequest)
			return
		}
		f.servePlaylistItems(w, q.Get("playlistId"), q.Get("pageToken"), q.Get("maxResults"))
	case "/youtube/v3/videos":
		f.serveVideos(w, q.Get("id"))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) serveChannels(w http.ResponseWriter, handle, id string) {
	items := []map[string]any{}
	if handle != "" {
		if channelID, ok := f.handles[handle]; ok {
			items = append(items, map[string]any{"id": channelID})
		}
	}
	if id != "" {
		if ch, ok := f.channels[id]; ok {
			item := map[string]any{
				"id":      id,
				"snippet": map[string]any{"title": ch.Title},
			}
			if ch.Uploads != "" {
				item["contentDetails"] = map[string]any{
					"relatedPlaylists": map[string]any{"uploads": ch.Uploads},
				}
			}
			items = append(items, item)
		}
	}
	writeJSON(w, map[string]any{"kind": "youtube#channelListResponse", "items": items})
}

func (f *fakeAPI) serveSearch(w http.ResponseWriter, query string) {
	items := []map[string]any{}
	if channelID, ok := f.search[query]; ok {
		items = append(items, map[string]any{
			"id":      map[string]any{"kind": "youtube#channel", "channelId": channelID},
			"snippet": map[string]any{"channelId": channelID},
		})
	}
	writeJSON(w, map[string]any{"kind": "youtube#searchListResponse", "items": items})
}

func (f *fakeAPI) servePlaylistItems(w http.ResponseWriter, playlistID, pageToken, maxResults string) {
	ids, ok := f.playlists[playlistID]
	if !ok {
		writeAPIError(w, http.StatusNotFound)
		return
	}

	size, err := strconv.Atoi(maxResults)
	if err != nil || size <= 0 {
		size = 5
	}

	start := 0
	if pageToken != "" {
		start, _ = strconv.Atoi(strings.TrimPrefix(pageToken, "page-"))
	}
	end := start + size
	if end > len(ids) {
		end = len(ids)
	}

	items := []map[string]any{}
	for _, id := range ids[start:end] {
		items = append(items, map[string]any{
			"contentDetails": map[string]any{"videoId": id},
		})
	}

	resp := map[string]any{"kind": "youtube#playlistItemListResponse", "items": items}
	if end < len(ids) {
		resp["nextPageToken"] = fmt.Sprintf("page-%d", end)
	}
	writeJSON(w, resp)
}

func (f *fakeAPI) serveVideos(w http.ResponseWriter, ids string) {
	items := []map[string]any{}
	for _, id := range strings.Split(ids, ",") {
		if id == "" {
			continue
		}
		snippet := map[string]any{
			"title":        "Video " + id,
			"description":  "About " + id,
			"publishedAt":  "2024-01-01T00:00:00Z",
			"channelId":    "UC-owner",
			"channelTitle": "Owner",
			"tags":         []string{"go", id},
		}
		if category, ok := f.category[id]; ok {
			snippet["categoryId"] = category
		}
		items = append(items, map[string]any{"id": id, "snippet": snippet})
	}
	writeJSON(w, map[string]any{"kind": "youtube#videoListResponse", "items": items})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, fmt.Sprintf(`{"error":{"code":%d,"message":"fake failure"}}`, status))
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestClient points a Client at the fake server with fast retries.
func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), ClientConfig{
		APIKey:   "test-key",
		Endpoint: srv.URL + "/",
		Retry: RetryConfig{
			MaxRetries:  1,
			InitialWait: time.Millisecond,
			MaxWait:     5 * time.Millisecond,
			Multiplier:  2,
		},
	}, quietLogger())
	require.NoError(t, err)

	return client
}

func sequentialIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%03d", prefix, i)
	}
	return ids
}
