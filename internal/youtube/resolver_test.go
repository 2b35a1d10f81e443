package youtube

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/youtube/v3"
)

type mapCache struct {
	entries map[string]string
	sets    int
}

func (m *mapCache) GetChannelID(_ context.Context, handle string) (string, bool, error) {
	id, ok := m.entries[handle]
	return id, ok, nil
}

func (m *mapCache) SetChannelID(_ context.Context, handle, channelID string) error {
	m.entries[handle] = channelID
	m.sets++
	return nil
}

func TestResolvePassesChannelIDThrough(t *testing.T) {
	api := newFakeAPI()
	resolver := NewResolver(newTestClient(t, api), nil, quietLogger())

	res := resolver.Resolve(context.Background(), "UCdirect")

	assert.Equal(t, ReasonOK, res.Reason)
	assert.Equal(t, "UCdirect", res.ChannelID)
	assert.Zero(t, api.callCount("/youtube/v3/channels"))
}

func TestResolveHandleLookup(t *testing.T) {
	api := newFakeAPI()
	api.handles["gopher"] = "UCgopher"
	resolver := NewResolver(newTestClient(t, api), nil, quietLogger())

	res := resolver.Resolve(context.Background(), "@gopher")

	assert.Equal(t, ReasonOK, res.Reason)
	assert.Equal(t, "UCgopher", res.ChannelID)
	assert.Zero(t, api.callCount("/youtube/v3/search"))
}

func TestResolveFallsBackToSearch(t *testing.T) {
	api := newFakeAPI()
	api.search["renamed"] = "UCsearched"
	resolver := NewResolver(newTestClient(t, api), nil, quietLogger())

	res := resolver.Resolve(context.Background(), "@renamed")

	assert.Equal(t, ReasonOK, res.Reason)
	assert.Equal(t, "UCsearched", res.ChannelID)
	assert.Equal(t, 1, api.callCount("/youtube/v3/channels"))
	assert.Equal(t, 1, api.callCount("/youtube/v3/search"))
}

func TestResolveUnresolved(t *testing.T) {
	api := newFakeAPI()
	resolver := NewResolver(newTestClient(t, api), nil, quietLogger())

	res := resolver.Resolve(context.Background(), "@nobody")

	assert.Equal(t, ReasonUnresolved, res.Reason)
	assert.Empty(t, res.ChannelID)
}

func TestResolveUpstreamFailure(t *testing.T) {
	api := newFakeAPI()
	api.failPath = "/youtube/v3/channels"
	api.failStatus = http.StatusForbidden
	resolver := NewResolver(newTestClient(t, api), nil, quietLogger())

	res := resolver.Resolve(context.Background(), "@gopher")

	assert.Equal(t, ReasonUpstreamError, res.Reason)
	assert.Empty(t, res.ChannelID)
}

func TestResolveInvalidIdentifier(t *testing.T) {
	resolver := NewResolver(newTestClient(t, newFakeAPI()), nil, quietLogger())

	assert.Equal(t, ReasonInvalidIdentifier, resolver.Resolve(context.Background(), "").Reason)
	assert.Equal(t, ReasonInvalidIdentifier, resolver.Resolve(context.Background(), "@").Reason)
}

func TestResolveUsesCache(t *testing.T) {
	api := newFakeAPI()
	api.handles["gopher"] = "UCgopher"
	cache := &mapCache{entries: map[string]string{}}
	resolver := NewResolver(newTestClient(t, api), cache, quietLogger())

	first := resolver.Resolve(context.Background(), "@gopher")
	second := resolver.Resolve(context.Background(), "@gopher")

	require.Equal(t, ReasonOK, first.Reason)
	assert.Equal(t, first.ChannelID, second.ChannelID)
	assert.Equal(t, 1, api.callCount("/youtube/v3/channels"))
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, "UCgopher", cache.entries["gopher"])
}

func TestDecodeChannelMatches(t *testing.T) {
	t.Run("handle lookup reads flat id", func(t *testing.T) {
		match := decodeHandleResponse(&youtube.ChannelListResponse{
			Items: []*youtube.Channel{{Id: "UCflat"}},
		})
		require.NotNil(t, match)
		assert.IsType(t, handleMatch{}, match)
		assert.Equal(t, "UCflat", match.channelID())
	})

	t.Run("search reads nested channelId", func(t *testing.T) {
		match := decodeSearchResponse(&youtube.SearchListResponse{
			Items: []*youtube.SearchResult{{Id: &youtube.ResourceId{Kind: "youtube#channel", ChannelId: "UCnested"}}},
		})
		require.NotNil(t, match)
		assert.IsType(t, searchMatch{}, match)
		assert.Equal(t, "UCnested", match.channelID())
	})

	t.Run("empty answers decode to nil", func(t *testing.T) {
		assert.Nil(t, decodeHandleResponse(nil))
		assert.Nil(t, decodeHandleResponse(&youtube.ChannelListResponse{}))
		assert.Nil(t, decodeSearchResponse(&youtube.SearchListResponse{}))
		assert.Nil(t, decodeSearchResponse(&youtube.SearchListResponse{
			Items: []*youtube.SearchResult{{Id: nil}},
		}))
	})
}
