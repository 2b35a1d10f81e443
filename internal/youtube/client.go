package youtube

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// MaxPageSize is the largest page the playlistItems and videos endpoints serve.
const MaxPageSize = 50

type ClientConfig struct {
	APIKey string
	// Endpoint overrides the API base URL, e.g. for a local fake server.
	Endpoint string
	// RequestsPerSecond paces every upstream call. Zero disables pacing.
	RequestsPerSecond float64
	Retry             RetryConfig
}

// Client wraps the YouTube Data API v3 service with pacing and retries.
type Client struct {
	service *youtube.Service
	limiter *rate.Limiter
	retry   RetryConfig
	logger  *logrus.Logger
}

func NewClient(ctx context.Context, cfg ClientConfig, logger *logrus.Logger) (*Client, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "youtube: create service")
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		service: service,
		limiter: limiter,
		retry:   cfg.Retry,
		logger:  logger,
	}, nil
}

// ChannelByHandle looks a channel up by its handle, without the leading "@".
func (c *Client) ChannelByHandle(ctx context.Context, handle string) (*youtube.ChannelListResponse, error) {
	resp, err := do(ctx, c, func() (*youtube.ChannelListResponse, error) {
		return c.service.Channels.List([]string{"id"}).
			ForHandle(handle).
			Context(ctx).
			Do()
	})
	return resp, errors.Wrapf(err, "youtube: channels.list forHandle=%s", handle)
}

// SearchChannel returns the best channel-type search hit for query.
func (c *Client) SearchChannel(ctx context.Context, query string) (*youtube.SearchListResponse, error) {
	resp, err := do(ctx, c, func() (*youtube.SearchListResponse, error) {
		return c.service.Search.List([]string{"snippet"}).
			Q(query).
			Type("channel").
			MaxResults(1).
			Context(ctx).
			Do()
	})
	return resp, errors.Wrapf(err, "youtube: search.list q=%s", query)
}

func (c *Client) ChannelDetails(ctx context.Context, channelID string) (*youtube.ChannelListResponse, error) {
	resp, err := do(ctx, c, func() (*youtube.ChannelListResponse, error) {
		return c.service.Channels.List([]string{"snippet", "contentDetails"}).
			Id(channelID).
			Context(ctx).
			Do()
	})
	return resp, errors.Wrapf(err, "youtube: channels.list id=%s", channelID)
}

// PlaylistItemsPage fetches one page of a playlist. An empty pageToken
// requests the first page.
func (c *Client) PlaylistItemsPage(ctx context.Context, playlistID, pageToken string) (*youtube.PlaylistItemListResponse, error) {
	resp, err := do(ctx, c, func() (*youtube.PlaylistItemListResponse, error) {
		call := c.service.PlaylistItems.List([]string{"contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(MaxPageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		return call.Context(ctx).Do()
	})
	return resp, errors.Wrapf(err, "youtube: playlistItems.list playlistId=%s", playlistID)
}

// VideosByID fetches snippets for up to MaxPageSize videos in one call.
func (c *Client) VideosByID(ctx context.Context, ids []string) (*youtube.VideoListResponse, error) {
	resp, err := do(ctx, c, func() (*youtube.VideoListResponse, error) {
		return c.service.Videos.List([]string{"snippet"}).
			Id(strings.Join(ids, ",")).
			Context(ctx).
			Do()
	})
	return resp, errors.Wrapf(err, "youtube: videos.list count=%d", len(ids))
}
