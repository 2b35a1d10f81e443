package youtube

import (
	"context"

	"github.com/grvbrk/yt-categorizer/internal/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/youtube/v3"
)

type Enumeration struct {
	ChannelID    string
	ChannelTitle string
	Videos       []models.Video
	Reason       ReasonCode
}

type Enumerator struct {
	client *Client
	logger *logrus.Logger
}

func NewEnumerator(client *Client, logger *logrus.Logger) *Enumerator {
	return &Enumerator{
		client: client,
		logger: logger,
	}
}

// Enumerate walks the channel's uploads playlist page by page and returns
// every video it lists. Any upstream failure discards the partial result and
// yields an empty enumeration with ReasonUpstreamError.
func (e *Enumerator) Enumerate(ctx context.Context, channelID string) Enumeration {
	result := Enumeration{ChannelID: channelID, Videos: []models.Video{}}
	log := e.logger.WithField("channel_id", channelID)

	if channelID == "" {
		result.Reason = ReasonInvalidIdentifier
		return result
	}

	details, err := e.client.ChannelDetails(ctx, channelID)
	if err != nil {
		log.WithError(err).Error("error fetching channel details")
		result.Reason = ReasonUpstreamError
		return result
	}

	if len(details.Items) == 0 {
		log.Warn("skipping channel, channel not found")
		result.Reason = ReasonChannelNotFound
		return result
	}

	channel := details.Items[0]
	if channel.Snippet != nil {
		result.ChannelTitle = channel.Snippet.Title
	}

	uploadsID := ""
	if channel.ContentDetails != nil && channel.ContentDetails.RelatedPlaylists != nil {
		uploadsID = channel.ContentDetails.RelatedPlaylists.Uploads
	}
	if uploadsID == "" {
		log.Warn("skipping channel, could not find uploads playlist")
		result.Reason = ReasonNoUploads
		return result
	}

	videos := []models.Video{}
	pageToken := ""
	pages := 0
	for {
		page, err := e.client.PlaylistItemsPage(ctx, uploadsID, pageToken)
		if err != nil {
			log.WithError(err).WithField("page", pages+1).Error("error fetching uploads page")
			result.Reason = ReasonUpstreamError
			return result
		}
		pages++

		ids := playlistVideoIDs(page.Items)
		if len(ids) > 0 {
			detail, err := e.client.VideosByID(ctx, ids)
			if err != nil {
				log.WithError(err).WithField("page", pages).Error("error fetching video details")
				result.Reason = ReasonUpstreamError
				return result
			}
			videos = append(videos, toVideos(detail.Items)...)
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	log.WithFields(logrus.Fields{
		"pages":  pages,
		"videos": len(videos),
	}).Info("enumerated channel uploads")

	result.Videos = videos
	result.Reason = ReasonOK
	return result
}

func playlistVideoIDs(items []*youtube.PlaylistItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil || item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
			continue
		}
		ids = append(ids, item.ContentDetails.VideoId)
	}
	return ids
}

func toVideos(items []*youtube.Video) []models.Video {
	videos := make([]models.Video, 0, len(items))
	for _, item := range items {
		if item == nil || item.Id == "" || item.Snippet == nil {
			continue
		}
		videos = append(videos, toVideo(item))
	}
	return videos
}

func toVideo(item *youtube.Video) models.Video {
	snippet := item.Snippet

	var categoryID *string
	if snippet.CategoryId != "" {
		id := snippet.CategoryId
		categoryID = &id
	}

	tags := snippet.Tags
	if tags == nil {
		tags = []string{}
	}

	return models.Video{
		Id:            item.Id,
		Title:         snippet.Title,
		Description:   snippet.Description,
		Published_At:  snippet.PublishedAt,
		Channel_ID:    snippet.ChannelId,
		Channel_Title: snippet.ChannelTitle,
		Category_ID:   categoryID,
		Tags:          tags,
	}
}
