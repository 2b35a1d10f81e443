package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/grvbrk/yt-categorizer/internal/services"
	"github.com/grvbrk/yt-categorizer/internal/store"
	"github.com/grvbrk/yt-categorizer/internal/utils"
	"github.com/grvbrk/yt-categorizer/internal/youtube"
	"github.com/sirupsen/logrus"
)

const (
	msgMissingChannelURL         = "Missing required query parameter: channelUrl"
	msgMissingChannelURLs        = "Missing required query parameter: channelUrls"
	msgMissingChannelIdentifiers = "Missing required query parameter: channelIdentifiers"
	msgInvalidChannelURL         = "Invalid YouTube channel URL. Please provide a valid channel URL."
	msgNoValidChannelURLs        = "No valid channel URLs provided"
	msgNoVideosFound             = "No videos found for the provided channels"
	msgNoResolvableChannels      = "None of the provided channel identifiers could be resolved"
)

type Ingester interface {
	IngestChannels(ctx context.Context, identifiers []string) (*services.IngestionResult, error)
	ResolveChannels(ctx context.Context, identifiers []string) []string
}

type ChannelHandler struct {
	Ingester    Ingester
	VideoStore  store.VideoStore
	Logger      *logrus.Logger
	MaxChannels int
}

func NewChannelHandler(ingester Ingester, videoStore store.VideoStore, logger *logrus.Logger, maxChannels int) *ChannelHandler {
	return &ChannelHandler{
		Ingester:    ingester,
		VideoStore:  videoStore,
		Logger:      logger,
		MaxChannels: maxChannels,
	}
}

// HandlerGetChannelVideos ingests a single channel and returns its videos
// grouped by category.
func (ch *ChannelHandler) HandlerGetChannelVideos(w http.ResponseWriter, r *http.Request) {
	channelURL := strings.TrimSpace(r.URL.Query().Get("channelUrl"))
	if channelURL == "" {
		utils.WriteError(w, http.StatusBadRequest, msgMissingChannelURL)
		return
	}

	identifier, ok := youtube.ExtractChannelIdentifier(channelURL)
	if !ok {
		ch.Logger.WithField("url", channelURL).Warn("invalid channel url")
		utils.WriteError(w, http.StatusBadRequest, msgInvalidChannelURL)
		return
	}

	result, err := ch.Ingester.IngestChannels(r.Context(), []string{identifier})
	if err != nil {
		ch.Logger.WithError(err).Error("error processing channel videos")
		writeInternalError(w, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, utils.Envelope{"categories": result.Categories}); err != nil {
		ch.Logger.WithError(err).Error("error writing response")
	}
}

// HandlerGetMultipleChannelVideos ingests up to MaxChannels channels. Invalid
// URLs are skipped as long as at least one is valid.
func (ch *ChannelHandler) HandlerGetMultipleChannelVideos(w http.ResponseWriter, r *http.Request) {
	raw, present := r.URL.Query()["channelUrls"]
	joined := strings.TrimSpace(strings.Join(raw, ","))
	if !present || joined == "" {
		utils.WriteError(w, http.StatusBadRequest, msgMissingChannelURLs)
		return
	}

	urls := utils.SplitList(joined)
	if len(urls) == 0 {
		utils.WriteError(w, http.StatusBadRequest, msgNoValidChannelURLs)
		return
	}

	if len(urls) > ch.MaxChannels {
		utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Maximum of %d channel URLs allowed", ch.MaxChannels))
		return
	}

	identifiers := make([]string, 0, len(urls))
	for _, u := range urls {
		identifier, ok := youtube.ExtractChannelIdentifier(u)
		if !ok {
			ch.Logger.WithField("url", u).Warn("skipping invalid channel url")
			continue
		}
		identifiers = append(identifiers, identifier)
	}

	if len(identifiers) == 0 {
		utils.WriteError(w, http.StatusBadRequest, msgNoValidChannelURLs)
		return
	}

	result, err := ch.Ingester.IngestChannels(r.Context(), identifiers)
	if err != nil {
		ch.Logger.WithError(err).Error("error processing multiple channel videos")
		writeInternalError(w, err)
		return
	}

	if len(result.Videos) == 0 {
		utils.WriteError(w, http.StatusNotFound, msgNoVideosFound)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, utils.Envelope{
		"categories":         result.Categories,
		"channelIdentifiers": identifiers,
	}); err != nil {
		ch.Logger.WithError(err).Error("error writing response")
	}
}

// HandlerGetPaginatedVideos pages through stored videos of the given channels.
func (ch *ChannelHandler) HandlerGetPaginatedVideos(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	identifiers := utils.SplitList(query.Get("channelIdentifiers"))
	if len(identifiers) == 0 {
		utils.WriteError(w, http.StatusBadRequest, msgMissingChannelIdentifiers)
		return
	}

	page, limit, ok := parsePaging(w, query.Get("page"), query.Get("limit"))
	if !ok {
		return
	}

	channelIDs := ch.Ingester.ResolveChannels(r.Context(), identifiers)
	if len(channelIDs) == 0 {
		utils.WriteError(w, http.StatusBadRequest, msgNoResolvableChannels)
		return
	}

	response, err := ch.VideoStore.GetVideos(r.Context(), store.GetVideosParams{
		ChannelIDs: channelIDs,
		CategoryID: strings.TrimSpace(query.Get("categoryId")),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		ch.Logger.WithError(err).Error("error getting paginated videos from store")
		writeInternalError(w, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, utils.Envelope{
		"videos":     response.Videos,
		"pagination": response.Pagination,
	}); err != nil {
		ch.Logger.WithError(err).Error("error writing response")
	}
}
