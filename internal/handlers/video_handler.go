package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/grvbrk/yt-categorizer/internal/store"
	"github.com/grvbrk/yt-categorizer/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	msgInvalidPage    = "Invalid page parameter. Must be a positive integer."
	msgInvalidLimit   = "Invalid limit parameter. Must be an integer between 1 and 100."
	msgUnknownError   = "An unknown error occurred"
	msgMissingChannel = "Missing required path parameter: channelId"
)

type VideoHandler struct {
	VideoStore store.VideoStore
	Logger     *logrus.Logger
}

func NewVideoHandler(videoStore store.VideoStore, logger *logrus.Logger) *VideoHandler {
	return &VideoHandler{
		VideoStore: videoStore,
		Logger:     logger,
	}
}

func (vh *VideoHandler) HandlerGetVideos(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, limit, ok := parsePaging(w, query.Get("page"), query.Get("limit"))
	if !ok {
		return
	}

	params := store.GetVideosParams{
		ChannelTitle: strings.TrimSpace(query.Get("channelTitle")),
		CategoryID:   strings.TrimSpace(query.Get("categoryId")),
		Page:         page,
		Limit:        limit,
	}

	response, err := vh.VideoStore.GetVideos(r.Context(), params)
	if err != nil {
		vh.Logger.WithError(err).Error("error getting videos from store")
		writeInternalError(w, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, utils.Envelope{
		"videos":     response.Videos,
		"pagination": response.Pagination,
	}); err != nil {
		vh.Logger.WithError(err).Error("error writing response")
	}
}

func (vh *VideoHandler) HandlerGetVideosByChannel(w http.ResponseWriter, r *http.Request) {
	channelID := strings.TrimSpace(chi.URLParam(r, "channelId"))
	if channelID == "" {
		utils.WriteError(w, http.StatusBadRequest, msgMissingChannel)
		return
	}

	videos, err := vh.VideoStore.GetVideosByChannel(r.Context(), channelID)
	if err != nil {
		vh.Logger.WithError(err).WithField("channel_id", channelID).Error("error getting channel videos from store")
		writeInternalError(w, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, utils.Envelope{"videos": videos}); err != nil {
		vh.Logger.WithError(err).Error("error writing response")
	}
}

// parsePaging validates page and limit, writing a 400 when either is invalid.
func parsePaging(w http.ResponseWriter, rawPage, rawLimit string) (int, int, bool) {
	page, ok := utils.ParseIntParam(rawPage, store.DefaultPage, 1, 0)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidPage)
		return 0, 0, false
	}

	limit, ok := utils.ParseIntParam(rawLimit, store.DefaultLimit, 1, store.MaxLimit)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidLimit)
		return 0, 0, false
	}

	return page, limit, true
}

func writeInternalError(w http.ResponseWriter, err error) {
	message := msgUnknownError
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	utils.WriteError(w, http.StatusInternalServerError, message)
}
