package analytics

import (
	"net/http"
	"strings"

	"github.com/grvbrk/yt-categorizer/internal/store/analytics"
	"github.com/grvbrk/yt-categorizer/internal/utils"
	"github.com/sirupsen/logrus"
)

type AnalyticsIngestionHandler struct {
	IngestionStore analytics.IngestionStore
	Logger         *logrus.Logger
}

// NewAnalyticsIngestionHandler accepts a nil store, in which case every
// request answers 404.
func NewAnalyticsIngestionHandler(ingestionStore analytics.IngestionStore, logger *logrus.Logger) *AnalyticsIngestionHandler {
	return &AnalyticsIngestionHandler{
		IngestionStore: ingestionStore,
		Logger:         logger,
	}
}

func (ah *AnalyticsIngestionHandler) HandlerGetIngestions(w http.ResponseWriter, r *http.Request) {
	if ah.IngestionStore == nil {
		utils.WriteError(w, http.StatusNotFound, "Ingestion analytics is not enabled")
		return
	}

	limit, ok := utils.ParseIntParam(r.URL.Query().Get("limit"), analytics.DefaultListLimit, 1, 100)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid limit parameter. Must be an integer between 1 and 100.")
		return
	}

	channelID := strings.TrimSpace(r.URL.Query().Get("channelId"))

	events, err := ah.IngestionStore.GetIngestions(r.Context(), channelID, limit)
	if err != nil {
		ah.Logger.WithError(err).Error("error getting ingestion events from store")
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, utils.Envelope{"ingestions": events}); err != nil {
		ah.Logger.WithError(err).Error("error writing response")
	}
}
