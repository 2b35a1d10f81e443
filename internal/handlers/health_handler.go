package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/grvbrk/yt-categorizer/internal/utils"
)

func HandlerHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode("Hello")
}

func HandlerHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, utils.Envelope{"status": "ok"})
}
