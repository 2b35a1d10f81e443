package utils

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Envelope map[string]interface{}

// WriteJSON answers with data as indented JSON. When data cannot be encoded
// the client gets a plain 500 and the encoding error is returned for the
// caller to log.
func WriteJSON(w http.ResponseWriter, status int, data Envelope) error {
	js, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return errors.Wrap(err, "error marshaling JSON")
	}

	js = append(js, '\n')
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(js); err != nil {
		return errors.Wrap(err, "error writing JSON response")
	}
	return nil
}

func WriteError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, Envelope{"error": message})
}

// SplitList splits a comma-joined query value, dropping blank entries.
func SplitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseIntParam parses an optional integer query value. Empty means def; any
// other value must be an integer within [min, max] (max <= 0 means unbounded).
func ParseIntParam(raw string, def, min, max int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < min || (max > 0 && n > max) {
		return 0, false
	}
	return n, true
}
