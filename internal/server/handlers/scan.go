// internal/server/handlers/scan.go

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/scan"
)

// ScanHandler handles scan-related HTTP requests
type ScanHandler struct {
	scanner scan.Scanner
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scanner scan.Scanner) *ScanHandler {
	return &ScanHandler{
		scanner: scanner,
	}
}

// ScanTelegram triggers a Telegram scan
func (h *ScanHandler) ScanTelegram(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "telegram", h.scanner.ScanTelegram)
}

// ScanVK triggers a VK scan
func (h *ScanHandler) ScanVK(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "vk", h.scanner.ScanVK)
}

// ScanTwitter triggers a Twitter scan
func (h *ScanHandler) ScanTwitter(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "twitter", h.scanner.ScanTwitter)
}

// ScanAll triggers a scan of every platform
func (h *ScanHandler) ScanAll(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "all", h.scanner.ScanAll)
}

func (h *ScanHandler) run(
	w http.ResponseWriter,
	r *http.Request,
	source string,
	fn func(ctx context.Context, opts scan.Options) (*scan.Result, error),
) {
	opts, err := parseOptions(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := fn(r.Context(), opts)
	if err != nil {
		log.Printf("http: %s scan failed: %v", source, err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":     err.Error(),
			"source":    source,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"posts":     []post.ScoredPost{},
		})
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// parseOptions reads scan parameters from the query string, or the JSON
// body for POST requests. Body values win over query values.
func parseOptions(r *http.Request) (scan.Options, error) {
	var opts scan.Options

	q := r.URL.Query()
	if v := q.Get("hours_back"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errBadParam("hours_back")
		}
		opts.HoursBack = n
	}
	if v := q.Get("min_score"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return opts, errBadParam("min_score")
		}
		opts.MinScore = f
	}
	if v := q.Get("batch_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errBadParam("batch_size")
		}
		opts.BatchSize = n
	}

	if r.Method == http.MethodPost && r.Body != nil && r.ContentLength != 0 {
		var body struct {
			HoursBack *int     `json:"hours_back"`
			MinScore  *float64 `json:"min_score"`
			BatchSize *int     `json:"batch_size"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return opts, errBadParam("body")
		}
		if body.HoursBack != nil {
			if *body.HoursBack <= 0 {
				return opts, errBadParam("hours_back")
			}
			opts.HoursBack = *body.HoursBack
		}
		if body.MinScore != nil {
			if *body.MinScore < 0 {
				return opts, errBadParam("min_score")
			}
			opts.MinScore = *body.MinScore
		}
		if body.BatchSize != nil {
			if *body.BatchSize <= 0 {
				return opts, errBadParam("batch_size")
			}
			opts.BatchSize = *body.BatchSize
		}
	}

	return opts, nil
}

func errBadParam(name string) error {
	return fmt.Errorf("invalid parameter: %s", name)
}
