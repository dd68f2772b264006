package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/coldfinder/internal/models"
)

const maxRequestBody = 1 << 20

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.Query
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&query); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	local, _ := strconv.ParseBool(r.URL.Query().Get("local"))
	s.logger.Debug("search request",
		zap.String("crop", query.Crop),
		zap.String("quantity", query.Quantity),
		zap.String("location", query.Location),
		zap.Bool("local", local),
	)
	var result *models.RankedResult
	if local {
		result = s.engine.SearchLocal(&query)
	} else {
		result = s.engine.Search(r.Context(), &query)
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListFacilities(w http.ResponseWriter, r *http.Request) {
	kb := s.catalog.Snapshot()
	facilities := kb.Facilities()
	if facilities == nil {
		facilities = []*models.Facility{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"version":    kb.Version(),
		"facilities": facilities,
		"count":      len(facilities),
	})
}

func (s *Server) handleGetFacility(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, ok := s.catalog.Snapshot().Facility(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "facility not found")
		return
	}
	s.respondJSON(w, http.StatusOK, f)
}

type cropResponse struct {
	*models.CropProfile
	Label string `json:"label"`
}

func (s *Server) handleListCrops(w http.ResponseWriter, r *http.Request) {
	locale := localeOf(r)
	kb := s.catalog.Snapshot()
	crops := make([]cropResponse, 0, len(kb.Crops()))
	for _, c := range kb.Crops() {
		crops = append(crops, cropResponse{CropProfile: c, Label: c.Label(locale)})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"version": kb.Version(),
		"crops":   crops,
		"count":   len(crops),
	})
}

func (s *Server) handleGetCrop(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	c, ok := s.catalog.Snapshot().LookupCropProfile(name)
	if !ok {
		s.respondError(w, http.StatusNotFound, "crop not found")
		return
	}
	s.respondJSON(w, http.StatusOK, cropResponse{CropProfile: c, Label: c.Label(localeOf(r))})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	kb := s.catalog.Snapshot()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"catalog": map[string]interface{}{
			"version":    kb.Version(),
			"source":     s.catalog.Source(),
			"loaded_at":  s.catalog.LoadedAt().UTC().Format(time.RFC3339),
			"facilities": kb.Len(),
			"crops":      len(kb.Crops()),
		},
		"remote_enabled": s.engine.RemoteEnabled(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// localeOf reads the ?lang= parameter, defaulting to English.
func localeOf(r *http.Request) string {
	if l := r.URL.Query().Get("lang"); l != "" {
		return l
	}
	return models.DefaultLocale
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
