package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rickgao/steamlytics/api"
	"github.com/rickgao/steamlytics/internal/poller"
	"github.com/rickgao/steamlytics/internal/version"
	"github.com/rickgao/steamlytics/internal/writer"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type clientStatus interface {
	State() api.State
	Level() int
}

type catalogView interface {
	Len() int
	Items() []api.Item
	Item(marketHashName string) (api.Item, bool)
}

type healthDeps struct {
	instanceID string
	db         pinger
	client     clientStatus
	catalog    catalogView
	writer     interface{ Stats() writer.SnapshotStats }
	poller     interface{ Stats() poller.Stats }
	logger     *slog.Logger
}

type healthReport struct {
	Status       string               `json:"status"`
	InstanceID   string               `json:"instance_id"`
	Version      version.Info         `json:"version"`
	State        string               `json:"state"`
	Level        int                  `json:"level"`
	Plan         string               `json:"plan"`
	CatalogItems int                  `json:"catalog_items"`
	Writer       writer.SnapshotStats `json:"writer"`
	WriterTotal  writer.WriterMetrics `json:"writer_total"`
	Poller       poller.Stats         `json:"poller"`
	Components   map[string]any       `json:"components"`
}

// newHealthHandler serves GET /health and the read-only catalog views
// GET /catalog and GET /catalog/{name}.
//
// Health status is "unhealthy" (503) when the database or the API client is
// down, "degraded" when the catalog is empty and "healthy" otherwise.
func newHealthHandler(d healthDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report := healthReport{
			Status:       "healthy",
			InstanceID:   d.instanceID,
			Version:      version.Get(),
			State:        d.client.State().String(),
			Level:        d.client.Level(),
			Plan:         api.PlanName(d.client.Level()),
			CatalogItems: d.catalog.Len(),
			Writer:       d.writer.Stats(),
			Poller:       d.poller.Stats(),
			Components:   make(map[string]any),
		}

		report.WriterTotal = report.Writer.Total()

		if err := d.db.Ping(ctx); err != nil {
			report.Status = "unhealthy"
			report.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			report.Components["postgres"] = "connected"
		}

		switch {
		case d.client.State() != api.StateReady:
			report.Status = "unhealthy"
		case report.Status == "healthy" && report.CatalogItems == 0:
			report.Status = "degraded"
		}

		code := http.StatusOK
		if report.Status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, report, d.logger)
	})

	mux.HandleFunc("GET /catalog", func(w http.ResponseWriter, r *http.Request) {
		items := d.catalog.Items()
		writeJSON(w, http.StatusOK, map[string]any{
			"count": len(items),
			"items": items,
		}, d.logger)
	})

	mux.HandleFunc("GET /catalog/{name...}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		item, ok := d.catalog.Item(name)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown item " + name}, d.logger)
			return
		}
		writeJSON(w, http.StatusOK, item, d.logger)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response", "err", err)
	}
}
