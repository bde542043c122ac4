package mock

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-radar-etl/internal/domain"
)

// Gateway serves fixtures over the same JSON routes the edex client calls.
type Gateway struct {
	mux      *http.ServeMux
	fixtures map[string]Fixture
	logger   *slog.Logger
}

// NewGateway creates a gateway serving the given fixtures. A site without a
// fixture lists no times.
func NewGateway(logger *slog.Logger, fixtures ...Fixture) *Gateway {
	g := &Gateway{
		mux:      http.NewServeMux(),
		fixtures: make(map[string]Fixture, len(fixtures)),
		logger:   logger,
	}
	for _, f := range fixtures {
		g.fixtures[domain.NormalizeSite(f.Site)] = f
	}
	g.mux.HandleFunc("POST /times", g.handleTimes)
	g.mux.HandleFunc("POST /radar/records", g.handleRecords)
	return g
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mux.ServeHTTP(w, r)
}

func (g *Gateway) handleTimes(w http.ResponseWriter, r *http.Request) {
	var req domain.DataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Datatype != domain.RadarDatatype {
		http.Error(w, "unsupported datatype "+req.Datatype, http.StatusBadRequest)
		return
	}

	times := []time.Time{}
	for _, name := range req.LocationNames {
		times = append(times, g.fixtures[domain.NormalizeSite(name)].Times...)
	}
	g.logger.Debug("mock times", "sites", req.LocationNames, "count", len(times))
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"times": times})
}

func (g *Gateway) handleRecords(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	records := []domain.RadarRecord{}
	for _, rec := range g.fixtures[domain.NormalizeSite(req.Site)].Records {
		if rec.DataTime.Before(req.TimeRange.Start) || rec.DataTime.After(req.TimeRange.End) {
			continue
		}
		records = append(records, rec)
	}
	g.logger.Debug("mock records", "site", req.Site, "count", len(records))
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}
