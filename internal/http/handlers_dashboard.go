package http

import (
	"net/http"

	"ricevute/internal/charts"
	"ricevute/internal/export"
	"ricevute/internal/stats"
)

// handleDashboard returns the full derived view for the selected month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toDashboardJSON(s.engine.Views()))
}

// handleDailySeries returns only the per-day series.
func (s *Server) handleDailySeries(w http.ResponseWriter, r *http.Request) {
	v := s.engine.Views()
	daily := make([]dailyPointJSON, len(v.Daily))
	for i, p := range v.Daily {
		daily[i] = dailyPointJSON{Day: p.Day, Amount: toMoneyJSON(p.Amount), Cumulative: toMoneyJSON(p.Cumulative)}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cursor": toCursorJSON(v.Cursor),
		"daily":  daily,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	v := s.engine.Views()
	writeJSON(w, http.StatusOK, map[string]any{
		"cursor":     toCursorJSON(v.Cursor),
		"categories": toBreakdownJSON(v.Categories),
	})
}

func (s *Server) handleMerchants(w http.ResponseWriter, r *http.Request) {
	v := s.engine.Views()
	writeJSON(w, http.StatusOK, map[string]any{
		"cursor":    toCursorJSON(v.Cursor),
		"merchants": toBreakdownJSON(v.Merchants),
	})
}

// handleExportCSV streams the selected month's receipts as a CSV
// download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	v := s.engine.Views()
	// Cursor-only key, same staleness window as serveChart.
	key := "csv:" + v.Cursor.String()

	data, ok := s.artifactCache.Get(key)
	if !ok {
		var err error
		data, err = export.MonthCSV(v)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "csv export failed", err)
			return
		}
		s.artifactCache.Set(key, data)
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(v.Cursor)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDailyChart(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "chart:daily:", func(v stats.Views) ([]byte, error) {
		return charts.DailySeriesPNG(v)
	})
}

func (s *Server) handleCategoriesChart(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "chart:categories:", func(v stats.Views) ([]byte, error) {
		return charts.BreakdownPNG("Categories", v.Categories)
	})
}

func (s *Server) serveChart(w http.ResponseWriter, r *http.Request, keyPrefix string, render func(stats.Views) ([]byte, error)) {
	v := s.engine.Views()
	// Keys carry the cursor only. A render that read Views before a
	// purge can re-cache a stale artifact right after it; the TTL caps
	// how long that survives.
	key := keyPrefix + v.Cursor.String()

	png, ok := s.artifactCache.Get(key)
	if !ok {
		var err error
		png, err = render(v)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "chart rendering failed", err)
			return
		}
		if png != nil {
			s.artifactCache.Set(key, png)
		}
	}
	if png == nil {
		writeError(w, r, http.StatusNotFound, "no data for selected month", nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
