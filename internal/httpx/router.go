package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelcm/cpa-tracker/internal/cpa"
	"github.com/angelcm/cpa-tracker/internal/ingest"
	"github.com/angelcm/cpa-tracker/internal/integrity"
	"github.com/angelcm/cpa-tracker/internal/metrics"
	"github.com/angelcm/cpa-tracker/internal/utils"
)

func NewRouter(log *slog.Logger, etl *ingest.ETL, mSvc *metrics.Service) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(utils.Metrics)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Post("/ingest/run", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("since")
		var since *time.Time
		if q != "" {
			t, err := time.Parse("2006-01-02", q)
			if err != nil {
				http.Error(w, "bad since date (YYYY-MM-DD)", 400)
				return
			}
			since = &t
		}
		res, err := etl.Run(r.Context(), since)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, res)
	})

	mux.Post("/upload/csv", func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "multipart field 'file' required", 400)
			return
		}
		defer f.Close()
		res, err := etl.UploadCSV(r.Context(), f)
		if err != nil {
			// nothing was stored; keep the row diagnostics for the UI
			res.Success = false
			res.Errors = append(res.Errors, err.Error())
			writeJSON(w, statusFor(err), res)
			return
		}
		writeJSON(w, 200, res)
	})

	mux.Post("/export/run", func(w http.ResponseWriter, r *http.Request) {
		t, err := dateQuery(r, "date")
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		n, err := etl.ExportDay(r.Context(), t)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"exported": n})
	})

	mux.Get("/metrics/rolling", func(w http.ResponseWriter, r *http.Request) {
		t, err := dateQuery(r, "date")
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		rows, err := mSvc.Rolling(t)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, rows)
	})

	mux.Get("/metrics/alerts", func(w http.ResponseWriter, r *http.Request) {
		t, err := dateQuery(r, "date")
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		buckets, err := mSvc.Alerts(t)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, buckets)
	})

	mux.Get("/metrics/chart", func(w http.ResponseWriter, r *http.Request) {
		points, err := mSvc.Chart(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		writeJSON(w, 200, points)
	})

	mux.Get("/metrics/summary", func(w http.ResponseWriter, r *http.Request) {
		t, err := dateQuery(r, "date")
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		sum, err := mSvc.Summary(t)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, sum)
	})

	return mux
}

func dateQuery(r *http.Request, key string) (time.Time, error) {
	q := r.URL.Query().Get(key)
	if q == "" {
		return time.Time{}, errors.New(key + " required (YYYY-MM-DD)")
	}
	t, err := time.Parse("2006-01-02", q)
	if err != nil {
		return time.Time{}, errors.New("bad " + key)
	}
	return t, nil
}

// statusFor maps the error taxonomy onto HTTP statuses: fabricated or
// malformed batches are unprocessable, missing data is not found, anything
// else is an upstream failure.
func statusFor(err error) int {
	var die *integrity.DataIntegrityError
	var mre *integrity.MalformedRecordError
	var eie *cpa.EmptyInputError
	switch {
	case errors.As(err, &die), errors.As(err, &mre), errors.Is(err, ingest.ErrNoValidRows):
		return http.StatusUnprocessableEntity
	case errors.As(err, &eie):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
