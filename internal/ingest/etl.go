package ingest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/angelcm/cpa-tracker/internal/config"
	"github.com/angelcm/cpa-tracker/internal/cpa"
	"github.com/angelcm/cpa-tracker/internal/integrity"
	"github.com/angelcm/cpa-tracker/internal/models"
	"github.com/angelcm/cpa-tracker/internal/normalize"
	"github.com/angelcm/cpa-tracker/internal/store"
	"github.com/angelcm/cpa-tracker/internal/utils"
)

// ErrNoValidRows means an upload yielded zero canonical records; per the
// normalizer contract that is a failed parse, not an empty success.
var ErrNoValidRows = errors.New("no valid rows in upload")

// ETL pulls raw rows from the ads platform or accepts uploaded CSV bytes,
// normalizes them, gates them through the integrity checks and stores the
// surviving canonical records.
type ETL struct {
	c     HTTPClient
	st    *store.MemoryStore
	log   *slog.Logger
	cfg   config.Config
	guard integrity.Config
	csv   *normalize.CSVNormalizer
}

func NewETL(c HTTPClient, st *store.MemoryStore, log *slog.Logger, cfg config.Config) *ETL {
	guard := integrity.DefaultConfig()
	if cfg.RoundSpendFraction > 0 {
		guard.RoundSpendFraction = cfg.RoundSpendFraction
	}
	return &ETL{
		c:     c,
		st:    st,
		log:   log,
		cfg:   cfg,
		guard: guard,
		csv:   normalize.NewCSVNormalizer(normalize.DefaultAliases()),
	}
}

// Run pulls the ads API report, normalizes and stores it. Rows dated before
// since are dropped. The normalize envelope is returned so callers can show
// row-level diagnostics even on success.
func (e *ETL) Run(ctx context.Context, since *time.Time) (models.NormalizeResult, error) {
	var rows []normalize.APIRow
	if err := GetJSONWithRetry(ctx, e.c, e.cfg.AdsURL, &rows); err != nil {
		return models.NormalizeResult{}, fmt.Errorf("ads api pull: %w", err)
	}
	res := normalize.APIRows(rows)
	if since != nil {
		before := len(res.Data)
		res.Data = filterSince(res.Data, *since)
		res.Summary.ValidRows -= before - len(res.Data)
		normalize.Resummarize(&res)
	}
	if err := e.admit(res.Data); err != nil {
		return res, err
	}
	e.log.Info("api ingest complete",
		slog.Int("valid_rows", res.Summary.ValidRows),
		slog.Int("invalid_rows", res.Summary.InvalidRows),
		slog.Int("store_size", e.st.Len()))
	return res, nil
}

// UploadCSV normalizes an uploaded Facebook export and stores the result.
func (e *ETL) UploadCSV(ctx context.Context, r io.Reader) (models.NormalizeResult, error) {
	res := e.csv.Parse(r)
	if !res.Success {
		utils.RowsRejected.WithLabelValues(string(models.PlatformFacebook)).
			Add(float64(res.Summary.InvalidRows))
		return res, ErrNoValidRows
	}
	if err := e.admit(res.Data); err != nil {
		return res, err
	}
	e.log.Info("csv upload complete",
		slog.Int("valid_rows", res.Summary.ValidRows),
		slog.Int("skipped_rows", res.Summary.SkippedRows),
		slog.Int("warnings", len(res.Errors)))
	return res, nil
}

// admit is the single gate between normalized data and the store.
func (e *ETL) admit(records []models.DailyMetric) error {
	if err := integrity.ValidateStructure(records); err != nil {
		return err
	}
	if err := integrity.Check(records, e.guard); err != nil {
		utils.IntegrityFailures.Inc()
		e.log.Warn("batch rejected", slog.String("err", err.Error()))
		return err
	}
	e.st.UpsertAll(records)
	for _, m := range records {
		utils.RowsIngested.WithLabelValues(string(m.Platform)).Inc()
	}
	return nil
}

// ExportDay builds warehouse rows for one day and POSTs them, HMAC-signed,
// to the configured sink. Returns the number of rows exported.
func (e *ETL) ExportDay(ctx context.Context, date time.Time) (int, error) {
	if e.cfg.SinkURL == "" || e.cfg.SinkSecret == "" {
		return 0, errors.New("sink not configured")
	}
	day := dayUTC(date)
	metrics := e.st.Query(day, day)
	if len(metrics) == 0 {
		return 0, nil
	}

	// cpa_change_percent comes from the rolling engine over full history
	changeByKey := map[string]float64{}
	if results, err := cpa.ComputeRolling(e.st.All(), day); err == nil {
		for _, r := range results {
			changeByKey[string(r.Platform)+"|"+r.AdSetID] = r.ChangePercent
		}
	}

	rows := make([]models.WarehouseRow, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, models.WarehouseRow{
			Date:              m.Date.Format("2006-01-02"),
			Platform:          string(m.Platform),
			AdSetID:           m.AdSetID,
			AdSetName:         m.AdSetName,
			TotalSpend:        m.Spend,
			Conversions:       m.Conversions,
			CostPerConversion: m.CostPerConversion,
			CPAChangePercent:  changeByKey[string(m.Platform)+"|"+m.AdSetID],
		})
	}

	b, err := json.Marshal(rows)
	if err != nil {
		return 0, err
	}
	mac := hmac.New(sha256.New, []byte(e.cfg.SinkSecret))
	mac.Write(b)
	sig := hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.SinkURL, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", sig)
	resp, err := e.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, errors.New("export sink non-2xx")
	}
	return len(rows), nil
}

func filterSince(ms []models.DailyMetric, since time.Time) []models.DailyMetric {
	cutoff := dayUTC(since)
	out := ms[:0]
	for _, m := range ms {
		if !m.Date.Before(cutoff) {
			out = append(out, m)
		}
	}
	return out
}

func dayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
