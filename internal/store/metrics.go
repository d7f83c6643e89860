package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MetricSample struct {
	ID                     string    `db:"id" json:"id"`
	CapturedAt             time.Time `db:"captured_at" json:"capturedAt"`
	ProcessRSSBytes        int64     `db:"process_rss_bytes" json:"processRssBytes"`
	SystemMemoryTotalBytes int64     `db:"system_memory_total_bytes" json:"systemMemoryTotalBytes"`
	SystemMemoryUsedBytes  int64     `db:"system_memory_used_bytes" json:"systemMemoryUsedBytes"`
	DiskTotalBytes         int64     `db:"disk_total_bytes" json:"diskTotalBytes"`
	DiskUsedBytes          int64     `db:"disk_used_bytes" json:"diskUsedBytes"`
	ProcessCPULoad         float64   `db:"process_cpu_load" json:"processCpuLoad"`
	SystemCPULoad          float64   `db:"system_cpu_load" json:"systemCpuLoad"`
}

func InsertMetricSample(db *sqlx.DB, sample MetricSample) error {
	sample.ID = uuid.NewString()
	if sample.CapturedAt.IsZero() {
		sample.CapturedAt = time.Now().UTC()
	}
	_, err := db.Exec(`
INSERT INTO server_metric_samples
  (id, captured_at, process_rss_bytes, system_memory_total_bytes, system_memory_used_bytes,
   disk_total_bytes, disk_used_bytes, process_cpu_load, system_cpu_load)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, sample.ID, sample.CapturedAt, sample.ProcessRSSBytes, sample.SystemMemoryTotalBytes,
		sample.SystemMemoryUsedBytes, sample.DiskTotalBytes, sample.DiskUsedBytes,
		sample.ProcessCPULoad, sample.SystemCPULoad)
	return wrap("insert metric sample", err)
}

// LatestMetricSamples returns up to limit samples, newest first.
func LatestMetricSamples(db *sqlx.DB, limit int) ([]*MetricSample, error) {
	if limit <= 0 || limit > 1000 {
		limit = 120
	}
	samples := []*MetricSample{}
	err := db.Select(&samples, `
SELECT * FROM server_metric_samples ORDER BY captured_at DESC LIMIT $1
`, limit)
	if err != nil {
		return nil, wrap("latest metric samples", err)
	}
	return samples, nil
}

// PruneMetricSamples deletes samples older than the cutoff so the table stays
// bounded.
func PruneMetricSamples(db *sqlx.DB, cutoff time.Time) error {
	_, err := db.Exec(`DELETE FROM server_metric_samples WHERE captured_at < $1`, cutoff)
	return wrap("prune metric samples", err)
}
