// Package jobs owns the recurring maintenance work: abandoning idle
// sessions, sweeping expired tokens, and sampling server health.
package jobs

import (
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"intervuex-backend-go/internal/store"
)

type Scheduler struct {
	DB   *sqlx.DB
	Log  *zap.Logger
	cron *cron.Cron

	SessionIdle    time.Duration
	MetricsEvery   time.Duration
	MetricsPath    string
	MetricsHistory time.Duration
}

func NewScheduler(db *sqlx.DB, log *zap.Logger, sessionIdle, metricsEvery time.Duration, metricsPath string) *Scheduler {
	return &Scheduler{
		DB:             db,
		Log:            log,
		cron:           cron.New(),
		SessionIdle:    sessionIdle,
		MetricsEvery:   metricsEvery,
		MetricsPath:    metricsPath,
		MetricsHistory: 7 * 24 * time.Hour,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 10m", s.abandonStaleSessions); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@hourly", s.sweepExpiredTokens); err != nil {
		return err
	}
	spec := fmt.Sprintf("@every %ds", int(s.MetricsEvery.Seconds()))
	if _, err := s.cron.AddFunc(spec, s.captureMetrics); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) abandonStaleSessions() {
	cutoff := time.Now().UTC().Add(-s.SessionIdle)
	count, err := store.AbandonStaleSessions(s.DB, cutoff)
	if err != nil {
		s.Log.Warn("stale session sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.Log.Info("abandoned stale sessions", zap.Int64("count", count))
	}
}

func (s *Scheduler) sweepExpiredTokens() {
	count, err := store.DeactivateExpiredTokens(s.DB)
	if err != nil {
		s.Log.Warn("token sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.Log.Info("deactivated expired tokens", zap.Int64("count", count))
	}
}

func (s *Scheduler) captureMetrics() {
	sample, err := CaptureMetrics(s.MetricsPath)
	if err != nil {
		s.Log.Warn("metric capture failed", zap.Error(err))
		return
	}
	if err := store.InsertMetricSample(s.DB, sample); err != nil {
		s.Log.Warn("metric insert failed", zap.Error(err))
	}
	if err := store.PruneMetricSamples(s.DB, time.Now().UTC().Add(-s.MetricsHistory)); err != nil {
		s.Log.Warn("metric prune failed", zap.Error(err))
	}
}

// CaptureMetrics samples process and host health. Individual probe failures
// leave zeroes rather than failing the sample.
func CaptureMetrics(diskPath string) (store.MetricSample, error) {
	proc, _ := process.NewProcess(int32(os.Getpid()))
	memStat, err := mem.VirtualMemory()
	if err != nil {
		return store.MetricSample{}, err
	}
	diskStat, err := disk.Usage(diskPath)
	if err != nil {
		diskStat, err = disk.Usage("/")
		if err != nil {
			return store.MetricSample{}, err
		}
	}
	sample := store.MetricSample{
		CapturedAt:             time.Now().UTC(),
		SystemMemoryTotalBytes: int64(memStat.Total),
		SystemMemoryUsedBytes:  int64(memStat.Total - memStat.Available),
		DiskTotalBytes:         int64(diskStat.Total),
		DiskUsedBytes:          int64(diskStat.Used),
	}
	if proc != nil {
		if rss, _ := proc.MemoryInfo(); rss != nil {
			sample.ProcessRSSBytes = int64(rss.RSS)
		}
		if cpuPerc, _ := proc.CPUPercent(); cpuPerc > 0 {
			sample.ProcessCPULoad = cpuPerc / 100.0
		}
	}
	if sysCPU, _ := cpu.Percent(0, false); len(sysCPU) > 0 {
		sample.SystemCPULoad = sysCPU[0] / 100.0
	}
	return sample, nil
}
