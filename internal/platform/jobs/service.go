package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"timeclock/internal/domain/holiday"
	"timeclock/internal/domain/timesheet"
	"timeclock/internal/platform/config"
	"timeclock/internal/platform/email"
	"timeclock/internal/platform/metrics"
)

const (
	JobStaleShiftScan  = "stale_shift_scan"
	JobHolidayRollover = "holiday_rollover"
)

type Service struct {
	DB       *pgxpool.Pool
	Cfg      config.Config
	Shifts   *timesheet.Store
	Holidays *holiday.Store
	Mailer   email.Mailer
	Metrics  *metrics.Collector
	queue    chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, shifts *timesheet.Store, holidays *holiday.Store, mailer email.Mailer, collector *metrics.Collector) *Service {
	return &Service{
		DB:       db,
		Cfg:      cfg,
		Shifts:   shifts,
		Holidays: holidays,
		Mailer:   mailer,
		Metrics:  collector,
		queue:    make(chan job, 64),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.StaleShiftScanInterval > 0 {
		go s.schedule(ctx, s.Cfg.StaleShiftScanInterval, JobStaleShiftScan, s.scanStaleShifts)
	}
	if s.Cfg.HolidayRolloverInterval > 0 {
		go s.schedule(ctx, s.Cfg.HolidayRolloverInterval, JobHolidayRollover, s.rolloverHolidays)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) schedule(ctx context.Context, interval time.Duration, jobType string, run func(context.Context) (any, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(jobType, run)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
		if s.Metrics != nil {
			s.Metrics.RecordJobFailure()
		}
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

// scanStaleShifts flags shifts left open past the configured threshold and
// notifies the alert address. The shifts are never auto-closed; an admin
// resolves them through the forced clock-out path.
func (s *Service) scanStaleShifts(ctx context.Context) (any, error) {
	cutoff := time.Now().UTC().Add(-s.Cfg.StaleShiftThreshold)
	stale, err := s.Shifts.LongRunning(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if len(stale) > 0 && s.Cfg.AlertEmail != "" {
		body := fmt.Sprintf("%d shift(s) have been open longer than %s.\n", len(stale), s.Cfg.StaleShiftThreshold)
		for _, shift := range stale {
			body += fmt.Sprintf("- shift %s, employee %s, clocked in %s\n",
				shift.ID, shift.EmployeeID, shift.ClockInTime.Format(time.RFC3339))
		}
		if err := s.Mailer.Send(ctx, s.Cfg.EmailFrom, s.Cfg.AlertEmail, "Stale shift alert", body); err != nil {
			slog.Warn("stale shift alert email failed", "err", err)
		}
	}
	return map[string]any{"staleCount": len(stale), "threshold": s.Cfg.StaleShiftThreshold.String()}, nil
}

// rolloverHolidays materializes next year's rows for this year's recurring
// holidays. Insertions are idempotent on the unique date.
func (s *Service) rolloverHolidays(ctx context.Context) (any, error) {
	year := time.Now().UTC().Year()
	created, err := s.Holidays.MaterializeYear(ctx, year)
	if err != nil {
		return nil, err
	}
	return map[string]any{"year": year, "created": created}, nil
}
