package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/brandpilot/geo-audit/internal/audit"
	"github.com/brandpilot/geo-audit/internal/brands"
	"github.com/brandpilot/geo-audit/internal/config"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/brandpilot/geo-audit/internal/notifications"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const runTimeout = 30 * time.Minute

// Auditor runs one audit
type Auditor interface {
	Run(ctx context.Context, req models.AuditRequest, caller models.Caller) (*models.AuditReport, error)
}

// Service re-audits monitored brands on a schedule and sends a digest
type Service struct {
	config   *config.Config
	auditor  Auditor
	registry *brands.Registry
	notifier notifications.Notifier
	cron     *cron.Cron
	now      func() time.Time
}

// NewService creates a new scheduler service. notifier may be nil.
func NewService(cfg *config.Config, auditor Auditor, registry *brands.Registry, notifier notifications.Notifier) *Service {
	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logrus.Warnf("Unknown time zone %q, scheduling in UTC", cfg.TimeZone)
		location = time.UTC
	}

	return &Service{
		config:   cfg,
		auditor:  auditor,
		registry: registry,
		notifier: notifier,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logrus.StandardLogger()))),
		),
		now: time.Now,
	}
}

// Start begins the scheduled audits
func (s *Service) Start() error {
	var cronExpression string

	switch s.config.ReportSchedule {
	case "off":
		logrus.Info("Scheduled audits are disabled")
		return nil
	case "daily":
		// Run daily at 9 AM
		cronExpression = "0 0 9 * * *"
	default:
		// Run weekly on Monday at 9 AM
		cronExpression = "0 0 9 * * MON"
	}

	_, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		logrus.Info("Starting scheduled audit run")
		if err := s.RunDigest(ctx); err != nil {
			logrus.Errorf("Scheduled audit run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audits: %w", err)
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %s schedule for %d monitored brands", s.config.ReportSchedule, len(s.registry.Monitored()))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}

// RunDigest audits every monitored brand one after another and sends the digest.
// A failed brand is listed in the digest and does not stop the run.
func (s *Service) RunDigest(ctx context.Context) error {
	monitored := s.registry.Monitored()
	if len(monitored) == 0 {
		logrus.Info("No monitored brands, skipping scheduled run")
		return nil
	}

	digest := &models.Digest{
		GeneratedAt: s.now().UTC(),
		Period:      s.period(),
		Reports:     []models.AuditReport{},
	}

	for _, brand := range monitored {
		if err := ctx.Err(); err != nil {
			return err
		}

		report, err := s.auditor.Run(ctx, brand.Request(), audit.SystemCaller)
		if err != nil {
			logrus.WithField("brand", brand.Name).Errorf("Scheduled audit failed: %v", err)
			digest.Failed = append(digest.Failed, brand.Name)
			continue
		}
		digest.Reports = append(digest.Reports, *report)
	}

	logrus.Infof("Scheduled run finished: %d audited, %d failed", len(digest.Reports), len(digest.Failed))

	if s.notifier == nil || !s.config.NotificationsEnabled() {
		return nil
	}
	if err := s.notifier.SendDigest(ctx, digest); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	return nil
}

func (s *Service) period() string {
	if s.config.ReportSchedule == "daily" {
		return "daily"
	}
	return "weekly"
}
