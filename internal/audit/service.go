// Package audit runs the end-to-end brand visibility audit: dispatch, extraction,
// scoring, gap and hallucination analysis, recommendations and persistence.
package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brandpilot/geo-audit/internal/auth"
	"github.com/brandpilot/geo-audit/internal/brands"
	"github.com/brandpilot/geo-audit/internal/competitors"
	"github.com/brandpilot/geo-audit/internal/config"
	"github.com/brandpilot/geo-audit/internal/dispatch"
	"github.com/brandpilot/geo-audit/internal/extraction"
	"github.com/brandpilot/geo-audit/internal/gaps"
	"github.com/brandpilot/geo-audit/internal/hallucination"
	"github.com/brandpilot/geo-audit/internal/metrics"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/brandpilot/geo-audit/internal/notifications"
	"github.com/brandpilot/geo-audit/internal/recommendations"
	"github.com/brandpilot/geo-audit/internal/scoring"
	"github.com/brandpilot/geo-audit/internal/sitecheck"
	"github.com/brandpilot/geo-audit/internal/storage"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrAggregation means every platform query failed and no score can be computed
	ErrAggregation = errors.New("all platform queries failed")
	// ErrRateLimited means the caller's daily audit quota is used up
	ErrRateLimited = errors.New("audit quota exceeded")
)

const (
	defaultSaveRetryInterval = 2 * time.Second
	saveRetries              = 5
	backgroundTimeout        = 2 * time.Minute
)

// SystemCaller runs scheduled audits
var SystemCaller = models.Caller{ID: "scheduler", Role: auth.RoleAdmin, Tier: models.TierAgency}

// Dispatcher queries the AI platforms for a request
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.AuditRequest) ([]models.PlatformResponse, error)
}

// ReportStore persists finished reports
type ReportStore interface {
	Save(ctx context.Context, report *models.AuditReport) (string, error)
}

// SchemaChecker lists the structured data types a website already publishes
type SchemaChecker interface {
	SchemaTypes(ctx context.Context, pageURL string) (map[string]bool, error)
}

// Limiter enforces per-caller audit quotas
type Limiter interface {
	Allow(caller models.Caller) bool
}

var (
	_ Dispatcher    = (*dispatch.Dispatcher)(nil)
	_ ReportStore   = (*storage.ReportStore)(nil)
	_ SchemaChecker = (*sitecheck.Checker)(nil)
	_ Limiter       = (*auth.TierLimiter)(nil)
)

// Dependencies are the collaborators of the audit service. Notifier, Sites,
// Limiter and Metrics are optional.
type Dependencies struct {
	Dispatcher Dispatcher
	Store      ReportStore
	Registry   *brands.Registry
	Notifier   notifications.Notifier
	Sites      SchemaChecker
	Limiter    Limiter
	Metrics    *metrics.Recorder
}

// Service orchestrates audit runs
type Service struct {
	config      *config.Config
	dispatcher  Dispatcher
	store       ReportStore
	registry    *brands.Registry
	notifier    notifications.Notifier
	sites       SchemaChecker
	limiter     Limiter
	metrics     *metrics.Recorder
	extractor   *extraction.Extractor
	gaps        *gaps.Analyzer
	detector    *hallucination.Detector
	competitors *competitors.Analyzer

	saveRetryInterval time.Duration
	now               func() time.Time

	stats      *Stats
	mu         sync.RWMutex
	background sync.WaitGroup
}

// NewService creates a new audit service
func NewService(cfg *config.Config, deps Dependencies) *Service {
	registry := deps.Registry
	if registry == nil {
		registry = brands.Default()
	}
	extractor := extraction.NewExtractor()

	return &Service{
		config:            cfg,
		dispatcher:        deps.Dispatcher,
		store:             deps.Store,
		registry:          registry,
		notifier:          deps.Notifier,
		sites:             deps.Sites,
		limiter:           deps.Limiter,
		metrics:           deps.Metrics,
		extractor:         extractor,
		gaps:              gaps.NewAnalyzer(registry.Venues()),
		detector:          hallucination.NewDetector(),
		competitors:       competitors.NewAnalyzer(extractor),
		saveRetryInterval: defaultSaveRetryInterval,
		now:               time.Now,
		stats:             newStats(),
	}
}

// Run audits one brand for caller. Platform failures are absorbed into the report;
// the errors returned are validation errors, ErrRateLimited, ErrAggregation and
// the caller's context error. A report that could not be saved is still returned
// and saving is retried in the background.
func (s *Service) Run(ctx context.Context, req models.AuditRequest, caller models.Caller) (*models.AuditReport, error) {
	start := time.Now()
	s.metrics.StartAudit()
	status := metrics.StatusSuccess
	defer func() {
		s.metrics.EndAudit(status, time.Since(start))
	}()

	req.BrandName = strings.TrimSpace(req.BrandName)
	req.Industry = strings.TrimSpace(req.Industry)
	if err := req.Validate(); err != nil {
		status = metrics.StatusValidation
		return nil, err
	}

	logger := logrus.WithFields(logrus.Fields{
		"brand":  req.BrandName,
		"caller": caller.ID,
		"tier":   caller.Tier,
	})

	if s.limiter != nil && !s.limiter.Allow(caller) {
		status = metrics.StatusRateLimited
		s.updateStats(func(st *Stats) { st.RateLimited++ })
		logger.Warn("Audit quota exhausted")
		return nil, fmt.Errorf("%w: daily quota of the %s tier is used up", ErrRateLimited, caller.Tier)
	}

	req, aliases := s.registry.Resolve(req, s.config.MaxCompetitors)
	logger.Infof("Starting audit (industry %s, %d competitors, %d facts)", req.Industry, len(req.Competitors), len(req.Facts))

	responses, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			status = metrics.StatusValidation
		case ctx.Err() != nil:
			status = metrics.StatusCancelled
			logger.Warn("Audit cancelled by caller")
		}
		return nil, err
	}

	if dispatch.AllFailed(responses) {
		status = metrics.StatusAggregation
		s.updateStats(func(st *Stats) { st.FailedAudits++ })
		logger.Errorf("All %d platform queries failed", len(responses))
		return nil, fmt.Errorf("%w: %d queries", ErrAggregation, len(responses))
	}

	report := s.assemble(ctx, req, aliases, responses)

	if _, err := s.store.Save(ctx, report); err != nil {
		s.metrics.RecordStoreError("save")
		logger.Errorf("Failed to save report %s, retrying in background: %v", report.ID, err)
		s.retrySave(ctx, report)
	}

	s.notifyCritical(ctx, report)
	s.record(report, responses, time.Since(start))

	logger.Infof("Audit %s completed in %v: score %d (%s), %d gaps, %d hallucinations",
		report.ID, time.Since(start), report.VisibilityScore, report.VisibilityGrade,
		len(report.CitationGaps), len(report.HallucinationAlerts))

	return report, nil
}

// Quick runs an audit and returns its summary
func (s *Service) Quick(ctx context.Context, req models.AuditRequest, caller models.Caller) (*Summary, error) {
	report, err := s.Run(ctx, req, caller)
	if err != nil {
		return nil, err
	}
	summary := Summarize(report)
	return &summary, nil
}

// Wait blocks until background saves and notifications have finished
func (s *Service) Wait() {
	s.background.Wait()
}

func (s *Service) assemble(ctx context.Context, req models.AuditRequest, aliases []string, responses []models.PlatformResponse) *models.AuditReport {
	mentions := s.extractor.ExtractAll(responses, req.BrandName, aliases)
	result := scoring.Score(mentions)
	now := s.now().UTC()

	report := &models.AuditReport{
		ID:        uuid.NewString(),
		BrandName: req.BrandName,
		Industry:  req.Industry,
		URL:       req.URL,
		Mentions:  mentions,
		CreatedAt: now,
	}
	scoring.Apply(report, result)

	report.CitationGaps = s.gaps.Analyze(req.BrandName, aliases, req.Industry, req.Competitors, responses)
	report.HallucinationAlerts = s.detector.Detect(req.BrandName, req.Industry, req.Facts, mentions)
	report.CompetitorInsights = s.competitors.Insights(req.BrandName, req.Industry, result, req.Competitors, responses)
	report.ContentRecommendations = recommendations.Content(recommendations.ContentInput{
		Brand:    req.BrandName,
		Industry: req.Industry,
		Score:    result.Score,
		Mentions: mentions,
		Insights: report.CompetitorInsights,
		Year:     now.Year(),
	})
	report.SchemaRecommendations = recommendations.Schema(req.BrandName, req.Industry, req.URL, s.existingSchema(ctx, req.URL))

	countActions(report)
	return report
}

func (s *Service) existingSchema(ctx context.Context, siteURL string) map[string]bool {
	if s.sites == nil || siteURL == "" {
		return nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, s.config.PlatformTimeout)
	defer cancel()

	types, err := s.sites.SchemaTypes(checkCtx, siteURL)
	if err != nil {
		logrus.Warnf("Could not check structured data on %s: %v", siteURL, err)
		return nil
	}
	return types
}

func countActions(report *models.AuditReport) {
	report.TotalActions = len(report.CitationGaps) + len(report.HallucinationAlerts) +
		len(report.ContentRecommendations) + len(report.SchemaRecommendations)

	report.CriticalActions = 0
	for _, gap := range report.CitationGaps {
		if gap.Priority == models.PriorityCritical {
			report.CriticalActions++
		}
	}
	for _, alert := range report.HallucinationAlerts {
		if alert.Severity == models.PriorityCritical {
			report.CriticalActions++
		}
	}
}

// retrySave keeps trying to store the report after the response has been sent.
// The object name is fixed by the report, so retries overwrite rather than
// duplicate.
func (s *Service) retrySave(ctx context.Context, report *models.AuditReport) {
	saved := *report
	s.updateStats(func(st *Stats) { st.PendingSaves++ })

	s.background.Add(1)
	go func() {
		defer s.background.Done()

		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
		defer cancel()

		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = s.saveRetryInterval

		attempt := 0
		err := backoff.Retry(func() error {
			attempt++
			_, err := s.store.Save(bgCtx, &saved)
			if err != nil {
				s.metrics.RecordStoreError("save_retry")
				logrus.Debugf("Save retry %d of report %s failed: %v", attempt, saved.ID, err)
			}
			return err
		}, backoff.WithContext(backoff.WithMaxRetries(policy, saveRetries), bgCtx))

		s.updateStats(func(st *Stats) {
			st.PendingSaves--
			if err != nil {
				st.SaveErrors++
			}
		})

		if err != nil {
			logrus.Errorf("Giving up on saving report %s after %d attempts: %v", saved.ID, attempt, err)
			return
		}
		logrus.Infof("Saved report %s after %d retries", saved.ID, attempt)
	}()
}

func (s *Service) notifyCritical(ctx context.Context, report *models.AuditReport) {
	if s.notifier == nil {
		return
	}

	var critical []models.HallucinationAlert
	for _, alert := range report.HallucinationAlerts {
		if alert.Severity == models.PriorityCritical {
			critical = append(critical, alert)
		}
	}
	if len(critical) == 0 {
		return
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()

		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
		defer cancel()

		if err := s.notifier.SendAlert(bgCtx, report, critical); err != nil {
			logrus.Errorf("Failed to send hallucination alert for %s: %v", report.BrandName, err)
		}
	}()
}

func (s *Service) record(report *models.AuditReport, responses []models.PlatformResponse, duration time.Duration) {
	s.metrics.RecordScore(report.VisibilityScore)
	for _, alert := range report.HallucinationAlerts {
		s.metrics.RecordHallucination(string(alert.Severity))
	}

	s.updateStats(func(st *Stats) {
		st.TotalAudits++
		st.scoreSum += report.VisibilityScore
		st.AverageScore = float64(st.scoreSum) / float64(st.TotalAudits)
		st.LastRun = report.CreatedAt
		st.LastRunDuration = duration.String()
		st.GradeBreakdown[report.VisibilityGrade]++
		for _, resp := range responses {
			if resp.Failed() {
				st.PlatformFallbacks[resp.Platform]++
			}
		}
		for _, alert := range report.HallucinationAlerts {
			st.HallucinationsBySeverity[alert.Severity]++
		}
	})
}
