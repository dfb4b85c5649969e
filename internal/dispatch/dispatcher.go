// Package dispatch fans an audit request out to the configured AI platforms.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/brandpilot/geo-audit/internal/config"
	"github.com/brandpilot/geo-audit/internal/metrics"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/brandpilot/geo-audit/internal/platforms"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const (
	defaultRetryInterval = 500 * time.Millisecond
	maxRetries           = 1
)

// Task is one (platform, query type) query of an audit
type Task struct {
	Platform  models.Platform
	QueryType models.QueryType
	Query     string
}

// Dispatcher queries every configured platform for every configured query type.
// A failing platform never fails the audit: its slot gets a canned fallback answer
// marked as mock.
type Dispatcher struct {
	clients         map[models.Platform]platforms.Client
	order           []models.Platform
	queryTypes      []models.QueryType
	platformTimeout time.Duration
	auditTimeout    time.Duration
	maxConcurrency  int
	demoMode        bool
	retryInterval   time.Duration
	metrics         *metrics.Recorder
}

// NewDispatcher creates a dispatcher over clients, following the platform order of cfg
func NewDispatcher(cfg *config.Config, clients []platforms.Client, recorder *metrics.Recorder) *Dispatcher {
	byName := make(map[models.Platform]platforms.Client, len(clients))
	for _, client := range clients {
		byName[client.GetName()] = client
	}

	return &Dispatcher{
		clients:         byName,
		order:           cfg.Platforms,
		queryTypes:      cfg.QueryTypes,
		platformTimeout: cfg.PlatformTimeout,
		auditTimeout:    cfg.AuditTimeout,
		maxConcurrency:  cfg.MaxConcurrency,
		demoMode:        cfg.DemoMode,
		retryInterval:   defaultRetryInterval,
		metrics:         recorder,
	}
}

// Tasks expands a request into its platform queries, platform-major in configured order
func (d *Dispatcher) Tasks(req models.AuditRequest) []Task {
	tasks := make([]Task, 0, len(d.order)*len(d.queryTypes))
	for _, platform := range d.order {
		for _, queryType := range d.queryTypes {
			tasks = append(tasks, Task{
				Platform:  platform,
				QueryType: queryType,
				Query:     platforms.BuildQuery(queryType, req.BrandName, req.Industry),
			})
		}
	}
	return tasks
}

// Dispatch runs all tasks of req concurrently and returns one response per task in
// task order. The only error conditions are an invalid request and the caller
// cancelling ctx; in the latter case in-flight queries run to completion in the
// background and their results are dropped. A deadline on ctx does not abort the
// audit: the audit timeout turns unfinished tasks into fallback responses.
func (d *Dispatcher) Dispatch(ctx context.Context, req models.AuditRequest) ([]models.PlatformResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tasks := d.Tasks(req)
	results := make([]models.PlatformResponse, len(tasks))

	// Queries outlive a cancelled caller; only the audit timeout stops them.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.auditTimeout)

	limit := d.maxConcurrency
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = d.run(runCtx, task, req)
		}(i, task)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			// runCtx still bounds every task, so waiting settles them with fallbacks.
			logrus.Warnf("Caller deadline passed during the audit for %s, settling pending platform queries", req.BrandName)
			<-done
			break
		}
		logrus.Warnf("Audit for %s cancelled by caller, discarding %d pending platform queries", req.BrandName, len(tasks))
		go func() {
			<-done
			cancel()
		}()
		return nil, ctx.Err()
	}

	cancel()
	return results, nil
}

func (d *Dispatcher) run(ctx context.Context, task Task, req models.AuditRequest) models.PlatformResponse {
	start := time.Now()
	logger := logrus.WithFields(logrus.Fields{
		"platform":   task.Platform,
		"query_type": task.QueryType,
	})

	resp := models.PlatformResponse{
		Platform:  task.Platform,
		QueryType: task.QueryType,
		Query:     task.Query,
	}

	client, ok := d.clients[task.Platform]
	if !ok || !client.IsEnabled() {
		if d.demoMode {
			logger.Debug("Platform not configured, using demo response")
			resp.Text = platforms.MockResponse(task.Platform, task.QueryType, req.BrandName, req.Industry)
			resp.IsMock = true
			d.metrics.RecordPlatformQuery(string(task.Platform), metrics.OutcomeMock, time.Since(start))
			return resp
		}
		return d.fallback(resp, req, platforms.ErrDisabled, start)
	}

	var answer *platforms.Answer
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, d.platformTimeout)
		defer cancel()

		a, err := client.Query(attemptCtx, task.Query)
		if err != nil {
			if errors.Is(err, platforms.ErrDisabled) {
				return backoff.Permanent(err)
			}
			logger.Debugf("Platform query failed: %v", err)
			return err
		}
		answer = a
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.retryInterval
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx)); err != nil {
		logger.Warnf("Platform query failed after retry, using fallback response: %v", err)
		return d.fallback(resp, req, err, start)
	}

	resp.Text = answer.Text
	resp.Citations = answer.Citations
	d.metrics.RecordPlatformQuery(string(task.Platform), metrics.OutcomeLive, time.Since(start))
	logger.Debugf("Platform answered in %v", time.Since(start))
	return resp
}

func (d *Dispatcher) fallback(resp models.PlatformResponse, req models.AuditRequest, err error, start time.Time) models.PlatformResponse {
	resp.Text = platforms.MockResponse(resp.Platform, resp.QueryType, req.BrandName, req.Industry)
	resp.IsMock = true
	resp.Err = err
	d.metrics.RecordPlatformQuery(string(resp.Platform), metrics.OutcomeFallback, time.Since(start))
	return resp
}

// AllFailed reports whether no response carries a live answer or a demo answer,
// i.e. every platform query failed.
func AllFailed(responses []models.PlatformResponse) bool {
	if len(responses) == 0 {
		return true
	}
	for _, resp := range responses {
		if !resp.Failed() {
			return false
		}
	}
	return true
}
