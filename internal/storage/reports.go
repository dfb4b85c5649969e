package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	reportPrefix = "brands/"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ReportStore persists audit reports as JSON objects. Names have the form
// brands/<brand-slug>/<inverted-timestamp>_<id>.json so that a lexical listing of
// a brand prefix returns the newest report first.
type ReportStore struct {
	objects ObjectStore
}

// NewReportStore creates a report store on top of an object store
func NewReportStore(objects ObjectStore) *ReportStore {
	return &ReportStore{objects: objects}
}

// Save writes the report in a single object and returns its id. A report without
// an id or creation time gets them here.
func (s *ReportStore) Save(ctx context.Context, report *models.AuditReport) (string, error) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report %s: %w", report.ID, err)
	}

	name := objectName(report)
	if err := s.objects.Store(ctx, name, data); err != nil {
		return "", fmt.Errorf("failed to store report %s: %w", report.ID, err)
	}

	logrus.WithFields(logrus.Fields{
		"report_id": report.ID,
		"brand":     report.BrandName,
		"object":    name,
	}).Debug("Saved audit report")

	return report.ID, nil
}

// Get loads a report by id
func (s *ReportStore) Get(ctx context.Context, id string) (*models.AuditReport, error) {
	name, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, name)
}

// List returns one page of a brand's reports, newest first. page starts at 1;
// pageSize is clamped to [1, MaxPageSize] with DefaultPageSize for zero.
func (s *ReportStore) List(ctx context.Context, brand string, page, pageSize int) ([]models.AuditReport, error) {
	page, pageSize = normalizePage(page, pageSize)

	names, err := s.objects.List(ctx, brandPrefix(brand))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports of %s: %w", brand, err)
	}

	reports := []models.AuditReport{}
	start := (page - 1) * pageSize
	if start >= len(names) {
		return reports, nil
	}
	end := min(start+pageSize, len(names))

	for _, name := range names[start:end] {
		report, err := s.load(ctx, name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		reports = append(reports, *report)
	}

	return reports, nil
}

// Latest returns the newest report of a brand
func (s *ReportStore) Latest(ctx context.Context, brand string) (*models.AuditReport, error) {
	reports, err := s.List(ctx, brand, 1, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("no reports for %s: %w", brand, ErrNotFound)
	}
	return &reports[0], nil
}

// Delete removes a report by id
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	name, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	return nil
}

func (s *ReportStore) find(ctx context.Context, id string) (string, error) {
	if id == "" || strings.ContainsAny(id, "/_") {
		return "", fmt.Errorf("report %q: %w", id, ErrNotFound)
	}

	names, err := s.objects.List(ctx, reportPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to list reports: %w", err)
	}

	suffix := "_" + id + ".json"
	for _, name := range names {
		if strings.HasSuffix(name, suffix) {
			return name, nil
		}
	}
	return "", fmt.Errorf("report %s: %w", id, ErrNotFound)
}

func (s *ReportStore) load(ctx context.Context, name string) (*models.AuditReport, error) {
	data, err := s.objects.Retrieve(ctx, name)
	if err != nil {
		return nil, err
	}

	var report models.AuditReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", name, err)
	}
	return &report, nil
}

func objectName(report *models.AuditReport) string {
	inverted := math.MaxInt64 - report.CreatedAt.UnixNano()
	return fmt.Sprintf("%s%019d_%s.json", brandPrefix(report.BrandName), inverted, report.ID)
}

func brandPrefix(brand string) string {
	return reportPrefix + Slug(brand) + "/"
}

// Slug turns a brand name into a stable object name segment
func Slug(brand string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(brand)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "brand"
	}
	return slug
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize == 0:
		pageSize = DefaultPageSize
	case pageSize < 1:
		pageSize = 1
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return page, pageSize
}
