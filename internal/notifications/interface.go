package notifications

import (
	"context"

	"github.com/brandpilot/geo-audit/internal/models"
)

// Notifier defines the contract for notification services
type Notifier interface {
	SendDigest(ctx context.Context, digest *models.Digest) error
	SendAlert(ctx context.Context, report *models.AuditReport, alerts []models.HallucinationAlert) error
}
