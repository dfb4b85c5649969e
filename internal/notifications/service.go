package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/brandpilot/geo-audit/internal/config"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/gomail.v2"
)

// Service sends digests and alerts to Teams and email
type Service struct {
	config *config.Config
	client *resty.Client
	send   func(*gomail.Message) error
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message card
type TeamsMessage struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	ActivityText     string      `json:"activityText,omitempty"`
	Facts            []TeamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	s := &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
	s.send = func(m *gomail.Message) error {
		d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
		return d.DialAndSend(m)
	}
	return s
}

// SendDigest sends a scheduled digest via every configured channel
func (s *Service) SendDigest(ctx context.Context, digest *models.Digest) error {
	subject := fmt.Sprintf("GEO Visibility Digest - %s (%d brands)", title(digest.Period), len(digest.Reports))

	htmlBody, err := buildDigestHTML(digest)
	if err != nil {
		return fmt.Errorf("failed to build digest email: %w", err)
	}

	return s.deliver(ctx, buildDigestTeamsMessage(digest), subject, buildDigestText(digest), htmlBody)
}

// SendAlert sends an immediate notification about critical hallucinations found
// in an audit
func (s *Service) SendAlert(ctx context.Context, report *models.AuditReport, alerts []models.HallucinationAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Critical AI hallucination alert: %s (%d)", report.BrandName, len(alerts))
	text := buildAlertText(report, alerts)

	return s.deliver(ctx, buildAlertTeamsMessage(report, alerts), subject, text, "")
}

func (s *Service) deliver(ctx context.Context, message *TeamsMessage, subject, textBody, htmlBody string) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(ctx, message); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent notification to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(subject, textBody, htmlBody); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent notification via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(ctx context.Context, message *TeamsMessage) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) sendEmail(subject, textBody, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if htmlBody != "" {
		m.AddAlternative("text/html", htmlBody)
	}

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func buildDigestTeamsMessage(digest *models.Digest) *TeamsMessage {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("GEO Visibility Digest - %s", title(digest.Period)),
		Text:    fmt.Sprintf("Audited %d brands", len(digest.Reports)),
	}

	for _, report := range digest.Reports {
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle:    report.BrandName,
			ActivitySubtitle: report.Industry,
			Facts: []TeamsFact{
				{Name: "Visibility", Value: fmt.Sprintf("%d (%s)", report.VisibilityScore, report.VisibilityGrade)},
				{Name: "Platforms", Value: mentionedPlatforms(report)},
				{Name: "Citation gaps", Value: fmt.Sprintf("%d", len(report.CitationGaps))},
				{Name: "Critical actions", Value: fmt.Sprintf("%d", report.CriticalActions)},
			},
			Markdown: true,
		})
	}

	if len(digest.Failed) > 0 {
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Failed audits",
			ActivityText:  strings.Join(digest.Failed, ", "),
		})
	}

	return message
}

func buildAlertTeamsMessage(report *models.AuditReport, alerts []models.HallucinationAlert) *TeamsMessage {
	message := &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: "D13438",
		Title:      fmt.Sprintf("Critical AI hallucinations about %s", report.BrandName),
		Text:       fmt.Sprintf("Audit %s found %d critical incorrect claims", report.ID, len(alerts)),
	}

	for _, alert := range alerts {
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle:    string(alert.Source),
			ActivitySubtitle: alert.FactKey,
			Facts: []TeamsFact{
				{Name: "Claim", Value: alert.IncorrectClaim},
				{Name: "Correct", Value: alert.CorrectInformation},
				{Name: "Next step", Value: alert.SourceSuggestion},
			},
			Markdown: true,
		})
	}

	return message
}

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"title":     title,
	"platforms": mentionedPlatforms,
}).Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>GEO Visibility Digest</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #0078d4; color: white; padding: 20px; border-radius: 5px; }
        .brand { border-left: 4px solid #0078d4; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .brand-title { font-weight: bold; margin-bottom: 5px; }
        .meta { color: #666; font-size: 0.9em; }
        .failed { color: #d13438; }
    </style>
</head>
<body>
    <div class="header">
        <h1>GEO Visibility Digest</h1>
        <p>{{.Period | title}} digest generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    {{range .Reports}}
    <div class="brand">
        <div class="brand-title">{{.BrandName}}: {{.VisibilityScore}} ({{.VisibilityGrade}})</div>
        <div class="meta">
            Cited by: {{platforms .}} | Citation gaps: {{len .CitationGaps}} |
            Hallucinations: {{len .HallucinationAlerts}} | Critical actions: {{.CriticalActions}}
        </div>
    </div>
    {{end}}

    {{if .Failed}}
    <p class="failed">Audits that failed: {{range $i, $b := .Failed}}{{if $i}}, {{end}}{{$b}}{{end}}</p>
    {{end}}

    <hr>
    <p><small>This digest was generated automatically by GEO Audit.</small></p>
</body>
</html>
`))

func buildDigestHTML(digest *models.Digest) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, digest); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildDigestText(digest *models.Digest) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("GEO Visibility Digest - %s\n", title(digest.Period)))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", digest.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("BRANDS\n")
	text.WriteString("======\n")
	for i := range digest.Reports {
		report := &digest.Reports[i]
		text.WriteString(fmt.Sprintf("\n%d. %s: %d (%s)\n", i+1, report.BrandName, report.VisibilityScore, report.VisibilityGrade))
		text.WriteString(fmt.Sprintf("   Cited by: %s\n", mentionedPlatforms(*report)))
		text.WriteString(fmt.Sprintf("   Citation gaps: %d | Hallucinations: %d | Critical actions: %d\n",
			len(report.CitationGaps), len(report.HallucinationAlerts), report.CriticalActions))
	}

	if len(digest.Failed) > 0 {
		text.WriteString(fmt.Sprintf("\nFailed audits: %s\n", strings.Join(digest.Failed, ", ")))
	}

	text.WriteString("\n---\nThis digest was generated automatically by GEO Audit.\n")

	return text.String()
}

func buildAlertText(report *models.AuditReport, alerts []models.HallucinationAlert) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Critical AI hallucinations about %s (audit %s)\n\n", report.BrandName, report.ID))
	for i, alert := range alerts {
		text.WriteString(fmt.Sprintf("%d. %s on %s\n", i+1, alert.FactKey, alert.Source))
		text.WriteString(fmt.Sprintf("   Claim: %s\n", alert.IncorrectClaim))
		text.WriteString(fmt.Sprintf("   Correct: %s\n", alert.CorrectInformation))
		text.WriteString(fmt.Sprintf("   Next step: %s\n\n", alert.SourceSuggestion))
	}

	return text.String()
}

func mentionedPlatforms(report models.AuditReport) string {
	var names []string
	for _, p := range models.AllPlatforms {
		if report.PlatformMentioned(p) {
			names = append(names, string(p))
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func title(s string) string {
	return cases.Title(language.English).String(s)
}
