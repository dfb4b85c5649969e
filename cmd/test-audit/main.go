package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/brandpilot/geo-audit/internal/audit"
	"github.com/brandpilot/geo-audit/internal/brands"
	"github.com/brandpilot/geo-audit/internal/config"
	"github.com/brandpilot/geo-audit/internal/dispatch"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/brandpilot/geo-audit/internal/platforms"
	"github.com/brandpilot/geo-audit/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const outputDir = "test_output"

// FileStorage keeps objects as files under test_output
type FileStorage struct{}

func (f *FileStorage) Store(ctx context.Context, name string, data []byte) error {
	path := filepath.Join(outputDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (f *FileStorage) Retrieve(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, filepath.FromSlash(name)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", name, storage.ErrNotFound)
	}
	return data, err
}

func (f *FileStorage) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(outputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(outputDir, path)
		if err != nil {
			return err
		}
		if name := filepath.ToSlash(rel); strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	sort.Strings(names)
	return names, err
}

func (f *FileStorage) Delete(ctx context.Context, name string) error {
	return os.Remove(filepath.Join(outputDir, filepath.FromSlash(name)))
}

// TerminalNotifier prints alerts and digests instead of sending them
type TerminalNotifier struct{}

func (t *TerminalNotifier) SendDigest(ctx context.Context, digest *models.Digest) error {
	fmt.Printf("\n📬 %s digest with %d reports\n", digest.Period, len(digest.Reports))
	return nil
}

func (t *TerminalNotifier) SendAlert(ctx context.Context, report *models.AuditReport, alerts []models.HallucinationAlert) error {
	fmt.Println("\n🚨 CRITICAL HALLUCINATION ALERT")
	for _, alert := range alerts {
		fmt.Printf("   [%s] %s\n", alert.Source, alert.IncorrectClaim)
		fmt.Printf("      ✅ Correct: %s\n", alert.CorrectInformation)
	}
	return nil
}

func printReport(report *models.AuditReport) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Printf("📊 GEO AUDIT: %s (%s)\n", report.BrandName, report.Industry)
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("🆔 Report: %s\n", report.ID)
	fmt.Printf("🕒 Generated: %s\n", report.CreatedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Printf("📈 Visibility: %d/100 (grade %s)\n", report.VisibilityScore, report.VisibilityGrade)
	fmt.Printf("💭 Sentiment: %.2f | 🔗 Citation quality: %d\n", report.SentimentScore, report.CitationQualityScore)

	fmt.Println("\n📍 Platforms:")
	for _, p := range models.AllPlatforms {
		status := "❌ not mentioned"
		if report.PlatformMentioned(p) {
			status = "✅ mentioned"
		}
		fmt.Printf("   • %-12s %s\n", p+":", status)
	}

	fmt.Println("\n📝 Mentions:")
	for _, m := range report.Mentions {
		source := "live"
		if m.IsMock {
			source = "demo"
		}
		fmt.Printf("   [%s/%s, %s] mentioned=%v sentiment=%s (%.2f)\n", m.Source, m.QueryType, source, m.BrandMentioned, m.Sentiment, m.SentimentScore)
	}

	if len(report.CitationGaps) > 0 {
		fmt.Println("\n🕳️  Citation gaps:")
		for i, gap := range report.CitationGaps {
			if i >= 5 {
				fmt.Printf("   ... and %d more gaps\n", len(report.CitationGaps)-5)
				break
			}
			fmt.Printf("   %d. [%s] %s cites %s\n", i+1, gap.Priority, gap.Platform, gap.CompetitorMentioned)
		}
	}

	if len(report.CompetitorInsights) > 0 {
		fmt.Println("\n🏁 Competitors:")
		for _, insight := range report.CompetitorInsights {
			fmt.Printf("   • %-20s %d/100 on %v\n", insight.CompetitorName, insight.VisibilityScore, insight.PlatformsMentioned)
		}
	}

	fmt.Println("\n✍️  Content ideas:")
	for _, rec := range report.ContentRecommendations {
		fmt.Printf("   [%s] %s\n", rec.Priority, rec.Title)
	}

	fmt.Printf("\n🎯 Actions: %d total, %d critical\n", report.TotalActions, report.CriticalActions)
	fmt.Println(strings.Repeat("=", 70))
}

func saveReportToFile(report *models.AuditReport) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	timestamp := report.CreatedAt.Format("2006-01-02_15-04-05")
	filename := filepath.Join(outputDir, fmt.Sprintf("%s_audit_%s.json", storage.Slug(report.BrandName), timestamp))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return err
	}

	fmt.Printf("\n💾 Report saved to: %s\n", filename)
	return nil
}

func main() {
	fmt.Println("🤖 GEO Audit - Local Audit Runner")
	fmt.Println("=================================")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logrus.SetLevel(logrus.WarnLevel)

	req := models.AuditRequest{BrandName: "TechCorp", Industry: "crm"}
	if len(os.Args) > 1 {
		req.BrandName = os.Args[1]
	}
	if len(os.Args) > 2 {
		req.Industry = os.Args[2]
	}

	registry, err := brands.Load(cfg.BrandsFile)
	if err != nil {
		log.Fatalf("Failed to load brand registry: %v", err)
	}

	service := audit.NewService(cfg, audit.Dependencies{
		Dispatcher: dispatch.NewDispatcher(cfg, platforms.FromConfig(cfg), nil),
		Store:      storage.NewReportStore(&FileStorage{}),
		Registry:   registry,
		Notifier:   &TerminalNotifier{},
	})

	fmt.Printf("\n📊 Auditing %s on %d platforms...\n", req.BrandName, len(cfg.Platforms))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.AuditTimeout+10*time.Second)
	defer cancel()

	report, err := service.Run(ctx, req, audit.SystemCaller)
	if err != nil {
		fmt.Printf("❌ Audit failed: %v\n", err)
		os.Exit(1)
	}
	service.Wait()

	printReport(report)
	if err := saveReportToFile(report); err != nil {
		fmt.Printf("\n⚠️  Warning: Could not save to file: %v\n", err)
	}

	fmt.Println("\n✅ Local audit completed!")
	fmt.Println("\n💡 Next steps:")
	fmt.Println("   • Check the 'test_output' directory for saved JSON reports")
	fmt.Println("   • Run 'go test ./internal/...' for the unit tests")
	fmt.Println("   • Add API keys to .env to replace demo responses with live ones")
}
