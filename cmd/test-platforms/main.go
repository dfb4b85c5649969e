package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brandpilot/geo-audit/internal/config"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/brandpilot/geo-audit/internal/platforms"
	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("🔍 GEO Audit - Platform Connectivity Test")
	fmt.Println("=========================================")

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	prompt := platforms.BuildQuery(models.QueryIndustry, "", "crm")

	fmt.Println("\n📡 Testing AI platforms...")
	fmt.Printf("   Prompt: %q\n", prompt)
	fmt.Println(strings.Repeat("-", 40))

	for _, client := range platforms.FromConfig(cfg) {
		testPlatform(client, prompt, cfg.PlatformTimeout)
	}

	fmt.Println("\n✅ Platform connectivity test completed!")
	fmt.Println("\n💡 Next steps:")
	fmt.Println("   • Configure missing API keys in .env file")
	fmt.Println("   • Run a local audit with: go run ./cmd/test-audit <brand> <industry>")
	fmt.Println("   • Start the API with: go run ./cmd/server")
}

func testPlatform(client platforms.Client, prompt string, timeout time.Duration) {
	fmt.Printf("🔸 Testing %s... ", client.GetName())

	if !client.IsEnabled() {
		fmt.Printf("⚠️  DISABLED (missing API key)\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	answer, err := client.Query(ctx, prompt)
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	fmt.Printf("✅ SUCCESS (%d chars, %d citations, %v)\n", len(answer.Text), len(answer.Citations), time.Since(start).Round(time.Millisecond))
	fmt.Printf("   📝 Sample: \"%s\"\n", sample(answer.Text, 120))
	for i, citation := range answer.Citations {
		if i >= 3 {
			break
		}
		fmt.Printf("   🔗 %s\n", citation)
	}
}

func sample(text string, limit int) string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
