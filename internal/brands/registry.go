// Package brands loads the brand registry: known brands with their aliases,
// ground-truth facts and competitors, the industry competitor table and
// overrides of the citation venue authority table.
package brands

import (
	"fmt"
	"os"
	"strings"

	"github.com/brandpilot/geo-audit/internal/gaps"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const defaultIndustry = "software"

// Brand is a registered brand
type Brand struct {
	Name        string        `yaml:"name"`
	Industry    string        `yaml:"industry"`
	URL         string        `yaml:"url"`
	Aliases     []string      `yaml:"aliases"`
	Competitors []string      `yaml:"competitors"`
	Facts       []models.Fact `yaml:"facts"`
	Monitor     bool          `yaml:"monitor"`
}

// Registry is the parsed brand registry file
type Registry struct {
	Brands                []Brand             `yaml:"brands"`
	CompetitorsByIndustry map[string][]string `yaml:"competitors_by_industry"`
	CitationVenues        []gaps.Venue        `yaml:"citation_venues"`
}

var defaultCompetitors = map[string][]string{
	"crm":        {"Salesforce", "HubSpot", "Pipedrive", "Zoho CRM", "Monday.com"},
	"marketing":  {"HubSpot", "Mailchimp", "ActiveCampaign", "Marketo", "Klaviyo"},
	"analytics":  {"Google Analytics", "Mixpanel", "Amplitude", "Heap", "Pendo"},
	"ecommerce":  {"Shopify", "WooCommerce", "BigCommerce", "Magento", "Squarespace"},
	"saas":       {"Stripe", "Intercom", "Zendesk", "Slack", "Notion"},
	"software":   {"Microsoft", "Adobe", "Salesforce", "Oracle", "SAP"},
	"ai":         {"OpenAI", "Anthropic", "Cohere", "Mistral", "Hugging Face"},
	"finance":    {"QuickBooks", "Xero", "FreshBooks", "Sage", "NetSuite"},
	"healthcare": {"Epic", "Cerner", "Athenahealth", "NextGen", "Allscripts"},
}

// Default returns a registry with no brands and the built-in competitor table
func Default() *Registry {
	r := &Registry{CompetitorsByIndustry: make(map[string][]string, len(defaultCompetitors))}
	for industry, names := range defaultCompetitors {
		r.CompetitorsByIndustry[industry] = append([]string(nil), names...)
	}
	return r
}

// Load reads the registry file at path. An empty path yields the default registry.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read brand registry %s: %w", path, err)
	}

	registry, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse brand registry %s: %w", path, err)
	}

	logrus.Infof("Loaded brand registry with %d brands from %s", len(registry.Brands), path)
	return registry, nil
}

// Parse decodes a registry document. Industry tables in the document extend and
// override the built-in table.
func Parse(data []byte) (*Registry, error) {
	var fileRegistry Registry
	if err := yaml.Unmarshal(data, &fileRegistry); err != nil {
		return nil, err
	}

	registry := Default()
	registry.Brands = fileRegistry.Brands
	registry.CitationVenues = fileRegistry.CitationVenues
	for industry, names := range fileRegistry.CompetitorsByIndustry {
		registry.CompetitorsByIndustry[strings.ToLower(industry)] = names
	}

	if err := registry.validate(); err != nil {
		return nil, err
	}

	return registry, nil
}

func (r *Registry) validate() error {
	seen := make(map[string]bool)
	for i, brand := range r.Brands {
		name := strings.ToLower(strings.TrimSpace(brand.Name))
		if name == "" {
			return fmt.Errorf("brands[%d]: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("brands[%d]: duplicate brand %q", i, brand.Name)
		}
		seen[name] = true

		for j, fact := range brand.Facts {
			if fact.Key == "" || fact.Value == "" {
				return fmt.Errorf("brands[%d].facts[%d]: key and value are required", i, j)
			}
		}
	}

	for i, venue := range r.CitationVenues {
		if venue.Name == "" {
			return fmt.Errorf("citation_venues[%d]: name is required", i)
		}
		if venue.Authority < 0 || venue.Authority > 1 {
			return fmt.Errorf("citation_venues[%d]: authority must be within [0,1]", i)
		}
	}

	return nil
}

// Lookup finds a brand by name or alias, case-insensitively
func (r *Registry) Lookup(name string) (Brand, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Brand{}, false
	}

	for _, brand := range r.Brands {
		if strings.ToLower(brand.Name) == name {
			return brand, true
		}
		for _, alias := range brand.Aliases {
			if strings.ToLower(alias) == name {
				return brand, true
			}
		}
	}
	return Brand{}, false
}

// Competitors returns up to limit competitors for an industry. Unknown
// industries use the software table. limit <= 0 means no limit.
func (r *Registry) Competitors(industry string, limit int) []string {
	names, ok := r.CompetitorsByIndustry[strings.ToLower(strings.TrimSpace(industry))]
	if !ok {
		names = r.CompetitorsByIndustry[defaultIndustry]
	}
	return truncate(names, limit)
}

// Monitored returns the brands flagged for scheduled re-audits
func (r *Registry) Monitored() []Brand {
	var monitored []Brand
	for _, brand := range r.Brands {
		if brand.Monitor {
			monitored = append(monitored, brand)
		}
	}
	return monitored
}

// Venues returns the citation venue table with the registry overrides applied
func (r *Registry) Venues() []gaps.Venue {
	return gaps.MergeVenues(gaps.DefaultVenues, r.CitationVenues)
}

// Resolve completes a request with what the registry knows about the brand and
// returns the brand's aliases. Values in the request always win. Competitors come
// from the request, then the registered brand, then the industry table.
func (r *Registry) Resolve(req models.AuditRequest, maxCompetitors int) (models.AuditRequest, []string) {
	var aliases []string

	if brand, ok := r.Lookup(req.BrandName); ok {
		aliases = brand.Aliases
		if !strings.EqualFold(brand.Name, req.BrandName) {
			aliases = append([]string{brand.Name}, aliases...)
		}
		if req.Industry == "" {
			req.Industry = brand.Industry
		}
		if req.URL == "" {
			req.URL = brand.URL
		}
		if len(req.Facts) == 0 {
			req.Facts = brand.Facts
		}
		if len(req.Competitors) == 0 {
			req.Competitors = brand.Competitors
		}
	}

	if req.Industry == "" {
		req.Industry = defaultIndustry
	}
	if len(req.Competitors) == 0 {
		req.Competitors = r.Competitors(req.Industry, 0)
	}
	req.Competitors = truncate(req.Competitors, maxCompetitors)

	return req, aliases
}

// Request builds the audit request of a registered brand
func (b Brand) Request() models.AuditRequest {
	return models.AuditRequest{
		BrandName:   b.Name,
		Industry:    b.Industry,
		URL:         b.URL,
		Competitors: b.Competitors,
		Facts:       b.Facts,
	}
}

func truncate(names []string, limit int) []string {
	out := append([]string(nil), names...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
