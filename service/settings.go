package service

import (
	"fmt"
	"os"

	"github.com/foomo/wikidata-links-mcp/mediawiki"
	"gopkg.in/yaml.v3"
)

// SiteSettings describes the wiki farm the resolver works against
type SiteSettings struct {
	RepositorySite   string            `yaml:"repositorySite"`   // Site hosting the linked-data items
	CommonsSite      string            `yaml:"commonsSite"`      // Media repository site
	FileNamespace    int               `yaml:"fileNamespace"`    // Namespace of file description pages
	DepictsProperty  string            `yaml:"depictsProperty"`  // Statement property listing what a file depicts
	UsageSite        string            `yaml:"usageSite"`        // Site whose embedding pages are reported
	UsageNamespace   int               `yaml:"usageNamespace"`   // Namespace of the embedding pages
	UsageConcurrency int               `yaml:"usageConcurrency"` // Parallel per-usage identifier lookups
	UserAgent        string            `yaml:"userAgent"`
	Endpoints        map[string]string `yaml:"endpoints"` // Site database name to api.php URL
}

func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		RepositorySite:   "wikidatawiki",
		CommonsSite:      "commonswiki",
		FileNamespace:    6,
		DepictsProperty:  "P180",
		UsageSite:        "enwiki",
		UsageNamespace:   0,
		UsageConcurrency: 1,
		UserAgent:        mediawiki.DefaultUserAgent,
		Endpoints: map[string]string{
			"wikidatawiki": "https://www.wikidata.org/w/api.php",
			"commonswiki":  "https://commons.wikimedia.org/w/api.php",
			"enwiki":       "https://en.wikipedia.org/w/api.php",
		},
	}
}

// LoadSiteSettings reads a YAML file over the defaults; endpoints are merged per site
func LoadSiteSettings(path string) (SiteSettings, error) {
	settings := DefaultSiteSettings()
	if path == "" {
		return settings, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read site settings: %w", err)
	}
	defaultEndpoints := settings.Endpoints
	settings.Endpoints = nil
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse site settings %s: %w", path, err)
	}
	merged := make(map[string]string, len(defaultEndpoints)+len(settings.Endpoints))
	for site, endpoint := range defaultEndpoints {
		merged[site] = endpoint
	}
	for site, endpoint := range settings.Endpoints {
		merged[site] = endpoint
	}
	settings.Endpoints = merged
	return settings, settings.Validate()
}

func (s SiteSettings) Validate() error {
	switch {
	case s.RepositorySite == "":
		return fmt.Errorf("repositorySite is required")
	case s.CommonsSite == "":
		return fmt.Errorf("commonsSite is required")
	case s.UsageSite == "":
		return fmt.Errorf("usageSite is required")
	case s.DepictsProperty == "":
		return fmt.Errorf("depictsProperty is required")
	case s.UsageConcurrency < 1:
		return fmt.Errorf("usageConcurrency must be at least 1, got %d", s.UsageConcurrency)
	}
	for _, site := range []string{s.CommonsSite, s.UsageSite} {
		if _, ok := s.Endpoints[site]; !ok {
			return fmt.Errorf("no endpoint configured for site %q", site)
		}
	}
	return nil
}
