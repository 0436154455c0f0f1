package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	SourceKindRSS          = "rss"
	SourceKindRSSSearch    = "rss_search"
	SourceKindPoliceSearch = "police_search"
)

// Source configuration types

type SourceConfig struct {
	Name          string            // Derived from filename (without .yml extension)
	Kind          string            `yaml:"kind"`
	URL           string            `yaml:"url"`
	SourceName    string            `yaml:"source_name"`
	Queries       []string          `yaml:"queries"`
	Params        map[string]string `yaml:"params"`
	RequireDomain []string          `yaml:"require_domain"`
	Settings      SourceSettings    `yaml:"settings"`
}

type SourceSettings struct {
	Enabled          bool `yaml:"enabled"`
	Timeout          int  `yaml:"timeout"` // seconds
	MaxItemsPerQuery int  `yaml:"max_items_per_query"`
	MaxLinksPerQuery int  `yaml:"max_links_per_query"`
}

// SourceCache loads one YAML file per source from a directory.
type SourceCache struct {
	sourcesDir string
	cache      map[string]*SourceConfig
	mu         sync.RWMutex
}

func NewSourceCache(sourcesDir string) *SourceCache {
	return &SourceCache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*SourceConfig),
	}
}

// Run loads every *.yml in the sources directory. When none are found the
// built-in sources are used.
func (sc *SourceCache) Run() error {
	if sc.sourcesDir != "" {
		if _, err := os.Stat(sc.sourcesDir); err == nil {
			files, err := filepath.Glob(filepath.Join(sc.sourcesDir, "*.yml"))
			if err != nil {
				return fmt.Errorf("failed to find YML files: %w", err)
			}

			for _, file := range files {
				sourceName := strings.TrimSuffix(filepath.Base(file), ".yml")

				source, err := sc.LoadConfig(sourceName)
				if err != nil {
					return fmt.Errorf("error loading %s: %w", file, err)
				}

				slog.Debug("Source configuration loaded", "source", sourceName, "kind", source.Kind, "enabled", source.Settings.Enabled, "queries", len(source.Queries))
			}
		}
	}

	if sc.GetConfigCount() == 0 {
		for _, source := range DefaultSources() {
			sc.Put(source)
		}
		slog.Debug("Using built-in sources", "count", sc.GetConfigCount())
	}

	return nil
}

func (sc *SourceCache) LoadConfig(sourceName string) (*SourceConfig, error) {
	configFile := filepath.Join(sc.sourcesDir, sourceName+".yml")

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var source SourceConfig
	if err := yaml.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	source.Name = sourceName

	if err := sc.Put(&source); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	return &source, nil
}

// Put applies defaults, validates and stores a source configuration.
func (sc *SourceCache) Put(source *SourceConfig) error {
	applySourceDefaults(source)

	if err := validateSource(source); err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cache[source.Name] = source
	return nil
}

func (sc *SourceCache) GetConfig(sourceName string) (*SourceConfig, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	source, ok := sc.cache[sourceName]
	if !ok {
		return nil, fmt.Errorf("source config with name '%s' not found", sourceName)
	}
	return source, nil
}

// GetEnabledConfigs returns enabled sources ordered by name, so runs walk
// sources in a stable order.
func (sc *SourceCache) GetEnabledConfigs() []*SourceConfig {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	enabled := make([]*SourceConfig, 0, len(sc.cache))
	for _, v := range sc.cache {
		if v.Settings.Enabled {
			enabled = append(enabled, v)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].Name < enabled[j].Name })
	return enabled
}

func (sc *SourceCache) GetConfigCount() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.cache)
}

func applySourceDefaults(source *SourceConfig) {
	if source.Settings.Timeout == 0 {
		source.Settings.Timeout = 30
	}
	if source.Settings.MaxItemsPerQuery == 0 {
		source.Settings.MaxItemsPerQuery = 60
	}
	if source.Settings.MaxLinksPerQuery == 0 {
		source.Settings.MaxLinksPerQuery = 25
	}
	if source.Kind == SourceKindRSS && len(source.Queries) == 0 {
		source.Queries = []string{""}
	}
	for i, d := range source.RequireDomain {
		source.RequireDomain[i] = NormalizeDomain(d)
	}
}

func validateSource(source *SourceConfig) error {
	if source == nil {
		return fmt.Errorf("source config is nil")
	}

	requiredFields := map[string]string{
		"source name": source.Name,
		"source URL":  source.URL,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	switch source.Kind {
	case SourceKindRSS, SourceKindRSSSearch, SourceKindPoliceSearch:
	default:
		return fmt.Errorf("invalid source kind: %q", source.Kind)
	}

	if source.Kind != SourceKindRSS && len(source.Queries) == 0 {
		return fmt.Errorf("%s source requires at least one query", source.Kind)
	}

	nonNegativeFields := map[string]int{
		"timeout":             source.Settings.Timeout,
		"max items per query": source.Settings.MaxItemsPerQuery,
		"max links per query": source.Settings.MaxLinksPerQuery,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	return nil
}

// AllowsDomain reports whether a candidate passes the source's domain allow-list.
func (s *SourceConfig) AllowsDomain(cand Candidate) bool {
	if len(s.RequireDomain) == 0 {
		return true
	}
	if domainMatches(NormalizeDomain(cand.SourceDomain), s.RequireDomain) ||
		domainMatches(NormalizeDomain(cand.URL), s.RequireDomain) {
		return true
	}

	name := strings.ReplaceAll(strings.ToLower(cand.SourceName), " ", "")
	for _, d := range s.RequireDomain {
		label := d
		if i := strings.Index(d, "."); i > 0 {
			label = d[:i]
		}
		if strings.Contains(name, strings.TrimPrefix(label, "the")) {
			return true
		}
	}
	return false
}

// DefaultSources are the stock deployment: Google News searches scoped
// to Kent and the Kent Police news search.
func DefaultSources() []*SourceConfig {
	negatives := `-"Kent State" -Ohio -USA -"United States"`
	googleParams := map[string]string{"hl": "en-GB", "gl": "GB", "ceid": "GB:en"}

	return []*SourceConfig{
		{
			Name:   "google-news",
			Kind:   SourceKindRSSSearch,
			URL:    "https://news.google.com/rss/search",
			Params: googleParams,
			Queries: []string{
				`kent homophobic ` + negatives,
				`kent transphobic ` + negatives,
				`kent "hate crime" lgbt ` + negatives,
				`kent "sexual orientation" court ` + negatives,
				`maidstone homophobic`,
				`canterbury homophobic`,
				`medway homophobic`,
				`thanet homophobic`,
			},
			Settings: SourceSettings{Enabled: true},
		},
		{
			Name:          "pinknews",
			Kind:          SourceKindRSSSearch,
			URL:           "https://news.google.com/rss/search",
			Params:        googleParams,
			RequireDomain: []string{"thepinknews.com"},
			Queries: []string{
				`site:thepinknews.com kent lgbt ` + negatives,
				`site:thepinknews.com kent hate crime ` + negatives,
				`site:thepinknews.com kent homophobic ` + negatives,
				`site:thepinknews.com kent transphobic ` + negatives,
			},
			Settings: SourceSettings{Enabled: true},
		},
		{
			Name:       "kent-police",
			Kind:       SourceKindPoliceSearch,
			URL:        "https://www.kent.police.uk/news/news-search/",
			SourceName: "Kent Police",
			Queries: []string{
				"homophobic", "transphobic", "biphobic",
				"sexual orientation", "gender identity",
				"lgbt", "lgbtq", "hate crime",
			},
			Settings: SourceSettings{Enabled: true},
		},
	}
}
