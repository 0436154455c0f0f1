package rules

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

// Registry holds every loaded ruleset keyed by version.
type Registry struct {
	rulesDir string
	cache    map[string]*Ruleset
	mu       sync.RWMutex
}

func NewRegistry(rulesDir string) *Registry {
	r := &Registry{
		rulesDir: rulesDir,
		cache:    make(map[string]*Ruleset),
	}
	def := Default()
	r.cache[def.Version] = def
	return r
}

// Run loads all *.yml rulesets from the rules directory. A missing directory
// leaves only the built-in ruleset.
func (r *Registry) Run() error {
	if r.rulesDir == "" {
		return nil
	}
	if _, err := os.Stat(r.rulesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(r.rulesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		ruleset, err := r.LoadFile(file)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Ruleset loaded", "version", ruleset.Version, "file", file)
	}

	return nil
}

func (r *Registry) LoadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	ruleset, err := Parse(data)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[ruleset.Version] = ruleset

	return ruleset, nil
}

func (r *Registry) Get(version string) (*Ruleset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ruleset, ok := r.cache[version]
	if !ok {
		return nil, fmt.Errorf("ruleset with version '%s' not found", version)
	}
	return ruleset, nil
}

func (r *Registry) Versions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := make([]string, 0, len(r.cache))
	for v := range r.cache {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// Parse decodes and validates a YAML ruleset. Terms are lower-cased and
// trimmed; empty entries are dropped.
func Parse(data []byte) (*Ruleset, error) {
	var ruleset Ruleset
	if err := yaml.Unmarshal(data, &ruleset); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ruleset.normalize()

	if err := ruleset.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ruleset: %w", err)
	}

	return &ruleset, nil
}

func (r *Ruleset) Validate() error {
	if r.Version == "" {
		return fmt.Errorf("version is required")
	}
	if r.County == "" {
		return fmt.Errorf("county is required")
	}
	if len(r.StrongTerms) == 0 {
		return fmt.Errorf("at least one strong term is required")
	}
	return nil
}

func (r *Ruleset) normalize() {
	r.Version = strings.TrimSpace(r.Version)
	r.County = strings.ToLower(strings.TrimSpace(r.County))

	lists := []*[]string{
		&r.BlockTerms, &r.TrustedDomains, &r.PositivePhrases, &r.Localities, &r.Qualifiers,
		&r.StrongTerms, &r.BroadTerms, &r.HateTerms, &r.CourtTerms,
		&r.PoliceSources, &r.PoliceDomains,
	}
	for _, list := range lists {
		cleaned := (*list)[:0]
		for _, term := range *list {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" {
				cleaned = append(cleaned, term)
			}
		}
		*list = cleaned
	}
}
