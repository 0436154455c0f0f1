package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	StateFile string `long:"state-file" env:"STATE_FILE" default:"./data/state.json" description:"Path of the seen-URL state document"`
	FeedFile  string `long:"feed-file" env:"FEED_FILE" default:"./data/feed.json" description:"Path of the published feed document"`
	DBPath    string `long:"db-path" env:"DB_PATH" description:"SQLite archive path (empty disables the archive)"`

	// Pipeline configuration
	SourcesDir    string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`
	RulesDir      string `long:"rules-dir" env:"RULES_DIR" default:"./rules" description:"Directory containing ruleset files"`
	RulesVersion  string `long:"rules-version" env:"RULES_VERSION" default:"kent-2" description:"Ruleset version used for classification"`
	MaxItems      int    `long:"max-items" env:"MAX_ITEMS" default:"200" description:"Maximum number of items kept in the feed"`
	MaxSeen       int    `long:"max-seen" env:"MAX_SEEN" default:"2000" description:"Maximum number of URLs remembered between runs"`
	LookbackYears int    `long:"lookback-years" env:"LOOKBACK_YEARS" default:"5" description:"Reject items published longer ago than this"`
	LockTimeout   int    `long:"lock-timeout" env:"LOCK_TIMEOUT" default:"30" description:"Seconds to wait for the run lock (0 tries once)"`

	// Server configuration
	Serve             bool   `long:"serve" env:"SERVE" description:"Run the scheduler and HTTP server instead of a single pass"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://feeds.example.com)"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"3600" description:"Seconds between scheduled runs"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (compatible; KentTracker/1.0)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/London)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	cfg, err := parse(os.Args[1:])
	if err != nil || cfg == nil {
		return cfg, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		StateFile:         raw.StateFile,
		FeedFile:          raw.FeedFile,
		DBPath:            raw.DBPath,
		SourcesDir:        raw.SourcesDir,
		RulesDir:          raw.RulesDir,
		RulesVersion:      raw.RulesVersion,
		MaxItems:          raw.MaxItems,
		MaxSeen:           raw.MaxSeen,
		LookbackYears:     raw.LookbackYears,
		LockTimeout:       time.Duration(raw.LockTimeout) * time.Second,
		Serve:             raw.Serve,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	positiveFields := map[string]int{
		"max-items":          cfg.MaxItems,
		"max-seen":           cfg.MaxSeen,
		"lookback-years":     cfg.LookbackYears,
		"scheduler-interval": cfg.SchedulerInterval,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if cfg.LockTimeout < 0 {
		return fmt.Errorf("lock-timeout must be non-negative")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
