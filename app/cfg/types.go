package cfg

import (
	"time"
)

type Cfg struct {
	// Storage configuration
	StateFile string
	FeedFile  string
	DBPath    string

	// Pipeline configuration
	SourcesDir    string
	RulesDir      string
	RulesVersion  string
	MaxItems      int
	MaxSeen       int
	LookbackYears int
	LockTimeout   time.Duration

	// Server configuration
	Serve             bool
	Port              string
	BaseUrl           string
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
