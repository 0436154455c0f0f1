package api

import (
	"github.com/lysyi3m/kent-tracker/app/database"
	"github.com/lysyi3m/kent-tracker/app/feed"
	"github.com/lysyi3m/kent-tracker/app/rules"
	"github.com/lysyi3m/kent-tracker/app/tasks"
)

type GeneratorInterface interface {
	Run(channel feed.Channel, items []feed.FeedItem) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	store         database.StateRepository
	archive       database.RunRepository
	generator     GeneratorInterface
	sources       *feed.SourceCache
	registry      *rules.Registry
	rulesVersion  string
	lookbackYears int
	scheduler     tasks.TaskSchedulerInterface
	baseURL       string
	version       string
}
