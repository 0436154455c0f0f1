package api

import (
	"cmp"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/kent-tracker/app/database"
	"github.com/lysyi3m/kent-tracker/app/feed"
	"github.com/lysyi3m/kent-tracker/app/rules"
	"github.com/lysyi3m/kent-tracker/app/tasks"
)

// HandlerOptions carries the settings the handlers read.
type HandlerOptions struct {
	RulesVersion  string
	LookbackYears int
	BaseURL       string
	Version       string
}

// NewHandler wires the HTTP handlers. archive and scheduler may be nil.
func NewHandler(store database.StateRepository, archive database.RunRepository,
	sources *feed.SourceCache, registry *rules.Registry,
	scheduler tasks.TaskSchedulerInterface, opts HandlerOptions) *Handler {
	return &Handler{
		store:         store,
		archive:       archive,
		generator:     feed.NewGenerator(),
		sources:       sources,
		registry:      registry,
		rulesVersion:  opts.RulesVersion,
		lookbackYears: opts.LookbackYears,
		scheduler:     scheduler,
		baseURL:       strings.TrimSuffix(opts.BaseURL, "/"),
		version:       opts.Version,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	items := h.store.LoadFeed()

	channel := feed.Channel{
		Title:       "Kent LGBT hate crime and court updates",
		Link:        cmp.Or(h.baseURL, "http://"+c.Request.Host),
		Description: "Reports of homophobic, biphobic and transphobic hate crime and related court cases in Kent",
		Generator:   "kent-tracker " + h.version,
	}
	if h.baseURL != "" {
		channel.SelfLink = h.baseURL + "/feed"
	}

	rss, err := h.generator.Run(channel, items)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetFeedJSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.LoadFeed())
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp":             time.Now().In(time.Local).Format(time.RFC3339),
		"version":               h.version,
		"rules_version":         h.rulesVersion,
		"loaded_sources":        h.sources.GetConfigCount(),
		"enabled_sources":       len(h.sources.GetEnabledConfigs()),
		"loaded_rules_versions": h.registry.Versions(),
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	items := h.store.LoadFeed()

	byLabel := make(map[string]int)
	for _, item := range items {
		byLabel[string(item.Label)]++
	}

	stats := map[string]interface{}{
		"feed": map[string]interface{}{
			"items":    len(items),
			"by_label": byLabel,
		},
		"seen": len(h.store.LoadState().SeenURLs),
	}

	if h.scheduler != nil {
		if last := h.scheduler.LastRun(); last != nil {
			stats["last_run"] = runJSON(*last)
		}
	}

	if h.archive != nil {
		ctx := c.Request.Context()

		if itemStats, err := h.archive.GetItemStats(ctx); err == nil {
			stats["archive"] = map[string]interface{}{
				"items":    itemStats.Total,
				"by_label": itemStats.ByLabel,
			}
		} else {
			slog.Error("Archive error", "operation", "get_item_stats", "error", err)
		}

		if runs, err := h.archive.GetRecentRuns(ctx, 10); err == nil {
			recent := make([]map[string]interface{}, 0, len(runs))
			for _, run := range runs {
				recent = append(recent, runJSON(run))
			}
			stats["recent_runs"] = recent
		} else {
			slog.Error("Archive error", "operation", "get_recent_runs", "error", err)
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIRun(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler not running"})
		return
	}

	if err := h.scheduler.Trigger(); err != nil {
		if errors.Is(err, tasks.ErrRunQueued) {
			c.JSON(http.StatusConflict, gin.H{"error": "Run already queued"})
			return
		}
		slog.Error("Error enqueueing run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue run",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Run enqueued",
	})
}

func (h *Handler) APIAudit(c *gin.Context) {
	version := cmp.Or(c.Query("version"), h.rulesVersion)

	ruleset, err := h.registry.Get(version)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ruleset not found", "version": version})
		return
	}

	task := tasks.NewAuditTask(feed.NewClassifier(ruleset, h.lookbackYears), h.store)
	task.Start()
	if err := task.Execute(c.Request.Context()); err != nil {
		slog.Error("Audit failed", "version", version, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Audit failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, task.Report)
}

func (h *Handler) APISource(c *gin.Context) {
	name := c.Param("name")

	source, err := h.sources.GetConfig(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found", "name": name})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":           source.Name,
		"kind":           source.Kind,
		"url":            source.URL,
		"source_name":    source.SourceName,
		"queries":        source.Queries,
		"params":         source.Params,
		"require_domain": source.RequireDomain,
		"settings": gin.H{
			"enabled":             source.Settings.Enabled,
			"timeout":             source.Settings.Timeout,
			"max_items_per_query": source.Settings.MaxItemsPerQuery,
			"max_links_per_query": source.Settings.MaxLinksPerQuery,
		},
	})
}

func runJSON(run database.Run) map[string]interface{} {
	return map[string]interface{}{
		"id":            run.ID,
		"started_at":    run.StartedAt.Format(time.RFC3339),
		"finished_at":   run.FinishedAt.Format(time.RFC3339),
		"rules_version": run.RulesVersion,
		"fetched":       run.Fetched,
		"duplicates":    run.Duplicates,
		"rejected":      run.Rejected,
		"admitted":      run.Admitted,
		"feed_size":     run.FeedSize,
		"seen_size":     run.SeenSize,
		"errors":        run.Errors,
	}
}
