package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/kent-tracker/app/database"
	"github.com/lysyi3m/kent-tracker/app/feed"
)

// Pipeline holds the components shared by every run.
type Pipeline struct {
	Sources    *feed.SourceCache
	Collector  *Collector
	Classifier *feed.Classifier
	Labeler    *feed.Labeler
	Store      database.StateRepository
	Archive    database.RunRepository // nil disables the archive
	MaxItems   int
	MaxSeen    int
	Now        func() time.Time
}

// RunTask is one pass of the pipeline: collect, dedup, classify, label,
// merge, rank, cap and persist.
type RunTask struct {
	Task
	pipeline *Pipeline
	Result   *database.Run
}

func NewRunTask(pipeline *Pipeline) *RunTask {
	return &RunTask{
		Task:     NewTask(TaskTypeRun),
		pipeline: pipeline,
	}
}

func (t *RunTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p := t.pipeline
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	unlock, err := p.Store.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to lock state: %w", err)
	}
	defer unlock()

	run := database.Run{
		ID:           t.ID,
		StartedAt:    now().UTC(),
		RulesVersion: p.Classifier.Ruleset().Version,
	}

	state := p.Store.LoadState()
	previous := p.Store.LoadFeed()
	seen := feed.NewSeenSet(state.SeenURLs)
	processed := feed.NewSeenSet(state.ProcessedURLs)
	known := func(url string) bool {
		return seen.Contains(url) || processed.Contains(url)
	}

	foundAt := now().UTC()
	admitted := make(map[string]struct{})
	var fresh []feed.FeedItem

	for _, source := range p.Sources.GetEnabledConfigs() {
		collection := p.Collector.Run(ctx, source, known)
		run.Duplicates += collection.Skipped
		run.Errors += collection.Errors
		for _, link := range collection.Processed {
			processed.Add(link)
		}

		for _, cand := range collection.Candidates {
			run.Fetched++

			if !cand.Eligible() {
				slog.Debug("Skipping incomplete record", "source", source.Name, "url", cand.URL)
				run.Errors++
				continue
			}

			if _, ok := admitted[cand.URL]; ok || seen.Contains(cand.URL) {
				run.Duplicates++
				continue
			}

			if !source.AllowsDomain(cand) {
				slog.Debug("Excluded by source domain", "source", source.Name, "url", cand.URL, "domain", cand.SourceDomain)
				run.Rejected++
				continue
			}

			verdict := p.Classifier.Classify(cand)
			if !verdict.Admitted {
				slog.Debug("Candidate rejected", "url", cand.URL, "reason", verdict.Reason)
				run.Rejected++
				continue
			}

			fresh = append(fresh, p.Labeler.Run(cand, p.Classifier.Text(cand), foundAt))
			admitted[cand.URL] = struct{}{}
			run.Admitted++
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	merged := feed.Merge(fresh, previous)
	for _, item := range merged {
		seen.Add(item.URL)
	}
	seen.Cap(p.MaxSeen)
	processed.Cap(p.MaxSeen)

	items := feed.Cap(feed.Rank(merged), p.MaxItems)

	if err := p.Store.SaveFeed(items); err != nil {
		return fmt.Errorf("failed to save feed: %w", err)
	}
	if err := p.Store.SaveState(database.State{SeenURLs: seen.URLs(), ProcessedURLs: processed.URLs()}); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	run.FeedSize = len(items)
	run.SeenSize = seen.Len()
	run.FinishedAt = now().UTC()
	t.Result = &run

	if p.Archive != nil {
		t.archive(ctx, run, items)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"id", t.ID,
		"duration", t.GetDuration(),
		"fetched", run.Fetched,
		"duplicates", run.Duplicates,
		"rejected", run.Rejected,
		"admitted", run.Admitted,
		"feed", run.FeedSize,
		"seen", run.SeenSize,
		"errors", run.Errors)

	return nil
}

func (t *RunTask) archive(ctx context.Context, run database.Run, items []feed.FeedItem) {
	archive := t.pipeline.Archive

	if err := archive.UpsertItems(ctx, items, run.FinishedAt); err != nil {
		slog.Warn("Failed to archive items", "id", run.ID, "error", err)
	}
	if err := archive.RecordRun(ctx, run); err != nil {
		slog.Warn("Failed to archive run", "id", run.ID, "error", err)
	}
}
