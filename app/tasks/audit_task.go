package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/kent-tracker/app/database"
	"github.com/lysyi3m/kent-tracker/app/feed"
)

type AuditFinding struct {
	URL    string     `json:"url"`
	Title  string     `json:"title"`
	Label  feed.Label `json:"label"`
	Reason string     `json:"reason"`
}

type AuditReport struct {
	RulesVersion string         `json:"rules_version"`
	Checked      int            `json:"checked"`
	Rejected     []AuditFinding `json:"rejected"`
}

// AuditTask re-classifies the persisted feed against a ruleset and reports
// the items it would now reject. The feed itself is left untouched.
type AuditTask struct {
	Task
	classifier *feed.Classifier
	store      database.StateRepository
	Report     *AuditReport
}

func NewAuditTask(classifier *feed.Classifier, store database.StateRepository) *AuditTask {
	return &AuditTask{
		Task:       NewTask(TaskTypeAudit),
		classifier: classifier,
		store:      store,
	}
}

func (t *AuditTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	items := t.store.LoadFeed()

	report := &AuditReport{
		RulesVersion: t.classifier.Ruleset().Version,
		Checked:      len(items),
		Rejected:     []AuditFinding{},
	}

	for _, item := range items {
		verdict := t.classifier.Classify(feed.Candidate{
			Title:        item.Title,
			URL:          item.URL,
			Published:    item.Published,
			SourceName:   item.Source,
			SourceDomain: item.SourceDomain,
			Summary:      item.Summary,
		})
		if verdict.Admitted {
			continue
		}

		report.Rejected = append(report.Rejected, AuditFinding{
			URL:    item.URL,
			Title:  item.Title,
			Label:  item.Label,
			Reason: verdict.Reason,
		})
	}

	t.Report = report

	slog.Info("Task completed",
		"type", t.GetType(),
		"id", t.ID,
		"duration", t.GetDuration(),
		"rules_version", report.RulesVersion,
		"checked", report.Checked,
		"rejected", len(report.Rejected))

	return nil
}
