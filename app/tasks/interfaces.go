package tasks

import (
	"github.com/lysyi3m/kent-tracker/app/database"
)

// TaskSchedulerInterface is what the HTTP layer needs from the scheduler.
//
//	scheduler := NewScheduler(pipeline, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.Trigger()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	Trigger() error
	LastRun() *database.Run
}
