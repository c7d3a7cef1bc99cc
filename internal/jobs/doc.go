// Package jobs holds the background work of the ambassador API.
//
// MissionExpiryJob runs on a gocron scheduler and moves Active missions
// whose end_date has passed to Expired:
//
//	job := jobs.NewMissionExpiryJob(missionRepo, cfg.Jobs.MissionExpiryInterval)
//	if err := job.Start(); err != nil { ... }
//	defer job.Stop()
//
// Failed runs are logged and retried on the next tick.
package jobs
