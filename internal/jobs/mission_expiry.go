package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/mfai/ambassador/api/internal/metrics"
	"go.uber.org/zap"
)

// MissionExpirer moves overdue Active missions to Expired
type MissionExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

// MissionExpiryJob periodically closes missions whose end_date has passed
type MissionExpiryJob struct {
	missions  MissionExpirer
	interval  time.Duration
	now       func() time.Time
	scheduler gocron.Scheduler
	running   bool
	mu        sync.Mutex
}

// NewMissionExpiryJob creates a new mission expiry job
func NewMissionExpiryJob(missions MissionExpirer, interval time.Duration) *MissionExpiryJob {
	if interval == 0 {
		interval = time.Minute
	}
	return &MissionExpiryJob{
		missions: missions,
		interval: interval,
		now:      time.Now,
	}
}

// Start schedules the job. The first run happens immediately.
func (j *MissionExpiryJob) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = s.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(j.tick),
		gocron.WithName("mission-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return err
	}

	s.Start()
	j.scheduler = s
	j.running = true
	zap.L().Info("mission expiry job started", zap.Duration("interval", j.interval))
	return nil
}

// Stop shuts the scheduler down, waiting for a run in progress
func (j *MissionExpiryJob) Stop() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.running {
		return nil
	}

	j.running = false
	err := j.scheduler.Shutdown()
	j.scheduler = nil
	zap.L().Info("mission expiry job stopped")
	return err
}

// IsRunning returns whether the job is scheduled
func (j *MissionExpiryJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

// RunOnce expires overdue missions now and returns how many changed
func (j *MissionExpiryJob) RunOnce(ctx context.Context) (int, error) {
	n, err := j.missions.ExpireOverdue(ctx, j.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.MissionsExpiredTotal.Add(float64(n))
	}
	return n, nil
}

func (j *MissionExpiryJob) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := j.RunOnce(ctx)
	if err != nil {
		zap.L().Error("mission expiry run failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("missions expired", zap.Int("count", n))
	}
}
