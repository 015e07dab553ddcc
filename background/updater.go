package background

import (
	"context"

	cron "github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/covidtrack/covid19-api/pipeline"
)

const logPrefix = "cron"

// DisabledSchedule turns the recurring update off.
const DisabledSchedule = "disabled"

// Updater triggers pipeline runs on a cron schedule. It shares the
// pipeline's run guard with the on-demand trigger, so an overlapping
// tick is coalesced into the active run instead of interleaving.
type Updater struct {
	cron     *cron.Cron
	pipeline *pipeline.Pipeline
}

// NewUpdater - scheduled updater; schedule is a 6-field cron
// expression (with seconds), or "disabled".
func NewUpdater(schedule string, p *pipeline.Pipeline) (*Updater, error) {
	u := &Updater{pipeline: p}

	if schedule == "" || schedule == DisabledSchedule {
		log.WithField("prefix", logPrefix).Info("scheduled update disabled")
		return u, nil
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(schedule, u.run); err != nil {
		return nil, err
	}
	u.cron = c

	log.WithFields(log.Fields{"prefix": logPrefix, "schedule": schedule}).Info("scheduled update registered")
	return u, nil
}

func (u *Updater) run() {
	log.WithField("prefix", logPrefix).Info("starting scheduled update")

	switch err := u.pipeline.Run(context.Background()); err {
	case nil:
		log.WithField("prefix", logPrefix).Info("scheduled update completed")
	case pipeline.ErrUpdateInProgress:
		log.WithField("prefix", logPrefix).Info("scheduled update skipped, run in progress")
	default:
		log.WithField("prefix", logPrefix).Errorf("scheduled update failed: %s", err)
	}
}

// Start begins the schedule. No-op when disabled.
func (u *Updater) Start() {
	if u.cron != nil {
		u.cron.Start()
	}
}

// Stop halts the schedule; the context is done once a running job, if
// any, completes.
func (u *Updater) Stop() context.Context {
	if u.cron != nil {
		return u.cron.Stop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
