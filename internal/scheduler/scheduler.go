package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "chatcal/internal/log"
)

// Agenda produces the digest text for the current day.
type Agenda interface {
	Agenda() string
}

// Scheduler runs the agenda digest on a cron spec in the reference zone.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	agenda Agenda
	loc    *time.Location
}

func New(spec string, loc *time.Location, agenda Agenda) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		spec:   spec,
		agenda: agenda,
		loc:    loc,
	}
}

// Start registers the digest and blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, s.RunDigest); err != nil {
		return fmt.Errorf("add agenda digest: %w", err)
	}

	s.cron.Start()
	appLog.Info("scheduler started", "spec", s.spec, "timezone", s.loc.String())

	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	appLog.Info("scheduler stopped")
}

// RunDigest logs today's agenda once.
func (s *Scheduler) RunDigest() {
	appLog.Info("agenda digest", "agenda", s.agenda.Agenda())
}
