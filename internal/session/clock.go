package session

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// StartShiftClock advances the day on a cron schedule (standard five-field
// spec or a descriptor like "@every 10m") until Close. Ticks before a
// commander has taken over are skipped.
func (s *Session) StartShiftClock(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("shift schedule %q: %w", spec, err)
	}
	s.mu.Lock()
	old := s.clock
	s.clock = c
	s.mu.Unlock()
	if old != nil {
		old.Stop()
	}
	c.Start()
	s.log.WithField("schedule", spec).Info("shift clock started")
	return nil
}

func (s *Session) tick() {
	if s.State().CommanderName == "" {
		return
	}
	if _, err := s.AdvanceDay(context.Background()); err != nil {
		s.log.WithError(err).Warn("scheduled shift rotation skipped")
	}
}
