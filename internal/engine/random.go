package engine

import (
	"slices"

	"watchcommander/internal/domain"
)

// RandomOutcome describes how a random event played out.
type RandomOutcome struct {
	Event     domain.RandomEvent   `json:"event"`
	Effects   domain.RandomEffects `json:"effects"`
	Backfired bool                 `json:"backfired"`
}

// SetRandomEvent queues a generated random event for the commander.
func (e Engine) SetRandomEvent(s domain.GameState, ev domain.RandomEvent) (domain.GameState, error) {
	if s.PendingRandomEvent != nil && !s.PendingRandomEvent.Resolved {
		return s, ErrRandomEventPending
	}
	next := s.Clone()
	if ev.ID == "" {
		ev.ID = e.newID()
	}
	ev.Resolved = false
	next.PendingRandomEvent = &ev
	e.appendLog(&next, domain.LogInfo, "RANDOM EVENT: %s", ev.Title)
	return next, nil
}

// ResolveRandomEvent applies the chosen response to the pending event. Events
// without choices apply their own effects and ignore choiceID. A risky choice
// may backfire, inverting its effects.
func (e Engine) ResolveRandomEvent(s domain.GameState, choiceID string) (domain.GameState, RandomOutcome, error) {
	if s.PendingRandomEvent == nil || s.PendingRandomEvent.Resolved {
		return s, RandomOutcome{}, ErrNoRandomEvent
	}
	ev := *s.PendingRandomEvent
	out := RandomOutcome{Event: ev, Effects: ev.Effects}
	label := ev.Title
	if len(ev.Choices) > 0 {
		i := slices.IndexFunc(ev.Choices, func(c domain.RandomEventChoice) bool { return c.ID == choiceID })
		if i < 0 {
			return s, RandomOutcome{}, ErrChoiceNotFound
		}
		choice := ev.Choices[i]
		out.Effects = choice.Effects
		label = choice.Label
		if choice.Risk > 0 && e.roll()*100 < float64(choice.Risk) {
			out.Backfired = true
			out.Effects = domain.RandomEffects{
				BudgetChange:     -choice.Effects.BudgetChange,
				ReputationChange: -choice.Effects.ReputationChange,
				MoraleChange:     -choice.Effects.MoraleChange,
				OfficerAffected:  choice.Effects.OfficerAffected,
			}
		}
	}

	next := s.Clone()
	e.applyEffects(&next, out.Effects)
	next.PendingRandomEvent = nil
	switch {
	case out.Backfired:
		e.appendLog(&next, domain.LogError, "%s backfired: %s", label, ev.Title)
	case out.Effects.BudgetChange < 0 || out.Effects.ReputationChange < 0 || out.Effects.MoraleChange < 0:
		e.appendLog(&next, domain.LogWarning, "%s: %s", ev.Title, label)
	default:
		e.appendLog(&next, domain.LogSuccess, "%s: %s", ev.Title, label)
	}
	return next, out, nil
}

// DismissRandomEvent ignores the pending event without applying anything.
func (e Engine) DismissRandomEvent(s domain.GameState) (domain.GameState, error) {
	if s.PendingRandomEvent == nil || s.PendingRandomEvent.Resolved {
		return s, ErrNoRandomEvent
	}
	next := s.Clone()
	title := next.PendingRandomEvent.Title
	next.PendingRandomEvent = nil
	e.appendLog(&next, domain.LogInfo, "Ignored: %s", title)
	return next, nil
}

func (e Engine) applyEffects(s *domain.GameState, fx domain.RandomEffects) {
	s.Budget += fx.BudgetChange
	s.Reputation = domain.ClampStat(s.Reputation + fx.ReputationChange)
	if fx.MoraleChange != 0 {
		target := -1
		if fx.OfficerAffected != "" {
			target = officerIndex(*s, fx.OfficerAffected)
		}
		for i := range s.Officers {
			o := &s.Officers[i]
			if !o.OnDuty() || (target >= 0 && i != target) {
				continue
			}
			o.Morale = domain.ClampStat(o.Morale + fx.MoraleChange)
		}
	}
	if fx.BonusMission != nil {
		m := e.prepareMission(fx.BonusMission.Clone())
		s.ActiveMissions = append(s.ActiveMissions, m)
		e.appendLog(s, domain.LogMission, "Bonus opportunity on the board: %s", m.Title)
	}
}
