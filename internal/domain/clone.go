package domain

import "slices"

// Clone returns a deep copy of the state. Reducers work on a clone so the
// caller's snapshot is never touched.
func (s GameState) Clone() GameState {
	out := s
	out.Officers = cloneEach(s.Officers, Officer.clone)
	out.ActiveMissions = cloneEach(s.ActiveMissions, Mission.Clone)
	out.CompletedMissions = cloneEach(s.CompletedMissions, Mission.Clone)
	out.FailedMissions = cloneEach(s.FailedMissions, Mission.Clone)
	out.CurrentMissionEvents = cloneEach(s.CurrentMissionEvents, MissionEvent.clone)
	out.GameLog = slices.Clone(s.GameLog)
	out.AvailableEvents = cloneEach(s.AvailableEvents, CommunityEvent.clone)
	out.SuspectsInCustody = slices.Clone(s.SuspectsInCustody)
	out.EvidenceLocker = slices.Clone(s.EvidenceLocker)
	out.RecentNews = slices.Clone(s.RecentNews)
	out.Districts = slices.Clone(s.Districts)
	out.Nemeses = slices.Clone(s.Nemeses)
	out.MoraleEvents = slices.Clone(s.MoraleEvents)
	if s.LastMissionResult != nil {
		r := *s.LastMissionResult
		r.Mission = r.Mission.Clone()
		r.Casualties = slices.Clone(r.Casualties)
		r.Injuries = slices.Clone(r.Injuries)
		out.LastMissionResult = &r
	}
	if s.LastDismissedOfficer != nil {
		o := s.LastDismissedOfficer.clone()
		out.LastDismissedOfficer = &o
	}
	if s.PendingRandomEvent != nil {
		ev := s.PendingRandomEvent.clone()
		out.PendingRandomEvent = &ev
	}
	return out
}

func (o Officer) clone() Officer {
	o.Medals = slices.Clone(o.Medals)
	return o
}

// Clone returns a copy of m that shares no slices with it.
func (m Mission) Clone() Mission {
	m.RequiredSpecializations = slices.Clone(m.RequiredSpecializations)
	m.AssignedOfficers = slices.Clone(m.AssignedOfficers)
	return m
}

func (e MissionEvent) clone() MissionEvent {
	e.Options = slices.Clone(e.Options)
	return e
}

func (e CommunityEvent) clone() CommunityEvent {
	e.AssignedOfficers = slices.Clone(e.AssignedOfficers)
	return e
}

func (r RandomEffects) clone() RandomEffects {
	if r.BonusMission != nil {
		m := r.BonusMission.Clone()
		r.BonusMission = &m
	}
	return r
}

func (e RandomEvent) clone() RandomEvent {
	e.Effects = e.Effects.clone()
	if e.Choices != nil {
		choices := make([]RandomEventChoice, len(e.Choices))
		for i, c := range e.Choices {
			c.Effects = c.Effects.clone()
			choices[i] = c
		}
		e.Choices = choices
	}
	return e
}

func cloneEach[T any](in []T, fn func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}
