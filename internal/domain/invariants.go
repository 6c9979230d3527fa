package domain

import (
	"errors"
	"fmt"
)

// CheckInvariants reports every cross-entity rule the state violates.
func CheckInvariants(s GameState) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if s.Reputation < 0 || s.Reputation > 100 {
		fail("reputation %d out of range", s.Reputation)
	}
	if s.Day < 1 {
		fail("day %d out of range", s.Day)
	}
	if len(s.GameLog) > MaxLogEntries {
		fail("game log holds %d entries", len(s.GameLog))
	}

	missionsByOfficer := map[string]int{}
	for _, m := range s.ActiveMissions {
		if m.Status != MissionAvailable && m.Status != MissionInProgress {
			fail("active mission %s has status %s", m.ID, m.Status)
		}
		if m.Status == MissionInProgress {
			for _, id := range m.AssignedOfficers {
				missionsByOfficer[id]++
			}
		}
	}
	for _, bucket := range [][]Mission{s.ActiveMissions, s.CompletedMissions, s.FailedMissions} {
		for _, m := range bucket {
			if (len(m.AssignedOfficers) > 0) != m.Status.Engaged() {
				fail("mission %s has %d assigned officers with status %s", m.ID, len(m.AssignedOfficers), m.Status)
			}
		}
	}

	eventsByOfficer := map[string]int{}
	for _, ev := range s.AvailableEvents {
		if ev.Status == CommunityScheduled {
			for _, id := range ev.AssignedOfficers {
				eventsByOfficer[id]++
			}
		}
	}

	for _, o := range s.Officers {
		for name, v := range map[string]int{"health": o.Health, "morale": o.Morale, "experience": o.Experience} {
			if v < 0 || v > 100 {
				fail("officer %s %s %d out of range", o.ID, name, v)
			}
		}
		engagements := missionsByOfficer[o.ID] + eventsByOfficer[o.ID]
		if engagements > 1 {
			fail("officer %s holds %d concurrent assignments", o.ID, engagements)
		}
		switch o.Status {
		case OfficerOnMission:
			if missionsByOfficer[o.ID] != 1 {
				fail("officer %s is On Mission without an in-progress mission", o.ID)
			}
		case OfficerOnEvent:
			if eventsByOfficer[o.ID] != 1 {
				fail("officer %s is On Event without a scheduled event", o.ID)
			}
		case OfficerInjured:
			if !o.IsInjured || o.InjuryDays <= 0 {
				fail("officer %s is Injured without a recovery period", o.ID)
			}
			if eventsByOfficer[o.ID] > 0 {
				fail("officer %s is Injured but scheduled for an event", o.ID)
			}
		case OfficerKIA:
			if o.Health != 0 {
				fail("officer %s is KIA with health %d", o.ID, o.Health)
			}
			if eventsByOfficer[o.ID] > 0 {
				fail("officer %s is KIA but scheduled for an event", o.ID)
			}
		}
	}

	unresolved := map[string]int{}
	active := map[string]MissionStatus{}
	for _, m := range s.ActiveMissions {
		active[m.ID] = m.Status
	}
	for _, ev := range s.CurrentMissionEvents {
		status, ok := active[ev.MissionID]
		if !ok || status != MissionInProgress {
			fail("event %s belongs to mission %s which is not in progress", ev.ID, ev.MissionID)
		}
		if !ev.Resolved {
			unresolved[ev.MissionID]++
		}
	}
	for id, n := range unresolved {
		if n > 1 {
			fail("mission %s has %d unresolved events", id, n)
		}
	}
	return errors.Join(errs...)
}
