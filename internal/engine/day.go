package engine

import (
	"fmt"
	"slices"

	"watchcommander/internal/domain"
)

// DayReport is the settlement of one shift rotation.
type DayReport struct {
	Day             int      `json:"day"`
	Payroll         int      `json:"payroll"`
	CityFunding     int      `json:"cityFunding"`
	EventBudget     int      `json:"eventBudget"`
	EventReputation int      `json:"eventReputation"`
	NetBudget       int      `json:"netBudget"`
	ExpiredOffers   int      `json:"expiredOffers"`
	Recovered       []string `json:"recovered"`
}

// AdvanceDay closes the current shift in one step: payroll and scheduled
// event rewards settle, unaccepted offers expire, officers rotate and recover.
func (e Engine) AdvanceDay(s domain.GameState) (domain.GameState, DayReport, error) {
	r := e.rules()
	next := s.Clone()
	rep := DayReport{CityFunding: r.CityFunding, Recovered: []string{}}

	for _, ev := range next.AvailableEvents {
		if ev.Status == domain.CommunityScheduled {
			rep.EventBudget += ev.Rewards.Budget
			rep.EventReputation += ev.Rewards.Reputation
		}
	}
	rep.Payroll = domain.Payroll(next.Officers)
	rep.NetBudget = r.CityFunding + rep.EventBudget - rep.Payroll

	for i := range next.Officers {
		o := &next.Officers[i]
		if o.Status == domain.OfficerKIA {
			continue
		}
		if o.Status == domain.OfficerOnMission || o.Status == domain.OfficerOnEvent {
			o.Status = domain.OfficerAvailable
		}
		if o.IsInjured && o.InjuryDays > 0 {
			o.InjuryDays--
			if o.InjuryDays > 0 {
				o.Status = domain.OfficerInjured
				o.Health = min(100, o.Health+5)
			} else {
				o.IsInjured = false
				o.Status = domain.OfficerAvailable
				o.Health = min(100, o.Health+20)
				rep.Recovered = append(rep.Recovered, o.Name)
			}
			continue
		}
		o.Morale = min(100, o.Morale+2)
	}

	before := len(next.ActiveMissions)
	next.ActiveMissions = slices.DeleteFunc(next.ActiveMissions, func(m domain.Mission) bool {
		return m.Status != domain.MissionInProgress
	})
	rep.ExpiredOffers = before - len(next.ActiveMissions)

	next.Budget += rep.NetBudget
	next.Reputation = domain.ClampStat(next.Reputation + rep.EventReputation)
	next.MissionsAttemptedToday = 0
	next.AvailableEvents = []domain.CommunityEvent{}
	next.Day++
	rep.Day = next.Day

	for _, name := range rep.Recovered {
		e.appendLog(&next, domain.LogSuccess, "%s has recovered and is cleared for duty.", name)
	}
	e.appendLog(&next, domain.LogInfo, "New shift rotation begins. Payroll processed (%s net). Dispatch radio refreshed.", domain.FormatMoney(rep.NetBudget))
	return next, rep, nil
}

func (e Engine) prepareCommunityEvent(ev domain.CommunityEvent) domain.CommunityEvent {
	if ev.ID == "" {
		ev.ID = e.newID()
	}
	ev.Status = domain.CommunityAvailable
	ev.AssignedOfficers = []string{}
	return ev
}

// AddCommunityEvent offers a generated community event for today.
func (e Engine) AddCommunityEvent(s domain.GameState, ev domain.CommunityEvent) domain.GameState {
	next := s.Clone()
	next.AvailableEvents = append(next.AvailableEvents, e.prepareCommunityEvent(ev))
	return next
}

// ScheduleEvent commits officers to a community event.
func (e Engine) ScheduleEvent(s domain.GameState, eventID string, officerIDs []string) (domain.GameState, error) {
	idx := slices.IndexFunc(s.AvailableEvents, func(ev domain.CommunityEvent) bool { return ev.ID == eventID })
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrCommunityEventNotFound, eventID)
	}
	if ev := s.AvailableEvents[idx]; ev.Status != domain.CommunityAvailable {
		return s, fmt.Errorf("event %s: %s -> %s: %w", ev.Title, ev.Status, domain.CommunityScheduled, ErrInvalidTransition)
	}
	team, err := checkDeployable(s, officerIDs)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	next.AvailableEvents[idx].Status = domain.CommunityScheduled
	next.AvailableEvents[idx].AssignedOfficers = team
	for i := range next.Officers {
		if slices.Contains(team, next.Officers[i].ID) {
			next.Officers[i].Status = domain.OfficerOnEvent
		}
	}
	e.appendLog(&next, domain.LogInfo, "Officers assigned to community event %s.", next.AvailableEvents[idx].Title)
	return next, nil
}

// CancelEvent returns a scheduled event to the offer list and frees its officers.
func (e Engine) CancelEvent(s domain.GameState, eventID string) (domain.GameState, error) {
	idx := slices.IndexFunc(s.AvailableEvents, func(ev domain.CommunityEvent) bool { return ev.ID == eventID })
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrCommunityEventNotFound, eventID)
	}
	ev := s.AvailableEvents[idx]
	if ev.Status != domain.CommunityScheduled {
		return s, fmt.Errorf("event %s: %s -> %s: %w", ev.Title, ev.Status, domain.CommunityAvailable, ErrInvalidTransition)
	}
	next := s.Clone()
	next.AvailableEvents[idx].Status = domain.CommunityAvailable
	next.AvailableEvents[idx].AssignedOfficers = []string{}
	for i := range next.Officers {
		o := &next.Officers[i]
		if slices.Contains(ev.AssignedOfficers, o.ID) && o.Status == domain.OfficerOnEvent {
			o.Status = domain.OfficerAvailable
		}
	}
	e.appendLog(&next, domain.LogInfo, "Community event %s cancelled.", ev.Title)
	return next, nil
}
