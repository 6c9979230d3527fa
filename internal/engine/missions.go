package engine

import (
	"fmt"
	"slices"

	"watchcommander/internal/domain"
)

// DecisionOutcome summarises what a resolved decision did to the campaign.
type DecisionOutcome struct {
	MissionComplete bool
	Success         bool
	// CaptureSuspect asks the caller to generate a captured suspect for Mission.
	CaptureSuspect bool
	Mission        domain.Mission
	Casualties     []string
	Injuries       []string
}

// CheckMissionQuota fails when today's dispatch allowance is used up.
func (e Engine) CheckMissionQuota(s domain.GameState) error {
	if s.MissionsAttemptedToday >= s.MaxMissionsPerDay {
		return ErrDispatchOverloaded
	}
	return nil
}

// AddMission appends a generated mission offer and counts it against the quota.
func (e Engine) AddMission(s domain.GameState, m domain.Mission) (domain.GameState, error) {
	if err := e.CheckMissionQuota(s); err != nil {
		return s, err
	}
	next := s.Clone()
	m = e.prepareMission(m)
	next.ActiveMissions = append(next.ActiveMissions, m)
	next.MissionsAttemptedToday++
	e.appendLog(&next, domain.LogMission, "New mission available: %s (%s priority)", m.Title, m.Priority)
	return next, nil
}

// AddCustomMission appends a commander-described mission. Team size is capped
// by the roster and the reputation reward may be negative.
func (e Engine) AddCustomMission(s domain.GameState, m domain.Mission) (domain.GameState, error) {
	if err := e.CheckMissionQuota(s); err != nil {
		return s, err
	}
	next := s.Clone()
	m = e.prepareMission(m)
	m.RequiredOfficers = domain.Clamp(m.RequiredOfficers, 1, max(1, len(next.Officers)))
	next.ActiveMissions = append(next.ActiveMissions, m)
	next.MissionsAttemptedToday++
	e.appendLog(&next, domain.LogMission, "New custom directive received and processed: %s", m.Title)
	return next, nil
}

func (e Engine) prepareMission(m domain.Mission) domain.Mission {
	if m.ID == "" {
		m.ID = e.newID()
	}
	m.Status = domain.MissionAvailable
	m.AssignedOfficers = []string{}
	domain.NormalizeMission(&m, e.now())
	return m
}

// AssignOfficersToMission deploys a team and starts the mission.
func (e Engine) AssignOfficersToMission(s domain.GameState, missionID string, officerIDs []string) (domain.GameState, error) {
	mi := missionIndex(s, missionID)
	if mi < 0 {
		return s, fmt.Errorf("%w: %s", ErrMissionNotFound, missionID)
	}
	m := s.ActiveMissions[mi]
	if m.Status != domain.MissionAvailable {
		return s, fmt.Errorf("mission %s: %s -> %s: %w", m.Title, m.Status, domain.MissionInProgress, ErrInvalidTransition)
	}
	team, err := checkDeployable(s, officerIDs)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	next.ActiveMissions[mi].Status = domain.MissionInProgress
	next.ActiveMissions[mi].AssignedOfficers = team
	for i := range next.Officers {
		if slices.Contains(team, next.Officers[i].ID) {
			next.Officers[i].Status = domain.OfficerOnMission
		}
	}
	e.appendLog(&next, domain.LogInfo, "Officers deployed to %s.", m.Title)
	return next, nil
}

// DeclineMission withdraws an offer at a reputation cost.
func (e Engine) DeclineMission(s domain.GameState, missionID string) (domain.GameState, error) {
	mi := missionIndex(s, missionID)
	if mi < 0 {
		return s, fmt.Errorf("%w: %s", ErrMissionNotFound, missionID)
	}
	if m := s.ActiveMissions[mi]; m.Status != domain.MissionAvailable {
		return s, fmt.Errorf("mission %s: %s -> %s: %w", m.Title, m.Status, domain.MissionDeclined, ErrInvalidTransition)
	}
	next := s.Clone()
	next.ActiveMissions = slices.Delete(next.ActiveMissions, mi, mi+1)
	next.Reputation = max(0, next.Reputation-e.rules().DeclinePenalty)
	e.appendLog(&next, domain.LogWarning, "Mission declined. Public trust decreased.")
	return next, nil
}

// MissionBriefing gathers what the generator needs for the next event of an
// in-progress mission: the mission, its team and the chain so far.
func (e Engine) MissionBriefing(s domain.GameState, missionID string) (domain.Mission, []domain.Officer, []domain.MissionEvent, error) {
	mi := missionIndex(s, missionID)
	if mi < 0 {
		return domain.Mission{}, nil, nil, fmt.Errorf("%w: %s", ErrMissionNotFound, missionID)
	}
	m := s.ActiveMissions[mi]
	if m.Status != domain.MissionInProgress {
		return domain.Mission{}, nil, nil, fmt.Errorf("mission %s is %s, not in progress: %w", m.Title, m.Status, ErrInvalidTransition)
	}
	var history []domain.MissionEvent
	for _, ev := range s.CurrentMissionEvents {
		if ev.MissionID != missionID {
			continue
		}
		if !ev.Resolved {
			return domain.Mission{}, nil, nil, ErrUnresolvedEvent
		}
		history = append(history, ev)
	}
	return m, assignedOfficers(s, m), history, nil
}

// AddMissionEvent appends the next beat of a mission's chain.
func (e Engine) AddMissionEvent(s domain.GameState, missionID string, ev domain.MissionEvent) (domain.GameState, error) {
	if _, _, _, err := e.MissionBriefing(s, missionID); err != nil {
		return s, err
	}
	next := s.Clone()
	if ev.ID == "" {
		ev.ID = e.newID()
	}
	ev.MissionID = missionID
	ev.Resolved = false
	ev.Outcome = ""
	if ev.Timestamp.IsZero() {
		ev.Timestamp = e.now()
	}
	next.CurrentMissionEvents = append(next.CurrentMissionEvents, ev)
	return next, nil
}

// DecisionContext returns the unresolved event, its mission and team.
func (e Engine) DecisionContext(s domain.GameState, eventID string) (domain.MissionEvent, domain.Mission, []domain.Officer, error) {
	ei := slices.IndexFunc(s.CurrentMissionEvents, func(ev domain.MissionEvent) bool { return ev.ID == eventID })
	if ei < 0 {
		return domain.MissionEvent{}, domain.Mission{}, nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	ev := s.CurrentMissionEvents[ei]
	if ev.Resolved {
		return domain.MissionEvent{}, domain.Mission{}, nil, ErrEventResolved
	}
	mi := missionIndex(s, ev.MissionID)
	if mi < 0 {
		return domain.MissionEvent{}, domain.Mission{}, nil, fmt.Errorf("%w: %s", ErrMissionNotFound, ev.MissionID)
	}
	m := s.ActiveMissions[mi]
	if m.Status != domain.MissionInProgress {
		return domain.MissionEvent{}, domain.Mission{}, nil, fmt.Errorf("mission %s is %s, not in progress: %w", m.Title, m.Status, ErrInvalidTransition)
	}
	return ev, m, assignedOfficers(s, m), nil
}

// TerminalResult is the resolution of a Success or Failure event that offers
// no options; it closes the mission without consulting the generator.
func TerminalResult(ev domain.MissionEvent) domain.DecisionResult {
	return domain.DecisionResult{
		Outcome:         ev.Description,
		Casualties:      []string{},
		Injuries:        []string{},
		MissionComplete: true,
		Success:         ev.Type == domain.EventSuccess,
	}
}

// MakeDecision applies a generated decision resolution to the campaign.
// Casualties are applied before injuries, so a name listed in both ends KIA.
func (e Engine) MakeDecision(s domain.GameState, eventID string, result domain.DecisionResult) (domain.GameState, DecisionOutcome, error) {
	ev, mission, _, err := e.DecisionContext(s, eventID)
	if err != nil {
		return s, DecisionOutcome{}, err
	}
	next := s.Clone()
	out := DecisionOutcome{}

	for i := range next.CurrentMissionEvents {
		if next.CurrentMissionEvents[i].ID == ev.ID {
			next.CurrentMissionEvents[i].Resolved = true
			next.CurrentMissionEvents[i].Outcome = result.Outcome
		}
	}

	for i := range next.Officers {
		o := &next.Officers[i]
		if o.Status == domain.OfficerKIA || !domain.AnyNameMatches(result.Casualties, o.Name) {
			continue
		}
		o.Status = domain.OfficerKIA
		o.Health = 0
		o.IsInjured = false
		o.InjuryDays = 0
		out.Casualties = append(out.Casualties, o.Name)
		releaseFromEvents(&next, o.ID)
	}
	for i := range next.Officers {
		o := &next.Officers[i]
		if o.Status == domain.OfficerKIA || !domain.AnyNameMatches(result.Injuries, o.Name) {
			continue
		}
		o.IsInjured = true
		o.Status = domain.OfficerInjured
		o.Health = max(10, o.Health-30)
		o.InjuryDays = 3 + e.intN(5)
		out.Injuries = append(out.Injuries, o.Name)
		releaseFromEvents(&next, o.ID)
	}

	if result.MissionComplete {
		e.completeMission(&next, mission, result, &out)
	}
	for _, name := range out.Casualties {
		e.appendLog(&next, domain.LogError, "Officer %s was KIA.", name)
	}
	for _, name := range out.Injuries {
		e.appendLog(&next, domain.LogWarning, "Officer %s was injured.", name)
	}
	return next, out, nil
}

func (e Engine) completeMission(next *domain.GameState, mission domain.Mission, result domain.DecisionResult, out *DecisionOutcome) {
	r := e.rules()
	terminal := mission.Clone()
	if result.Success {
		terminal.Status = domain.MissionCompleted
	} else {
		terminal.Status = domain.MissionFailed
	}

	for i := range next.Officers {
		o := &next.Officers[i]
		if !slices.Contains(mission.AssignedOfficers, o.ID) || o.Status == domain.OfficerKIA {
			continue
		}
		gain, morale := 3, -10
		if result.Success {
			gain, morale = 10, 5
		}
		o.Experience = min(100, o.Experience+gain)
		if rank := domain.PromotionFor(o.Rank, o.Experience); rank != o.Rank {
			o.Rank = rank
			e.appendLog(next, domain.LogSuccess, "PROMOTION: %s has been promoted to %s!", o.Name, rank)
		}
		o.Salary = domain.CalculateSalary(o.Rank)
		o.Morale = domain.ClampStat(o.Morale + morale)
		o.MissionsCompleted++
		if o.IsInjured {
			o.Status = domain.OfficerInjured
		} else {
			o.Status = domain.OfficerAvailable
		}
	}

	next.ActiveMissions = slices.DeleteFunc(next.ActiveMissions, func(m domain.Mission) bool { return m.ID == mission.ID })
	next.CurrentMissionEvents = slices.DeleteFunc(next.CurrentMissionEvents, func(ev domain.MissionEvent) bool { return ev.MissionID == mission.ID })
	if result.Success {
		next.CompletedMissions = append(next.CompletedMissions, terminal)
		next.Reputation = domain.ClampStat(next.Reputation + mission.Rewards.Reputation)
		next.Budget += mission.Rewards.Budget
		next.LuckyStreak++
		next.UnluckyStreak = 0
	} else {
		next.FailedMissions = append(next.FailedMissions, terminal)
		next.Reputation = domain.ClampStat(next.Reputation - r.FailurePenalty)
		next.UnluckyStreak++
		next.LuckyStreak = 0
	}
	next.LastMissionResult = &domain.MissionResult{
		Mission:    terminal.Clone(),
		Success:    result.Success,
		Outcome:    result.Outcome,
		Casualties: slices.Clone(nonNil(result.Casualties)),
		Injuries:   slices.Clone(nonNil(result.Injuries)),
		Rewards:    mission.Rewards,
	}
	if mission.NemesisID != "" {
		e.settleNemesis(next, mission.NemesisID, result.Success)
	}

	out.MissionComplete = true
	out.Success = result.Success
	out.Mission = terminal
	out.CaptureSuspect = result.Success && e.roll() < r.SuspectCaptureChance

	if result.Success {
		e.appendLog(next, domain.LogSuccess, "Mission %s completed brilliantly. Reward: %s", mission.Title, domain.FormatMoney(mission.Rewards.Budget))
	} else {
		e.appendLog(next, domain.LogError, "Mission %s failed. Heavy consequences for the department.", mission.Title)
	}
}

func assignedOfficers(s domain.GameState, m domain.Mission) []domain.Officer {
	var team []domain.Officer
	for _, o := range s.Officers {
		if slices.Contains(m.AssignedOfficers, o.ID) {
			team = append(team, o)
		}
	}
	return team
}

// releaseFromEvents removes a fallen or injured officer from any scheduled
// community event.
func releaseFromEvents(s *domain.GameState, officerID string) {
	for i := range s.AvailableEvents {
		ev := &s.AvailableEvents[i]
		if ev.Status != domain.CommunityScheduled || !slices.Contains(ev.AssignedOfficers, officerID) {
			continue
		}
		ev.AssignedOfficers = slices.DeleteFunc(ev.AssignedOfficers, func(id string) bool { return id == officerID })
		if len(ev.AssignedOfficers) == 0 {
			ev.Status = domain.CommunityAvailable
		}
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
