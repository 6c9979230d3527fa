package domain

import "time"

// NormalizeOfficer clamps stats into range and fills fields older or
// generated records may lack.
func NormalizeOfficer(o *Officer) {
	if r, ok := Match(string(o.Rank), Ranks); ok {
		o.Rank = r
	} else {
		o.Rank = RankRookie
	}
	if s, ok := Match(string(o.Specialization), Specializations); ok {
		o.Specialization = s
	} else {
		o.Specialization = SpecAssault
	}
	if s, ok := Match(string(o.Status), OfficerStatuses); ok {
		o.Status = s
	} else if o.IsInjured {
		o.Status = OfficerInjured
	} else {
		o.Status = OfficerAvailable
	}
	o.Experience = ClampStat(o.Experience)
	o.Morale = ClampStat(o.Morale)
	o.Health = ClampStat(o.Health)
	o.Skills = Skills{
		Marksmanship: ClampStat(o.Skills.Marksmanship),
		Tactics:      ClampStat(o.Skills.Tactics),
		Fitness:      ClampStat(o.Skills.Fitness),
		Leadership:   ClampStat(o.Skills.Leadership),
		Composure:    ClampStat(o.Skills.Composure),
	}
	if o.InjuryDays < 0 {
		o.InjuryDays = 0
	}
	if o.Salary <= 0 {
		o.Salary = CalculateSalary(o.Rank)
	}
	o.Gear = Gear{
		ArmorLevel:   Clamp(o.Gear.ArmorLevel, 1, MaxGearLevel),
		WeaponLevel:  Clamp(o.Gear.WeaponLevel, 1, MaxGearLevel),
		UtilityLevel: Clamp(o.Gear.UtilityLevel, 1, MaxGearLevel),
	}
	if o.Medals == nil {
		o.Medals = []string{}
	}
	if o.MissionsCompleted < 0 {
		o.MissionsCompleted = 0
	}
}

// NormalizeMission clamps risk and fills empty collections. A zero creation
// time is replaced with now.
func NormalizeMission(m *Mission, now time.Time) {
	if t, ok := Match(string(m.Type), MissionTypes); ok {
		m.Type = t
	} else {
		m.Type = MissionCustomOperation
	}
	if p, ok := Match(string(m.Priority), Priorities); ok {
		m.Priority = p
	} else {
		m.Priority = PriorityMedium
	}
	if s, ok := Match(string(m.Status), MissionStatuses); ok {
		m.Status = s
	} else {
		m.Status = MissionAvailable
	}
	if m.RiskLevel == 0 {
		m.RiskLevel = 5
	}
	m.RiskLevel = Clamp(m.RiskLevel, 1, 10)
	if m.RequiredOfficers < 1 {
		m.RequiredOfficers = 1
	}
	if m.RequiredSpecializations == nil {
		m.RequiredSpecializations = []string{}
	}
	if m.AssignedOfficers == nil {
		m.AssignedOfficers = []string{}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
}

// NormalizeState applies forward-compatible defaults to a state that came from
// outside the engine. Fields absent in older saves are filled, never dropped.
func NormalizeState(s *GameState, now time.Time, maxMissionsPerDay int) {
	if s.Day < 1 {
		s.Day = 1
	}
	if s.MaxMissionsPerDay <= 0 {
		s.MaxMissionsPerDay = maxMissionsPerDay
	}
	if s.MissionsAttemptedToday < 0 {
		s.MissionsAttemptedToday = 0
	}
	s.Reputation = ClampStat(s.Reputation)

	if s.Officers == nil {
		s.Officers = []Officer{}
	}
	for i := range s.Officers {
		NormalizeOfficer(&s.Officers[i])
	}
	if s.LastDismissedOfficer != nil {
		NormalizeOfficer(s.LastDismissedOfficer)
	}
	s.ActiveMissions = normalizeMissions(s.ActiveMissions, now)
	s.CompletedMissions = normalizeMissions(s.CompletedMissions, now)
	s.FailedMissions = normalizeMissions(s.FailedMissions, now)
	if s.LastMissionResult != nil {
		NormalizeMission(&s.LastMissionResult.Mission, now)
		if s.LastMissionResult.Casualties == nil {
			s.LastMissionResult.Casualties = []string{}
		}
		if s.LastMissionResult.Injuries == nil {
			s.LastMissionResult.Injuries = []string{}
		}
	}

	if s.CurrentMissionEvents == nil {
		s.CurrentMissionEvents = []MissionEvent{}
	}
	for i := range s.CurrentMissionEvents {
		ev := &s.CurrentMissionEvents[i]
		if ev.Timestamp.IsZero() {
			ev.Timestamp = now
		}
		if t, ok := Match(string(ev.Type), EventTypes); ok {
			ev.Type = t
		} else {
			ev.Type = EventInfo
		}
	}

	if s.GameLog == nil {
		s.GameLog = []LogEntry{}
	}
	for i := range s.GameLog {
		if s.GameLog[i].Timestamp.IsZero() {
			s.GameLog[i].Timestamp = now
		}
	}
	if len(s.GameLog) > MaxLogEntries {
		s.GameLog = s.GameLog[:MaxLogEntries]
	}

	if s.AvailableEvents == nil {
		s.AvailableEvents = []CommunityEvent{}
	}
	for i := range s.AvailableEvents {
		if s.AvailableEvents[i].AssignedOfficers == nil {
			s.AvailableEvents[i].AssignedOfficers = []string{}
		}
		if s.AvailableEvents[i].Status == "" {
			s.AvailableEvents[i].Status = CommunityAvailable
		}
	}
	if s.SuspectsInCustody == nil {
		s.SuspectsInCustody = []Suspect{}
	}
	for i := range s.SuspectsInCustody {
		sp := &s.SuspectsInCustody[i]
		sp.IntelLevel = ClampStat(sp.IntelLevel)
		sp.Resistance = ClampStat(sp.Resistance)
		if !sp.Status.Valid() {
			sp.Status = SuspectCustody
		}
	}
	if s.EvidenceLocker == nil {
		s.EvidenceLocker = []EvidenceItem{}
	}
	if s.RecentNews == nil {
		s.RecentNews = []NewsStory{}
	}
	for i := range s.RecentNews {
		if s.RecentNews[i].Timestamp.IsZero() {
			s.RecentNews[i].Timestamp = now
		}
	}
	if s.Districts == nil {
		s.Districts = []District{}
	}
	if s.Nemeses == nil {
		s.Nemeses = []Nemesis{}
	}
	for i := range s.Nemeses {
		n := &s.Nemeses[i]
		n.GrudgeLevel = Clamp(n.GrudgeLevel, 1, MaxGrudge)
		if !n.Status.Valid() {
			n.Status = NemesisAtLarge
		}
		if n.LastEncounter.IsZero() {
			n.LastEncounter = now
		}
	}
	if len(s.MoraleEvents) == 0 {
		s.MoraleEvents = DefaultMoraleEvents()
	}
	if s.LuckyStreak < 0 {
		s.LuckyStreak = 0
	}
	if s.UnluckyStreak < 0 {
		s.UnluckyStreak = 0
	}
}

func normalizeMissions(ms []Mission, now time.Time) []Mission {
	if ms == nil {
		return []Mission{}
	}
	for i := range ms {
		NormalizeMission(&ms[i], now)
	}
	return ms
}
