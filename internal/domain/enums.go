package domain

import "strings"

type Rank string

const (
	RankRookie        Rank = "Rookie"
	RankOfficer       Rank = "Officer"
	RankSeniorOfficer Rank = "Senior Officer"
	RankSergeant      Rank = "Sergeant"
	RankLieutenant    Rank = "Lieutenant"
)

// Ranks lists ranks from lowest to highest.
var Ranks = []Rank{RankRookie, RankOfficer, RankSeniorOfficer, RankSergeant, RankLieutenant}

func (r Rank) Valid() bool { return indexOf(Ranks, r) >= 0 }

// Order returns the position of r in the chain of command, or -1.
func (r Rank) Order() int { return indexOf(Ranks, r) }

type Specialization string

const (
	SpecAssault        Specialization = "Assault"
	SpecSniper         Specialization = "Sniper"
	SpecBreacher       Specialization = "Breacher"
	SpecMedic          Specialization = "Medic"
	SpecNegotiator     Specialization = "Negotiator"
	SpecTechSpecialist Specialization = "Tech Specialist"
)

var Specializations = []Specialization{SpecAssault, SpecSniper, SpecBreacher, SpecMedic, SpecNegotiator, SpecTechSpecialist}

func (s Specialization) Valid() bool { return indexOf(Specializations, s) >= 0 }

type OfficerStatus string

const (
	OfficerAvailable OfficerStatus = "Available"
	OfficerOnMission OfficerStatus = "On Mission"
	OfficerOnEvent   OfficerStatus = "On Event"
	OfficerInjured   OfficerStatus = "Injured"
	OfficerOnLeave   OfficerStatus = "On Leave"
	OfficerKIA       OfficerStatus = "KIA"
)

var OfficerStatuses = []OfficerStatus{OfficerAvailable, OfficerOnMission, OfficerOnEvent, OfficerInjured, OfficerOnLeave, OfficerKIA}

func (s OfficerStatus) Valid() bool { return indexOf(OfficerStatuses, s) >= 0 }

type MissionType string

const (
	MissionHostageRescue     MissionType = "Hostage Rescue"
	MissionHighRiskWarrant   MissionType = "High-Risk Warrant"
	MissionActiveShooter     MissionType = "Active Shooter"
	MissionBarricadedSuspect MissionType = "Barricaded Suspect"
	MissionVIPProtection     MissionType = "VIP Protection"
	MissionDrugRaid          MissionType = "Drug Raid"
	MissionBombThreat        MissionType = "Bomb Threat"
	MissionCustomOperation   MissionType = "Custom Operation"
)

// StandardMissionTypes excludes Custom Operation, which only player-described missions use.
var StandardMissionTypes = []MissionType{
	MissionHostageRescue, MissionHighRiskWarrant, MissionActiveShooter, MissionBarricadedSuspect,
	MissionVIPProtection, MissionDrugRaid, MissionBombThreat,
}

var MissionTypes = append(append([]MissionType{}, StandardMissionTypes...), MissionCustomOperation)

func (t MissionType) Valid() bool { return indexOf(MissionTypes, t) >= 0 }

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) Valid() bool { return indexOf(Priorities, p) >= 0 }

// Order ranks priorities from Low (0) to Critical (3); unknown values are -1.
func (p Priority) Order() int { return indexOf(Priorities, p) }

type MissionStatus string

const (
	MissionAvailable  MissionStatus = "Available"
	MissionInProgress MissionStatus = "In Progress"
	MissionCompleted  MissionStatus = "Completed"
	MissionFailed     MissionStatus = "Failed"
	MissionDeclined   MissionStatus = "Declined"
)

var MissionStatuses = []MissionStatus{MissionAvailable, MissionInProgress, MissionCompleted, MissionFailed, MissionDeclined}

func (s MissionStatus) Valid() bool { return indexOf(MissionStatuses, s) >= 0 }

// Engaged reports whether a mission in this status carries an assigned team.
func (s MissionStatus) Engaged() bool {
	return s == MissionInProgress || s == MissionCompleted || s == MissionFailed
}

type EventType string

const (
	EventInfo     EventType = "Info"
	EventDecision EventType = "Decision"
	EventCombat   EventType = "Combat"
	EventCasualty EventType = "Casualty"
	EventSuccess  EventType = "Success"
	EventFailure  EventType = "Failure"
)

var EventTypes = []EventType{EventInfo, EventDecision, EventCombat, EventCasualty, EventSuccess, EventFailure}

func (t EventType) Valid() bool { return indexOf(EventTypes, t) >= 0 }

// Terminal reports whether the event ends its mission chain.
func (t EventType) Terminal() bool { return t == EventSuccess || t == EventFailure }

type SuspectStatus string

const (
	SuspectCustody      SuspectStatus = "Custody"
	SuspectInterrogated SuspectStatus = "Interrogated"
	SuspectReleased     SuspectStatus = "Released"
	SuspectCharged      SuspectStatus = "Charged"
	SuspectSentenced    SuspectStatus = "Sentenced"
	SuspectArchived     SuspectStatus = "Archived"
	SuspectCI           SuspectStatus = "CI"
)

var SuspectStatuses = []SuspectStatus{SuspectCustody, SuspectInterrogated, SuspectReleased, SuspectCharged, SuspectSentenced, SuspectArchived, SuspectCI}

func (s SuspectStatus) Valid() bool { return indexOf(SuspectStatuses, s) >= 0 }

type CommunityEventType string

const (
	CommunityCharity          CommunityEventType = "Charity"
	CommunityPublicRelations  CommunityEventType = "Public Relations"
	CommunityTrainingDemo     CommunityEventType = "Training Demo"
	CommunityRecruitmentDrive CommunityEventType = "Recruitment Drive"
)

var CommunityEventTypes = []CommunityEventType{CommunityCharity, CommunityPublicRelations, CommunityTrainingDemo, CommunityRecruitmentDrive}

func (t CommunityEventType) Valid() bool { return indexOf(CommunityEventTypes, t) >= 0 }

type CommunityEventStatus string

const (
	CommunityAvailable CommunityEventStatus = "Available"
	CommunityScheduled CommunityEventStatus = "Scheduled"
	CommunityCompleted CommunityEventStatus = "Completed"
)

type NemesisStatus string

const (
	NemesisAtLarge    NemesisStatus = "At Large"
	NemesisPlotting   NemesisStatus = "Plotting"
	NemesisCaptured   NemesisStatus = "Captured"
	NemesisEliminated NemesisStatus = "Eliminated"
)

var NemesisStatuses = []NemesisStatus{NemesisAtLarge, NemesisPlotting, NemesisCaptured, NemesisEliminated}

func (s NemesisStatus) Valid() bool { return indexOf(NemesisStatuses, s) >= 0 }

// Active reports whether the nemesis can still strike.
func (s NemesisStatus) Active() bool { return s == NemesisAtLarge || s == NemesisPlotting }

type RandomEventType string

const (
	RandomWindfall    RandomEventType = "Windfall"
	RandomDisaster    RandomEventType = "Disaster"
	RandomOpportunity RandomEventType = "Opportunity"
	RandomDrama       RandomEventType = "Drama"
	RandomChaos       RandomEventType = "Chaos"
	RandomMorale      RandomEventType = "Morale"
)

var RandomEventTypes = []RandomEventType{RandomWindfall, RandomDisaster, RandomOpportunity, RandomDrama, RandomChaos, RandomMorale}

func (t RandomEventType) Valid() bool { return indexOf(RandomEventTypes, t) >= 0 }

type MoraleEventType string

const (
	MoralePizzaParty     MoraleEventType = "Pizza Party"
	MoraleBBQ            MoraleEventType = "BBQ"
	MoraleTrainingDay    MoraleEventType = "Training Day"
	MoraleAwardsCeremony MoraleEventType = "Awards Ceremony"
	MoraleDayOff         MoraleEventType = "Day Off"
	MoraleTeamBuilding   MoraleEventType = "Team Building"
)

type LogType string

const (
	LogInfo    LogType = "Info"
	LogWarning LogType = "Warning"
	LogError   LogType = "Error"
	LogSuccess LogType = "Success"
	LogMission LogType = "Mission"
)

type GearTrack string

const (
	GearArmor   GearTrack = "armor"
	GearWeapon  GearTrack = "weapon"
	GearUtility GearTrack = "utility"
)

var GearTracks = []GearTrack{GearArmor, GearWeapon, GearUtility}

// ParseGearTrack accepts "armor" as well as the save-format "armorLevel".
func ParseGearTrack(s string) (GearTrack, bool) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "level")
	t := GearTrack(s)
	return t, indexOf(GearTracks, t) >= 0
}

// Level returns the current level of track t.
func (g Gear) Level(t GearTrack) int {
	switch t {
	case GearArmor:
		return g.ArmorLevel
	case GearWeapon:
		return g.WeaponLevel
	case GearUtility:
		return g.UtilityLevel
	}
	return 0
}

// WithLevel returns a copy of g with track t set to level.
func (g Gear) WithLevel(t GearTrack, level int) Gear {
	switch t {
	case GearArmor:
		g.ArmorLevel = level
	case GearWeapon:
		g.WeaponLevel = level
	case GearUtility:
		g.UtilityLevel = level
	}
	return g
}

// Match resolves a loosely written enum value against allowed, ignoring case
// and surrounding whitespace.
func Match[T ~string](value string, allowed []T) (T, bool) {
	v := strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(string(a), v) {
			return a, true
		}
	}
	var zero T
	return zero, false
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return -1
}
