package domain

import "time"

// JSON field names follow the campaign save format so exported saves stay
// interchangeable across versions.

type Skills struct {
	Marksmanship int `json:"marksmanship"`
	Tactics      int `json:"tactics"`
	Fitness      int `json:"fitness"`
	Leadership   int `json:"leadership"`
	Composure    int `json:"composure"`
}

type Gear struct {
	ArmorLevel   int `json:"armorLevel"`
	WeaponLevel  int `json:"weaponLevel"`
	UtilityLevel int `json:"utilityLevel"`
}

type Officer struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Nickname          string         `json:"nickname,omitempty"`
	Rank              Rank           `json:"rank" enum:"Rookie,Officer,Senior Officer,Sergeant,Lieutenant"`
	Specialization    Specialization `json:"specialization"`
	Experience        int            `json:"experience"`
	Morale            int            `json:"morale"`
	Health            int            `json:"health"`
	Skills            Skills         `json:"skills"`
	MissionsCompleted int            `json:"missionsCompleted"`
	IsInjured         bool           `json:"isInjured"`
	InjuryDays        int            `json:"injuryDays"`
	Status            OfficerStatus  `json:"status" enum:"Available,On Mission,On Event,Injured,On Leave,KIA"`
	Salary            int            `json:"salary"`
	Backstory         string         `json:"backstory,omitempty"`
	Gear              Gear           `json:"gear"`
	Medals            []string       `json:"medals"`
	KillCount         int            `json:"killCount"`
	LivesSaved        int            `json:"livesaved"`
}

type Rewards struct {
	Experience int `json:"experience"`
	Reputation int `json:"reputation"`
	Budget     int `json:"budget"`
}

type Mission struct {
	ID                      string        `json:"id"`
	Title                   string        `json:"title"`
	Description             string        `json:"description"`
	Type                    MissionType   `json:"type"`
	Priority                Priority      `json:"priority" enum:"Low,Medium,High,Critical"`
	Location                string        `json:"location"`
	DistrictID              string        `json:"districtId,omitempty"`
	EstimatedDuration       string        `json:"estimatedDuration"`
	RequiredOfficers        int           `json:"requiredOfficers"`
	RequiredSpecializations []string      `json:"requiredSpecializations"`
	RiskLevel               int           `json:"riskLevel"`
	Rewards                 Rewards       `json:"rewards"`
	Briefing                string        `json:"briefing"`
	Status                  MissionStatus `json:"status" enum:"Available,In Progress,Completed,Failed,Declined"`
	AssignedOfficers        []string      `json:"assignedOfficers"`
	TimeLimit               int           `json:"timeLimit,omitempty"`
	NemesisID               string        `json:"nemesisId,omitempty"`
	CreatedAt               time.Time     `json:"createdAt" format:"date-time"`
}

type MissionOption struct {
	ID                     string `json:"id"`
	Label                  string `json:"label"`
	Description            string `json:"description"`
	RiskLevel              int    `json:"riskLevel"`
	RequiredSpecialization string `json:"requiredSpecialization,omitempty"`
}

type MissionEvent struct {
	ID          string          `json:"id"`
	MissionID   string          `json:"missionId"`
	Timestamp   time.Time       `json:"timestamp" format:"date-time"`
	Description string          `json:"description"`
	Type        EventType       `json:"type" enum:"Info,Decision,Combat,Casualty,Success,Failure"`
	Options     []MissionOption `json:"options"`
	Resolved    bool            `json:"resolved"`
	Outcome     string          `json:"outcome,omitempty"`
}

// MissionResult is the debrief snapshot kept after a mission terminates.
type MissionResult struct {
	Mission    Mission  `json:"mission"`
	Success    bool     `json:"success"`
	Outcome    string   `json:"outcome"`
	Casualties []string `json:"casualties"`
	Injuries   []string `json:"injuries"`
	Rewards    Rewards  `json:"rewards"`
}

type EventRequirements struct {
	MinOfficers            int    `json:"minOfficers"`
	RequiredSpecialization string `json:"requiredSpecialization,omitempty"`
}

type EventRewards struct {
	Budget     int `json:"budget"`
	Reputation int `json:"reputation"`
}

type CommunityEvent struct {
	ID               string               `json:"id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Type             CommunityEventType   `json:"type"`
	Requirements     EventRequirements    `json:"requirements"`
	Rewards          EventRewards         `json:"rewards"`
	AssignedOfficers []string             `json:"assignedOfficers"`
	Status           CommunityEventStatus `json:"status" enum:"Available,Scheduled,Completed"`
}

type Suspect struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Crime         string        `json:"crime"`
	Personality   string        `json:"personality"`
	IntelLevel    int           `json:"intelLevel"`
	Resistance    int           `json:"resistance"`
	Status        SuspectStatus `json:"status" enum:"Custody,Interrogated,Released,Charged,Sentenced,Archived,CI"`
	IntelRevealed string        `json:"intelRevealed,omitempty"`
	TrialVerdict  string        `json:"trialVerdict,omitempty"`
	TrialSentence string        `json:"trialSentence,omitempty"`
}

type EvidenceItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	SourceMissionID string `json:"sourceMissionId"`
	SuspectID       string `json:"suspectId,omitempty"`
	Status          string `json:"status" enum:"Stored,Analyzed"`
	AnalysisReport  string `json:"analysisReport,omitempty"`
}

type District struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CrimeLevel    int    `json:"crimeLevel"`
	Status        string `json:"status" enum:"Stable,Rising,Critical"`
	ActiveKingpin string `json:"activeKingpin,omitempty"`
}

type NewsStory struct {
	ID              string    `json:"id"`
	Headline        string    `json:"headline"`
	Content         string    `json:"content"`
	Sentiment       string    `json:"sentiment" enum:"Positive,Neutral,Negative"`
	SourceMissionID string    `json:"sourceMissionId,omitempty"`
	Timestamp       time.Time `json:"timestamp" format:"date-time"`
}

// InterrogationMessage is one line of an interrogation transcript.
type InterrogationMessage struct {
	Role string `json:"role" enum:"Commander,Suspect"`
	Text string `json:"text"`
}

type RandomEffects struct {
	BudgetChange     int      `json:"budgetChange,omitempty"`
	ReputationChange int      `json:"reputationChange,omitempty"`
	MoraleChange     int      `json:"moraleChange,omitempty"`
	OfficerAffected  string   `json:"officerAffected,omitempty"`
	BonusMission     *Mission `json:"bonusMission,omitempty"`
}

type RandomEventChoice struct {
	ID      string        `json:"id"`
	Label   string        `json:"label"`
	Effects RandomEffects `json:"effects"`
	// Risk is the percent chance the choice backfires.
	Risk int `json:"risk,omitempty"`
}

type RandomEvent struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Type        RandomEventType     `json:"type"`
	Effects     RandomEffects       `json:"effects"`
	Choices     []RandomEventChoice `json:"choices,omitempty"`
	Resolved    bool                `json:"resolved"`
}

type Nemesis struct {
	ID                string        `json:"id"`
	OriginalSuspectID string        `json:"originalSuspectId"`
	Name              string        `json:"name"`
	Alias             string        `json:"alias,omitempty"`
	GrudgeLevel       int           `json:"grudgeLevel"`
	EncounterCount    int           `json:"encounterCount"`
	LastEncounter     time.Time     `json:"lastEncounter" format:"date-time"`
	Status            NemesisStatus `json:"status" enum:"At Large,Plotting,Captured,Eliminated"`
	Signature         string        `json:"signature"`
	Backstory         string        `json:"backstory"`
}

type MoraleEvent struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        MoraleEventType `json:"type"`
	Cost        int             `json:"cost"`
	MoraleBoost int             `json:"moraleBoost"`
	Duration    string          `json:"duration"`
	Icon        string          `json:"icon"`
}

type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp" format:"date-time"`
	Type      LogType   `json:"type" enum:"Info,Warning,Error,Success,Mission"`
	Message   string    `json:"message"`
}

// GameState is the aggregate root of a campaign.
type GameState struct {
	CommanderName          string           `json:"commanderName"`
	SquadName              string           `json:"squadName"`
	Officers               []Officer        `json:"officers"`
	ActiveMissions         []Mission        `json:"activeMissions"`
	CompletedMissions      []Mission        `json:"completedMissions"`
	FailedMissions         []Mission        `json:"failedMissions"`
	Reputation             int              `json:"reputation"`
	Budget                 int              `json:"budget"`
	Day                    int              `json:"day"`
	CurrentMissionEvents   []MissionEvent   `json:"currentMissionEvents"`
	GameLog                []LogEntry       `json:"gameLog"`
	LastMissionResult      *MissionResult   `json:"lastMissionResult"`
	MissionsAttemptedToday int              `json:"missionsAttemptedToday"`
	MaxMissionsPerDay      int              `json:"maxMissionsPerDay"`
	LastDismissedOfficer   *Officer         `json:"lastDismissedOfficer"`
	AvailableEvents        []CommunityEvent `json:"availableEvents"`
	SuspectsInCustody      []Suspect        `json:"suspectsInCustody"`
	EvidenceLocker         []EvidenceItem   `json:"evidenceLocker"`
	RecentNews             []NewsStory      `json:"recentNews"`
	Districts              []District       `json:"districts"`
	Nemeses                []Nemesis        `json:"nemeses"`
	PendingRandomEvent     *RandomEvent     `json:"pendingRandomEvent"`
	MoraleEvents           []MoraleEvent    `json:"moraleEvents"`
	TotalMedalsAwarded     int              `json:"totalMedalsAwarded"`
	SquadMotto             string           `json:"squadMotto,omitempty"`
	LuckyStreak            int              `json:"luckyStreak"`
	UnluckyStreak          int              `json:"unluckyStreak"`
}

// DecisionResult is the generated resolution of a tactical decision.
type DecisionResult struct {
	Outcome         string   `json:"outcome"`
	Casualties      []string `json:"casualties"`
	Injuries        []string `json:"injuries"`
	MissionComplete bool     `json:"missionComplete"`
	Success         bool     `json:"success"`
}

// UnlockedMission is the follow-up lead produced by a cracked suspect.
type UnlockedMission struct {
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Type         MissionType `json:"type"`
	RiskLevel    int         `json:"riskLevel"`
	Location     string      `json:"location"`
	RewardBudget int         `json:"rewardBudget"`
}

type InterrogationResult struct {
	Success         bool             `json:"success"`
	Intel           string           `json:"intel"`
	ReputationBonus int              `json:"reputationBonus"`
	BudgetBonus     int              `json:"budgetBonus"`
	UnlockedMission *UnlockedMission `json:"unlockedMission,omitempty"`
}

type TrialOutcome struct {
	Verdict          string `json:"verdict"`
	Sentence         string `json:"sentence"`
	ReputationImpact int    `json:"reputationImpact"`
	BudgetImpact     int    `json:"budgetImpact"`
}
