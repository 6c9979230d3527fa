package engine

import (
	"fmt"
	"slices"
	"strings"

	"watchcommander/internal/domain"
)

var suspectTransitions = map[domain.SuspectStatus][]domain.SuspectStatus{
	domain.SuspectCustody:      {domain.SuspectInterrogated, domain.SuspectCharged, domain.SuspectReleased, domain.SuspectCI},
	domain.SuspectInterrogated: {domain.SuspectCharged, domain.SuspectReleased, domain.SuspectCI},
	domain.SuspectCharged:      {domain.SuspectSentenced, domain.SuspectReleased, domain.SuspectCI},
	domain.SuspectSentenced:    {domain.SuspectArchived},
	domain.SuspectReleased:     {domain.SuspectArchived},
	domain.SuspectCI:           {domain.SuspectArchived},
}

func ensureSuspectTransition(sp domain.Suspect, to domain.SuspectStatus) error {
	if slices.Contains(suspectTransitions[sp.Status], to) {
		return nil
	}
	return fmt.Errorf("suspect %s: %s -> %s: %w", sp.Name, sp.Status, to, ErrInvalidTransition)
}

func suspectIndex(s domain.GameState, id string) int {
	return slices.IndexFunc(s.SuspectsInCustody, func(sp domain.Suspect) bool { return sp.ID == id })
}

// Suspect looks up a suspect held in custody.
func (e Engine) Suspect(s domain.GameState, id string) (domain.Suspect, error) {
	i := suspectIndex(s, id)
	if i < 0 {
		return domain.Suspect{}, fmt.Errorf("%w: %s", ErrSuspectNotFound, id)
	}
	return s.SuspectsInCustody[i], nil
}

// CaptureSuspect books a generated suspect into custody. It only appends, so
// it is safe to apply long after the mission that produced it.
func (e Engine) CaptureSuspect(s domain.GameState, sp domain.Suspect) domain.GameState {
	next := s.Clone()
	if sp.ID == "" {
		sp.ID = e.newID()
	}
	sp.Status = domain.SuspectCustody
	sp.IntelLevel = domain.ClampStat(sp.IntelLevel)
	sp.Resistance = domain.ClampStat(sp.Resistance)
	next.SuspectsInCustody = append(next.SuspectsInCustody, sp)
	e.appendLog(&next, domain.LogInfo, "SUSPECT APPREHENDED: %s is now in custody.", sp.Name)
	return next
}

// InterrogationSubject returns a suspect who can still be questioned.
func (e Engine) InterrogationSubject(s domain.GameState, id string) (domain.Suspect, error) {
	sp, err := e.Suspect(s, id)
	if err != nil {
		return domain.Suspect{}, err
	}
	if sp.Status != domain.SuspectCustody && sp.Status != domain.SuspectInterrogated {
		return domain.Suspect{}, fmt.Errorf("suspect %s is %s and cannot be interrogated: %w", sp.Name, sp.Status, ErrInvalidTransition)
	}
	return sp, nil
}

// MarkInterrogated records that questioning has started.
func (e Engine) MarkInterrogated(s domain.GameState, id string) (domain.GameState, error) {
	sp, err := e.InterrogationSubject(s, id)
	if err != nil {
		return s, err
	}
	if sp.Status == domain.SuspectInterrogated {
		return s, nil
	}
	next := s.Clone()
	next.SuspectsInCustody[suspectIndex(next, id)].Status = domain.SuspectInterrogated
	e.appendLog(&next, domain.LogInfo, "Interrogation of %s is underway.", sp.Name)
	return next, nil
}

// ResolveInterrogation closes questioning. A cracked suspect is charged and may
// open an intel-driven mission outside the daily quota; otherwise they walk.
func (e Engine) ResolveInterrogation(s domain.GameState, id string, res domain.InterrogationResult) (domain.GameState, error) {
	sp, err := e.InterrogationSubject(s, id)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	i := suspectIndex(next, id)
	if res.Success {
		next.SuspectsInCustody[i].Status = domain.SuspectCharged
		next.SuspectsInCustody[i].IntelRevealed = res.Intel
	} else {
		next.SuspectsInCustody[i].Status = domain.SuspectReleased
		next.SuspectsInCustody[i].IntelRevealed = ""
	}
	next.Reputation = domain.ClampStat(next.Reputation + res.ReputationBonus)
	next.Budget += res.BudgetBonus

	lead := ""
	if res.Success && res.UnlockedMission != nil {
		u := res.UnlockedMission
		m := e.prepareMission(domain.Mission{
			Title:             u.Title,
			Description:       u.Description,
			Type:              u.Type,
			Priority:          domain.PriorityHigh,
			Location:          u.Location,
			EstimatedDuration: "2-4 hours",
			RequiredOfficers:  max(2, len(next.Officers)*6/10),
			RiskLevel:         u.RiskLevel,
			Rewards: domain.Rewards{
				Experience: 150,
				Reputation: res.ReputationBonus,
				Budget:     u.RewardBudget,
			},
			Briefing: fmt.Sprintf("INTEL-DRIVEN OPERATION: Based on the interrogation of %s, we have a breakthrough. %s", sp.Name, u.Description),
		})
		next.ActiveMissions = append(next.ActiveMissions, m)
		lead = " NEW INTEL LEAD ADDED TO DISPATCH."
	}
	typ := domain.LogWarning
	if res.Success {
		typ = domain.LogSuccess
	}
	e.appendLog(&next, typ, "Interrogation of %s concluded. %s%s", sp.Name, res.Intel, lead)
	if !res.Success && res.ReputationBonus < 0 {
		e.appendLog(&next, domain.LogError, "Department reputation took a hit due to failed interrogation tactics.")
	}
	return next, nil
}

// ChargeSuspect files charges, paying court costs for a reputation gain.
func (e Engine) ChargeSuspect(s domain.GameState, id string) (domain.GameState, error) {
	sp, err := e.Suspect(s, id)
	if err != nil {
		return s, err
	}
	if err := ensureSuspectTransition(sp, domain.SuspectCharged); err != nil {
		return s, err
	}
	r := e.rules()
	next := s.Clone()
	next.SuspectsInCustody[suspectIndex(next, id)].Status = domain.SuspectCharged
	next.Budget = max(0, next.Budget-r.ChargeCost)
	next.Reputation = domain.ClampStat(next.Reputation + r.ChargeReputation)
	e.appendLog(&next, domain.LogSuccess, "Official charges filed against %s. Processing for trial.", sp.Name)
	return next, nil
}

// ReleaseSuspect lets a suspect go. Releasing without questioning costs reputation.
func (e Engine) ReleaseSuspect(s domain.GameState, id string) (domain.GameState, error) {
	sp, err := e.Suspect(s, id)
	if err != nil {
		return s, err
	}
	if err := ensureSuspectTransition(sp, domain.SuspectReleased); err != nil {
		return s, err
	}
	next := s.Clone()
	next.SuspectsInCustody[suspectIndex(next, id)].Status = domain.SuspectReleased
	if sp.Status != domain.SuspectInterrogated {
		next.Reputation = max(0, next.Reputation-e.rules().ReleasePenalty)
	}
	e.appendLog(&next, domain.LogWarning, "%s has been released due to lack of evidence.", sp.Name)
	return next, nil
}

// TrialDefendant returns a charged suspect awaiting trial.
func (e Engine) TrialDefendant(s domain.GameState, id string) (domain.Suspect, error) {
	sp, err := e.Suspect(s, id)
	if err != nil {
		return domain.Suspect{}, err
	}
	if err := ensureSuspectTransition(sp, domain.SuspectSentenced); err != nil {
		return domain.Suspect{}, err
	}
	return sp, nil
}

// ProcessTrial records a generated verdict and its consequences.
func (e Engine) ProcessTrial(s domain.GameState, id string, outcome domain.TrialOutcome) (domain.GameState, error) {
	sp, err := e.TrialDefendant(s, id)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	i := suspectIndex(next, id)
	next.SuspectsInCustody[i].Status = domain.SuspectSentenced
	next.SuspectsInCustody[i].TrialVerdict = outcome.Verdict
	next.SuspectsInCustody[i].TrialSentence = outcome.Sentence
	next.Reputation = domain.ClampStat(next.Reputation + outcome.ReputationImpact)
	next.Budget += outcome.BudgetImpact
	typ := domain.LogWarning
	if strings.EqualFold(outcome.Verdict, "Guilty") {
		typ = domain.LogSuccess
	}
	e.appendLog(&next, typ, "TRIAL CONCLUDED: %s - Verdict: %s. Sentence: %s", sp.Name, outcome.Verdict, outcome.Sentence)
	return next, nil
}

// ArchiveSuspect closes a finished case and removes it from custody.
func (e Engine) ArchiveSuspect(s domain.GameState, id string) (domain.GameState, error) {
	sp, err := e.Suspect(s, id)
	if err != nil {
		return s, err
	}
	if err := ensureSuspectTransition(sp, domain.SuspectArchived); err != nil {
		return s, err
	}
	next := s.Clone()
	next.SuspectsInCustody = slices.DeleteFunc(next.SuspectsInCustody, func(x domain.Suspect) bool { return x.ID == id })
	e.appendLog(&next, domain.LogInfo, "Suspect case file on %s archived and moved to long-term storage.", sp.Name)
	return next, nil
}

// RecruitCI turns a suspect who gave up intel into a paid informant.
func (e Engine) RecruitCI(s domain.GameState, id string) (domain.GameState, error) {
	sp, err := e.Suspect(s, id)
	if err != nil {
		return s, err
	}
	if err := ensureSuspectTransition(sp, domain.SuspectCI); err != nil {
		return s, err
	}
	if strings.TrimSpace(sp.IntelRevealed) == "" {
		return s, fmt.Errorf("suspect %s has given up no intel: %w", sp.Name, ErrInvalidTransition)
	}
	stipend := e.rules().CIStipend
	if s.Budget < stipend {
		return s, &InsufficientFundsError{Purpose: "informant stipend", Need: stipend, Have: s.Budget}
	}
	next := s.Clone()
	next.SuspectsInCustody[suspectIndex(next, id)].Status = domain.SuspectCI
	next.Budget -= stipend
	e.appendLog(&next, domain.LogSuccess, "%s flipped and now works as a confidential informant.", sp.Name)
	return next, nil
}

func nemesisIndex(s domain.GameState, id string) int {
	return slices.IndexFunc(s.Nemeses, func(n domain.Nemesis) bool { return n.ID == id })
}

// NemesisCandidate returns a released suspect who has not yet turned nemesis.
func (e Engine) NemesisCandidate(s domain.GameState, suspectID string) (domain.Suspect, error) {
	sp, err := e.Suspect(s, suspectID)
	if err != nil {
		return domain.Suspect{}, err
	}
	if sp.Status != domain.SuspectReleased {
		return domain.Suspect{}, fmt.Errorf("suspect %s is %s; only released suspects return as nemeses: %w", sp.Name, sp.Status, ErrInvalidTransition)
	}
	if slices.ContainsFunc(s.Nemeses, func(n domain.Nemesis) bool { return n.OriginalSuspectID == suspectID }) {
		return domain.Suspect{}, fmt.Errorf("suspect %s is already a nemesis: %w", sp.Name, ErrInvalidTransition)
	}
	return sp, nil
}

// CreateNemesis registers a released suspect's return as a recurring antagonist.
func (e Engine) CreateNemesis(s domain.GameState, suspectID string, n domain.Nemesis) (domain.GameState, error) {
	sp, err := e.NemesisCandidate(s, suspectID)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	if n.ID == "" {
		n.ID = e.newID()
	}
	if strings.TrimSpace(n.Name) == "" {
		n.Name = sp.Name
	}
	n.OriginalSuspectID = suspectID
	n.Status = domain.NemesisAtLarge
	n.EncounterCount = 0
	n.GrudgeLevel = domain.Clamp(n.GrudgeLevel, 1, domain.MaxGrudge)
	n.LastEncounter = e.now()
	next.Nemeses = append(next.Nemeses, n)
	e.appendLog(&next, domain.LogWarning, "%s has sworn revenge on %s. A nemesis is born.", nemesisLabel(n), next.SquadName)
	return next, nil
}

// ActiveNemesis returns a nemesis able to strike, after checking the quota.
func (e Engine) ActiveNemesis(s domain.GameState, nemesisID string) (domain.Nemesis, error) {
	i := nemesisIndex(s, nemesisID)
	if i < 0 {
		return domain.Nemesis{}, fmt.Errorf("%w: %s", ErrNemesisNotFound, nemesisID)
	}
	n := s.Nemeses[i]
	if !n.Status.Active() {
		return domain.Nemesis{}, fmt.Errorf("nemesis %s is %s: %w", n.Name, n.Status, ErrInvalidTransition)
	}
	if err := e.CheckMissionQuota(s); err != nil {
		return domain.Nemesis{}, err
	}
	return n, nil
}

// TriggerNemesisMission adds a mission orchestrated by the nemesis.
func (e Engine) TriggerNemesisMission(s domain.GameState, nemesisID string, m domain.Mission) (domain.GameState, error) {
	n, err := e.ActiveNemesis(s, nemesisID)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	m = e.prepareMission(m)
	m.NemesisID = nemesisID
	next.ActiveMissions = append(next.ActiveMissions, m)
	next.MissionsAttemptedToday++
	i := nemesisIndex(next, nemesisID)
	next.Nemeses[i].Status = domain.NemesisPlotting
	next.Nemeses[i].EncounterCount++
	next.Nemeses[i].LastEncounter = e.now()
	e.appendLog(&next, domain.LogMission, "NEMESIS STRIKES: %s is behind %s.", nemesisLabel(n), m.Title)
	return next, nil
}

func (e Engine) settleNemesis(next *domain.GameState, nemesisID string, success bool) {
	i := nemesisIndex(*next, nemesisID)
	if i < 0 {
		return
	}
	n := &next.Nemeses[i]
	if success {
		n.Status = domain.NemesisCaptured
		e.appendLog(next, domain.LogSuccess, "%s is finally behind bars.", nemesisLabel(*n))
		return
	}
	n.Status = domain.NemesisAtLarge
	n.GrudgeLevel = min(domain.MaxGrudge, n.GrudgeLevel+1)
	e.appendLog(next, domain.LogWarning, "%s slipped away and the grudge deepens.", nemesisLabel(*n))
}

func nemesisLabel(n domain.Nemesis) string {
	if n.Alias != "" {
		return fmt.Sprintf("%s \"%s\"", n.Name, n.Alias)
	}
	return n.Name
}
