package gateway

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"watchcommander/internal/domain"
)

// Generated payloads are loosely typed: numbers may arrive as strings or
// floats, arrays may be missing. Everything is read through gjson and clamped
// before it becomes a domain value.

func str(r gjson.Result, path string) string {
	return strings.TrimSpace(r.Get(path).String())
}

// num reads a number, rounding floats. Missing or unparsable values return def.
func num(r gjson.Result, path string, def int) int {
	v := r.Get(path)
	switch v.Type {
	case gjson.Number:
		return int(math.Round(v.Float()))
	case gjson.String:
		var f float64
		if _, err := fmt.Sscan(strings.TrimSpace(v.Str), &f); err == nil {
			return int(math.Round(f))
		}
	}
	return def
}

// risk reads a 1-10 risk level where a missing or zero value means 5.
func risk(r gjson.Result, path string) int {
	v := num(r, path, 5)
	if v == 0 {
		v = 5
	}
	return domain.Clamp(v, 1, 10)
}

func flag(r gjson.Result, path string) bool {
	v := r.Get(path)
	if v.Type == gjson.String {
		return strings.EqualFold(strings.TrimSpace(v.Str), "true")
	}
	return v.Bool()
}

func strList(r gjson.Result, path string) []string {
	out := []string{}
	v := r.Get(path)
	if v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
		return append(out, strings.TrimSpace(v.Str))
	}
	for _, item := range v.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func required(r gjson.Result, paths ...string) error {
	if !r.IsObject() {
		return fmt.Errorf("%w: expected an object", ErrSchema)
	}
	for _, p := range paths {
		if str(r, p) == "" {
			return fmt.Errorf("%w: missing %q", ErrSchema, p)
		}
	}
	return nil
}

func decodeOfficer(r gjson.Result, id string) (domain.Officer, error) {
	if err := required(r, "name"); err != nil {
		return domain.Officer{}, err
	}
	o := domain.Officer{
		ID:             id,
		Name:           str(r, "name"),
		Nickname:       str(r, "nickname"),
		Rank:           domain.Rank(str(r, "rank")),
		Specialization: domain.Specialization(str(r, "specialization")),
		Experience:     num(r, "experience", 0),
		Morale:         num(r, "morale", 75),
		Health:         num(r, "health", 100),
		Skills: domain.Skills{
			Marksmanship: num(r, "skills.marksmanship", 50),
			Tactics:      num(r, "skills.tactics", 50),
			Fitness:      num(r, "skills.fitness", 50),
			Leadership:   num(r, "skills.leadership", 50),
			Composure:    num(r, "skills.composure", 50),
		},
		Status:    domain.OfficerAvailable,
		Backstory: str(r, "backstory"),
		Gear:      domain.Gear{ArmorLevel: 1, WeaponLevel: 1, UtilityLevel: 1},
		Medals:    []string{},
	}
	domain.NormalizeOfficer(&o)
	o.Salary = domain.CalculateSalary(o.Rank)
	return o, nil
}

type missionBounds struct {
	types         []domain.MissionType
	defaultType   domain.MissionType
	minReputation int
	maxReputation int
}

var (
	standardBounds = missionBounds{domain.StandardMissionTypes, domain.MissionHighRiskWarrant, 0, 100}
	customBounds   = missionBounds{domain.MissionTypes, domain.MissionCustomOperation, -50, 50}
	nemesisBounds  = missionBounds{domain.StandardMissionTypes, domain.MissionHighRiskWarrant, -50, 50}
)

func decodeMission(r gjson.Result, id string, now time.Time, b missionBounds) (domain.Mission, error) {
	if err := required(r, "title"); err != nil {
		return domain.Mission{}, err
	}
	typ, ok := domain.Match(str(r, "type"), b.types)
	if !ok {
		typ = b.defaultType
	}
	m := domain.Mission{
		ID:                      id,
		Title:                   str(r, "title"),
		Description:             str(r, "description"),
		Type:                    typ,
		Priority:                domain.Priority(str(r, "priority")),
		Location:                str(r, "location"),
		EstimatedDuration:       str(r, "estimatedDuration"),
		RequiredOfficers:        domain.Clamp(num(r, "requiredOfficers", 4), 1, 8),
		RequiredSpecializations: strList(r, "requiredSpecializations"),
		RiskLevel:               risk(r, "riskLevel"),
		Rewards: domain.Rewards{
			Experience: max(0, num(r, "rewards.experience", 50)),
			Reputation: domain.Clamp(num(r, "rewards.reputation", 5), b.minReputation, b.maxReputation),
			Budget:     max(0, num(r, "rewards.budget", 5000)),
		},
		Briefing:         str(r, "briefing"),
		Status:           domain.MissionAvailable,
		AssignedOfficers: []string{},
		CreatedAt:        now,
	}
	if m.EstimatedDuration == "" {
		m.EstimatedDuration = "1-3 hours"
	}
	domain.NormalizeMission(&m, now)
	return m, nil
}

func decodeMissionEvent(r gjson.Result, id, missionID string, now time.Time) (domain.MissionEvent, error) {
	if err := required(r, "description"); err != nil {
		return domain.MissionEvent{}, err
	}
	typ, ok := domain.Match(str(r, "type"), domain.EventTypes)
	if !ok {
		typ = domain.EventDecision
	}
	ev := domain.MissionEvent{
		ID:          id,
		MissionID:   missionID,
		Timestamp:   now,
		Description: str(r, "description"),
		Type:        typ,
		Options:     []domain.MissionOption{},
	}
	for i, opt := range r.Get("options").Array() {
		label := str(opt, "label")
		if label == "" {
			continue
		}
		optID := str(opt, "id")
		if optID == "" || optID == CustomOptionID {
			optID = fmt.Sprintf("option%d", i+1)
		}
		spec := str(opt, "requiredSpecialization")
		if s, ok := domain.Match(spec, domain.Specializations); ok {
			spec = string(s)
		} else {
			spec = ""
		}
		ev.Options = append(ev.Options, domain.MissionOption{
			ID:                     optID,
			Label:                  label,
			Description:            str(opt, "description"),
			RiskLevel:              risk(opt, "riskLevel"),
			RequiredSpecialization: spec,
		})
	}
	return ev, nil
}

func decodeDecision(r gjson.Result) (domain.DecisionResult, error) {
	if err := required(r, "outcome"); err != nil {
		return domain.DecisionResult{}, err
	}
	res := domain.DecisionResult{
		Outcome:         str(r, "outcome"),
		Casualties:      strList(r, "casualties"),
		Injuries:        strList(r, "injuries"),
		MissionComplete: flag(r, "missionComplete"),
	}
	res.Success = res.MissionComplete && flag(r, "success")
	return res, nil
}

func decodeCommunityEvent(r gjson.Result, id string) (domain.CommunityEvent, error) {
	if err := required(r, "title"); err != nil {
		return domain.CommunityEvent{}, err
	}
	typ, ok := domain.Match(str(r, "type"), domain.CommunityEventTypes)
	if !ok {
		typ = domain.CommunityCharity
	}
	spec := ""
	if s, ok := domain.Match(str(r, "requirements.requiredSpecialization"), domain.Specializations); ok {
		spec = string(s)
	}
	return domain.CommunityEvent{
		ID:          id,
		Title:       str(r, "title"),
		Description: str(r, "description"),
		Type:        typ,
		Requirements: domain.EventRequirements{
			MinOfficers:            domain.Clamp(num(r, "requirements.minOfficers", 1), 1, 4),
			RequiredSpecialization: spec,
		},
		Rewards: domain.EventRewards{
			Budget:     domain.Clamp(num(r, "rewards.budget", 1000), 0, 50000),
			Reputation: domain.Clamp(num(r, "rewards.reputation", 2), 0, 20),
		},
		AssignedOfficers: []string{},
		Status:           domain.CommunityAvailable,
	}, nil
}

func decodeSuspect(r gjson.Result, id string) (domain.Suspect, error) {
	if err := required(r, "name"); err != nil {
		return domain.Suspect{}, err
	}
	return domain.Suspect{
		ID:          id,
		Name:        str(r, "name"),
		Crime:       str(r, "crime"),
		Personality: str(r, "personality"),
		IntelLevel:  domain.ClampStat(num(r, "intelLevel", 50)),
		Resistance:  domain.ClampStat(num(r, "resistance", 50)),
		Status:      domain.SuspectCustody,
	}, nil
}

func decodeInterrogation(r gjson.Result) (domain.InterrogationResult, error) {
	if err := required(r, "intel"); err != nil {
		return domain.InterrogationResult{}, err
	}
	res := domain.InterrogationResult{
		Success:         flag(r, "success"),
		Intel:           str(r, "intel"),
		ReputationBonus: domain.Clamp(num(r, "reputationBonus", 0), -15, 15),
		BudgetBonus:     domain.Clamp(num(r, "budgetBonus", 0), 0, 50000),
	}
	u := r.Get("unlockedMission")
	if res.Success && u.IsObject() && str(u, "title") != "" {
		typ, ok := domain.Match(str(u, "type"), domain.StandardMissionTypes)
		if !ok {
			typ = domain.MissionHighRiskWarrant
		}
		res.UnlockedMission = &domain.UnlockedMission{
			Title:        str(u, "title"),
			Description:  str(u, "description"),
			Type:         typ,
			RiskLevel:    risk(u, "riskLevel"),
			Location:     str(u, "location"),
			RewardBudget: domain.Clamp(num(u, "rewardBudget", 10000), 0, 100000),
		}
	}
	return res, nil
}

var verdicts = []string{"Guilty", "Not Guilty", "Case Dismissed"}

func decodeTrial(r gjson.Result) (domain.TrialOutcome, error) {
	if err := required(r, "verdict"); err != nil {
		return domain.TrialOutcome{}, err
	}
	verdict, ok := domain.Match(str(r, "verdict"), verdicts)
	if !ok {
		verdict = str(r, "verdict")
	}
	sentence := str(r, "sentence")
	if sentence == "" {
		sentence = "None"
	}
	return domain.TrialOutcome{
		Verdict:          verdict,
		Sentence:         sentence,
		ReputationImpact: domain.Clamp(num(r, "reputationImpact", 0), -10, 20),
		BudgetImpact:     domain.Clamp(num(r, "budgetImpact", 0), -5000, 15000),
	}, nil
}

// decodeEffects resolves officerAffected from a generated name to a roster id.
func decodeEffects(r gjson.Result, officers []domain.Officer, newID func() string, now time.Time) domain.RandomEffects {
	fx := domain.RandomEffects{
		BudgetChange:     domain.Clamp(num(r, "budgetChange", 0), -25000, 25000),
		ReputationChange: domain.Clamp(num(r, "reputationChange", 0), -20, 20),
		MoraleChange:     domain.Clamp(num(r, "moraleChange", 0), -30, 30),
	}
	if name := str(r, "officerAffected"); name != "" {
		for _, o := range officers {
			if o.OnDuty() && (domain.NameMatches(name, o.Name) || o.ID == name) {
				fx.OfficerAffected = o.ID
				break
			}
		}
	}
	if bm := r.Get("bonusMission"); bm.IsObject() {
		if m, err := decodeMission(bm, newID(), now, standardBounds); err == nil {
			fx.BonusMission = &m
		}
	}
	return fx
}

func decodeRandomEvent(r gjson.Result, id string, officers []domain.Officer, newID func() string, now time.Time) (domain.RandomEvent, error) {
	if err := required(r, "title"); err != nil {
		return domain.RandomEvent{}, err
	}
	typ, ok := domain.Match(str(r, "type"), domain.RandomEventTypes)
	if !ok {
		typ = domain.RandomChaos
	}
	ev := domain.RandomEvent{
		ID:          id,
		Title:       str(r, "title"),
		Description: str(r, "description"),
		Type:        typ,
		Effects:     decodeEffects(r.Get("effects"), officers, newID, now),
	}
	for i, c := range r.Get("choices").Array() {
		label := str(c, "label")
		if label == "" {
			continue
		}
		cid := str(c, "id")
		if cid == "" {
			cid = fmt.Sprintf("choice%d", i+1)
		}
		ev.Choices = append(ev.Choices, domain.RandomEventChoice{
			ID:      cid,
			Label:   label,
			Effects: decodeEffects(c.Get("effects"), officers, newID, now),
			Risk:    domain.Clamp(num(c, "risk", 0), 0, 100),
		})
	}
	return ev, nil
}

func decodeNemesis(r gjson.Result, id string, sp domain.Suspect, now time.Time) (domain.Nemesis, error) {
	if !r.IsObject() {
		return domain.Nemesis{}, fmt.Errorf("%w: expected an object", ErrSchema)
	}
	name := str(r, "name")
	if name == "" {
		name = sp.Name
	}
	alias := str(r, "alias")
	if alias == "" && str(r, "signature") == "" {
		return domain.Nemesis{}, fmt.Errorf("%w: missing %q", ErrSchema, "alias")
	}
	return domain.Nemesis{
		ID:                id,
		OriginalSuspectID: sp.ID,
		Name:              name,
		Alias:             alias,
		GrudgeLevel:       domain.Clamp(num(r, "grudgeLevel", 5), 1, domain.MaxGrudge),
		EncounterCount:    0,
		LastEncounter:     now,
		Status:            domain.NemesisAtLarge,
		Signature:         str(r, "signature"),
		Backstory:         str(r, "backstory"),
	}, nil
}
