package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"watchcommander/internal/config"
	"watchcommander/internal/domain"
)

// Engine is the campaign reducer. Every operation takes the current state and
// returns the next one; the input snapshot is never modified, and a failed
// precondition returns the input unchanged together with an error.
type Engine struct {
	Config *config.Config
	Now    func() time.Time
	NewID  func() string
	// Rand drives injury durations and probability rolls. Nil uses the
	// package-level source.
	Rand *rand.Rand
}

func New(cfg *config.Config) Engine {
	return Engine{
		Config: cfg,
		Now:    time.Now,
		NewID:  uuid.NewString,
	}
}

var (
	ErrOfficerNotFound        = errors.New("officer not found")
	ErrMissionNotFound        = errors.New("mission not found")
	ErrEventNotFound          = errors.New("mission event not found")
	ErrCommunityEventNotFound = errors.New("community event not found")
	ErrSuspectNotFound        = errors.New("suspect not found")
	ErrNemesisNotFound        = errors.New("nemesis not found")
	ErrMoraleEventNotFound    = errors.New("morale event not found")
	ErrChoiceNotFound         = errors.New("choice not found")
	ErrNoRandomEvent          = errors.New("no random event pending")
	ErrRandomEventPending     = errors.New("a random event is already pending")
	ErrNoDismissedOfficer     = errors.New("no dismissed officer to rehire")
	ErrDispatchOverloaded     = errors.New("dispatch is currently overloaded; advance the day to receive new briefings")
	ErrNoOfficers             = errors.New("at least one officer is required")
	ErrUnresolvedEvent        = errors.New("mission already has an unresolved event")
	ErrEventResolved          = errors.New("mission event already resolved")
	ErrOfficerUnavailable     = errors.New("officer is not available")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrNameRequired           = errors.New("commander and squad names are required")
)

// InsufficientFundsError reports a purchase the budget cannot cover.
type InsufficientFundsError struct {
	Purpose string
	Need    int
	Have    int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for %s: need %s", e.Purpose, domain.FormatMoney(e.Need))
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

func (e Engine) rules() config.Rules {
	if e.Config != nil {
		return e.Config.Rules
	}
	return config.Default().Rules
}

func (e Engine) roll() float64 {
	if e.Rand != nil {
		return e.Rand.Float64()
	}
	return rand.Float64()
}

func (e Engine) intN(n int) int {
	if e.Rand != nil {
		return e.Rand.IntN(n)
	}
	return rand.IntN(n)
}

// RollRandomEvent reports whether today's shift change brings a random event.
func (e Engine) RollRandomEvent() bool {
	return e.roll() < e.rules().RandomEventChance
}

func (e Engine) appendLog(s *domain.GameState, typ domain.LogType, format string, args ...any) {
	entry := domain.LogEntry{
		ID:        e.newID(),
		Timestamp: e.now(),
		Type:      typ,
		Message:   fmt.Sprintf(format, args...),
	}
	s.GameLog = append([]domain.LogEntry{entry}, s.GameLog...)
	if len(s.GameLog) > domain.MaxLogEntries {
		s.GameLog = s.GameLog[:domain.MaxLogEntries]
	}
}

// AppendLog adds an entry to the front of the campaign log.
func (e Engine) AppendLog(s domain.GameState, typ domain.LogType, message string) domain.GameState {
	next := s.Clone()
	e.appendLog(&next, typ, "%s", message)
	return next
}

// NewCampaign returns the blank state shown before a commander takes over.
func (e Engine) NewCampaign() domain.GameState {
	r := e.rules()
	s := domain.GameState{
		Reputation:        r.StartingReputation,
		Budget:            r.StartingBudget,
		Day:               1,
		MaxMissionsPerDay: r.MaxMissionsPerDay,
	}
	domain.NormalizeState(&s, e.now(), r.MaxMissionsPerDay)
	return s
}

// StartNewGame opens a campaign for the commander. events seeds the first
// day's community event offers and may be empty.
func (e Engine) StartNewGame(commander, squad string, events []domain.CommunityEvent) (domain.GameState, error) {
	commander = strings.TrimSpace(commander)
	squad = strings.TrimSpace(squad)
	if commander == "" || squad == "" {
		return domain.GameState{}, ErrNameRequired
	}
	s := e.NewCampaign()
	s.CommanderName = commander
	s.SquadName = squad
	for _, ev := range events {
		s.AvailableEvents = append(s.AvailableEvents, e.prepareCommunityEvent(ev))
	}
	e.appendLog(&s, domain.LogInfo, "Commander %s has taken command of %s.", commander, squad)
	return s, nil
}

// ClearMissionResult drops the last debrief snapshot.
func (e Engine) ClearMissionResult(s domain.GameState) domain.GameState {
	next := s.Clone()
	next.LastMissionResult = nil
	return next
}

// Officer looks up an officer on the roster.
func (e Engine) Officer(s domain.GameState, id string) (domain.Officer, error) {
	i := officerIndex(s, id)
	if i < 0 {
		return domain.Officer{}, fmt.Errorf("%w: %s", ErrOfficerNotFound, id)
	}
	return s.Officers[i], nil
}

// CanRecruit checks the recruitment budget before any generation is requested.
func (e Engine) CanRecruit(s domain.GameState) error {
	cost := e.rules().RecruitmentCost
	if s.Budget < cost {
		return &InsufficientFundsError{Purpose: "recruitment", Need: cost, Have: s.Budget}
	}
	return nil
}

// RecruitOfficer adds a generated officer to the roster and pays the recruitment cost.
func (e Engine) RecruitOfficer(s domain.GameState, o domain.Officer) (domain.GameState, error) {
	if err := e.CanRecruit(s); err != nil {
		return s, err
	}
	next := s.Clone()
	domain.NormalizeOfficer(&o)
	if o.ID == "" {
		o.ID = e.newID()
	}
	o.Status = domain.OfficerAvailable
	o.IsInjured = false
	o.InjuryDays = 0
	next.Officers = append(next.Officers, o)
	next.Budget -= e.rules().RecruitmentCost
	e.appendLog(&next, domain.LogSuccess, "Recruited %s (%s) to the squad!", o.Name, o.Specialization)
	return next, nil
}

// CanDismiss returns the officer if they may leave the roster.
func (e Engine) CanDismiss(s domain.GameState, id string) (domain.Officer, error) {
	o, err := e.Officer(s, id)
	if err != nil {
		return domain.Officer{}, err
	}
	switch o.Status {
	case domain.OfficerKIA:
		return domain.Officer{}, fmt.Errorf("%s is KIA and cannot be dismissed: %w", o.Name, ErrOfficerUnavailable)
	case domain.OfficerOnMission, domain.OfficerOnEvent:
		return domain.Officer{}, fmt.Errorf("%s is deployed (%s) and cannot be dismissed: %w", o.Name, o.Status, ErrOfficerUnavailable)
	}
	if where, ok := engagedOfficers(s)[id]; ok {
		return domain.Officer{}, fmt.Errorf("%s is still assigned to %s: %w", o.Name, where, ErrOfficerUnavailable)
	}
	return o, nil
}

// DismissOfficer removes an officer and keeps them in the single rehire slot.
func (e Engine) DismissOfficer(s domain.GameState, id, reason string) (domain.GameState, error) {
	o, err := e.CanDismiss(s, id)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	next.Officers = slices.DeleteFunc(next.Officers, func(x domain.Officer) bool { return x.ID == id })
	next.LastDismissedOfficer = &o
	if strings.TrimSpace(reason) == "" {
		reason = "no reason given"
	}
	e.appendLog(&next, domain.LogWarning, "Dismissed %s: %s", o.Name, reason)
	return next, nil
}

// RehireLastOfficer restores the most recently dismissed officer.
func (e Engine) RehireLastOfficer(s domain.GameState) (domain.GameState, error) {
	if s.LastDismissedOfficer == nil {
		return s, ErrNoDismissedOfficer
	}
	next := s.Clone()
	o := *next.LastDismissedOfficer
	if o.Status == domain.OfficerOnMission || o.Status == domain.OfficerOnEvent {
		o.Status = domain.OfficerAvailable
	}
	next.Officers = append(next.Officers, o)
	next.LastDismissedOfficer = nil
	e.appendLog(&next, domain.LogSuccess, "Re-hired %s! Welcome back to the squad.", o.Name)
	return next, nil
}

// HonorFallen permanently retires a KIA officer from the roster.
func (e Engine) HonorFallen(s domain.GameState, id string) (domain.GameState, error) {
	o, err := e.Officer(s, id)
	if err != nil {
		return s, err
	}
	if o.Status != domain.OfficerKIA {
		return s, fmt.Errorf("%s is not KIA: %w", o.Name, ErrInvalidTransition)
	}
	if where, ok := engagedOfficers(s)[id]; ok {
		return s, fmt.Errorf("%s is still assigned to %s: %w", o.Name, where, ErrOfficerUnavailable)
	}
	next := s.Clone()
	next.Officers = slices.DeleteFunc(next.Officers, func(x domain.Officer) bool { return x.ID == id })
	e.appendLog(&next, domain.LogInfo, "%s %s was laid to rest with full honors.", o.Rank, o.Name)
	return next, nil
}

// UpgradeGear raises one gear track of an officer. Missing or KIA officers and
// maxed tracks are ignored without error.
func (e Engine) UpgradeGear(s domain.GameState, officerID string, track domain.GearTrack) (domain.GameState, error) {
	i := officerIndex(s, officerID)
	if i < 0 || s.Officers[i].Status == domain.OfficerKIA {
		return s, nil
	}
	o := s.Officers[i]
	level := o.Gear.Level(track)
	if level == 0 || level >= domain.MaxGearLevel {
		return s, nil
	}
	cost := level * 1000
	if s.Budget < cost {
		return s, &InsufficientFundsError{Purpose: string(track) + " upgrade", Need: cost, Have: s.Budget}
	}
	next := s.Clone()
	next.Budget -= cost
	next.Officers[i].Gear = o.Gear.WithLevel(track, level+1)
	e.appendLog(&next, domain.LogSuccess, "Upgraded %s's %s to Level %d.", o.Name, track, level+1)
	return next, nil
}

// HostMoraleEvent spends budget on a catalog event and lifts squad morale.
func (e Engine) HostMoraleEvent(s domain.GameState, eventID string) (domain.GameState, error) {
	idx := slices.IndexFunc(s.MoraleEvents, func(m domain.MoraleEvent) bool { return m.ID == eventID })
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrMoraleEventNotFound, eventID)
	}
	ev := s.MoraleEvents[idx]
	if s.Budget < ev.Cost {
		return s, &InsufficientFundsError{Purpose: ev.Title, Need: ev.Cost, Have: s.Budget}
	}
	next := s.Clone()
	next.Budget -= ev.Cost
	for i := range next.Officers {
		if next.Officers[i].OnDuty() {
			next.Officers[i].Morale = domain.ClampStat(next.Officers[i].Morale + ev.MoraleBoost)
		}
	}
	e.appendLog(&next, domain.LogSuccess, "%s held for %s. Squad morale +%d.", ev.Title, domain.FormatMoney(ev.Cost), ev.MoraleBoost)
	return next, nil
}

func officerIndex(s domain.GameState, id string) int {
	return slices.IndexFunc(s.Officers, func(o domain.Officer) bool { return o.ID == id })
}

func missionIndex(s domain.GameState, id string) int {
	return slices.IndexFunc(s.ActiveMissions, func(m domain.Mission) bool { return m.ID == id })
}

// engagedOfficers maps officer ids to the in-progress mission or scheduled
// event holding them.
func engagedOfficers(s domain.GameState) map[string]string {
	out := map[string]string{}
	for _, m := range s.ActiveMissions {
		if m.Status == domain.MissionInProgress {
			for _, id := range m.AssignedOfficers {
				out[id] = m.Title
			}
		}
	}
	for _, ev := range s.AvailableEvents {
		if ev.Status == domain.CommunityScheduled {
			for _, id := range ev.AssignedOfficers {
				out[id] = ev.Title
			}
		}
	}
	return out
}

// checkDeployable validates a team for a mission or event and returns the
// deduplicated ids.
func checkDeployable(s domain.GameState, ids []string) ([]string, error) {
	var team []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(team, id) {
			team = append(team, id)
		}
	}
	if len(team) == 0 {
		return nil, ErrNoOfficers
	}
	engaged := engagedOfficers(s)
	for _, id := range team {
		i := officerIndex(s, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrOfficerNotFound, id)
		}
		o := s.Officers[i]
		if !o.Assignable() {
			return nil, fmt.Errorf("%s is %s: %w", o.Name, o.Status, ErrOfficerUnavailable)
		}
		if where, ok := engaged[id]; ok {
			return nil, fmt.Errorf("%s is still assigned to %s: %w", o.Name, where, ErrOfficerUnavailable)
		}
	}
	return team, nil
}
