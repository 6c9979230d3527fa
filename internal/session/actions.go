package session

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"watchcommander/internal/domain"
	"watchcommander/internal/engine"
	"watchcommander/internal/gateway"
	"watchcommander/internal/savefile"
)

const (
	eulogyFallback    = "%s served with honor and distinction. End of watch."
	dismissalFallback = "%s turns in their badge and leaves the briefing room without a word."
)

// StartNewGame replaces the campaign with a fresh one. The opening community
// event is best effort.
func (s *Session) StartNewGame(ctx context.Context, commander, squad string) error {
	const action = "StartNewGame"
	if strings.TrimSpace(commander) == "" || strings.TrimSpace(squad) == "" {
		return s.done(ctx, action, engine.ErrNameRequired)
	}
	defer s.begin()()

	var events []domain.CommunityEvent
	if ev, err := s.gw.GenerateCommunityEvent(ctx, s.rules.StartingReputation); err != nil {
		s.log.WithError(err).Warn("opening community event unavailable")
	} else {
		events = append(events, ev)
	}
	st, err := s.eng.StartNewGame(commander, squad, events)
	if err != nil {
		return s.done(ctx, action, err)
	}
	s.reset(ctx, st)
	s.log.WithFields(logrus.Fields{"commander": st.CommanderName, "squad": st.SquadName}).Info("campaign started")
	return s.done(ctx, action, nil)
}

// ResetGame discards the campaign and its save.
func (s *Session) ResetGame(ctx context.Context) error {
	const action = "ResetGame"
	s.reset(ctx, s.eng.NewCampaign())
	if err := s.store.Remove(ctx, s.key); err != nil {
		return s.done(ctx, action, fmt.Errorf("remove save: %w", err))
	}
	s.log.Info("campaign reset")
	return s.done(ctx, action, nil)
}

// ExportSave serializes the current campaign.
func (s *Session) ExportSave() ([]byte, error) {
	return savefile.Encode(s.State())
}

// ImportSave replaces the campaign with an uploaded save. A rejected file
// leaves the running campaign untouched.
func (s *Session) ImportSave(ctx context.Context, data []byte) error {
	const action = "ImportSave"
	st, err := savefile.DecodeImport(data, s.now(), s.rules.MaxMissionsPerDay)
	if err != nil {
		return s.done(ctx, action, err)
	}
	s.reset(ctx, st)
	s.log.WithFields(logrus.Fields{"commander": st.CommanderName, "day": st.Day}).Info("campaign imported")
	return s.done(ctx, action, nil)
}

func (s *Session) ClearMissionResult(ctx context.Context) error {
	return s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.ClearMissionResult(st), nil
	})
}

// RecruitOfficer pays for a generated recruit. specialization may be empty.
func (s *Session) RecruitOfficer(ctx context.Context, specialization string) error {
	const action = "RecruitOfficer"
	cur := s.State()
	if err := s.eng.CanRecruit(cur); err != nil {
		return s.done(ctx, action, err)
	}
	defer s.begin()()

	o, err := s.gw.RecruitOfficer(ctx, knownNames(cur), specialization)
	if err != nil {
		return s.done(ctx, action, err)
	}
	return s.done(ctx, action, s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.RecruitOfficer(st, o)
	}))
}

func knownNames(st domain.GameState) []string {
	names := make([]string, 0, len(st.Officers)+1)
	for _, o := range st.Officers {
		names = append(names, o.Name)
	}
	if st.LastDismissedOfficer != nil {
		names = append(names, st.LastDismissedOfficer.Name)
	}
	return names
}

// DismissOfficer lets an officer go and returns their parting words.
func (s *Session) DismissOfficer(ctx context.Context, officerID, reason string) (string, error) {
	const action = "DismissOfficer"
	o, err := s.eng.CanDismiss(s.State(), officerID)
	if err != nil {
		return "", s.done(ctx, action, err)
	}
	defer s.begin()()

	line, err := s.gw.GenerateDismissalDialogue(ctx, o, reason)
	if err != nil || line == "" {
		s.log.WithError(err).Warn("dismissal dialogue unavailable")
		line = fmt.Sprintf(dismissalFallback, o.Name)
	}
	if err := s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.DismissOfficer(st, officerID, reason)
	}); err != nil {
		return "", s.done(ctx, action, err)
	}
	return line, s.done(ctx, action, nil)
}

func (s *Session) RehireLastOfficer(ctx context.Context) error {
	return s.done(ctx, "RehireLastOfficer", s.update(ctx, s.eng.RehireLastOfficer))
}

func (s *Session) HonorFallen(ctx context.Context, officerID string) error {
	return s.done(ctx, "HonorFallen", s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.HonorFallen(st, officerID)
	}))
}

// GenerateEulogy returns words for an officer's funeral, falling back to a
// stock line when generation fails.
func (s *Session) GenerateEulogy(ctx context.Context, officerID string) (string, error) {
	cur := s.State()
	o, err := s.eng.Officer(cur, officerID)
	if err != nil {
		return "", s.done(ctx, "GenerateEulogy", err)
	}
	defer s.begin()()
	text, err := s.gw.GenerateFuneralEulogy(ctx, o, cur.SquadName)
	if err != nil || text == "" {
		s.log.WithError(err).Warn("eulogy unavailable")
		text = fmt.Sprintf(eulogyFallback, o.Name)
	}
	return text, s.done(ctx, "GenerateEulogy", nil)
}

func (s *Session) UpgradeGear(ctx context.Context, officerID string, track domain.GearTrack) error {
	return s.done(ctx, "UpgradeGear", s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.UpgradeGear(st, officerID, track)
	}))
}

func (s *Session) HostMoraleEvent(ctx context.Context, eventID string) error {
	return s.done(ctx, "HostMoraleEvent", s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.HostMoraleEvent(st, eventID)
	}))
}

// GenerateMission requests a new offer. The quota is checked before the
// generator is called.
func (s *Session) GenerateMission(ctx context.Context) error {
	const action = "GenerateMission"
	cur := s.State()
	if err := s.eng.CheckMissionQuota(cur); err != nil {
		return s.done(ctx, action, err)
	}
	defer s.begin()()

	m, err := s.gw.GenerateMission(ctx, cur.Reputation, cur.Day, len(cur.Officers))
	if err != nil {
		return s.done(ctx, action, err)
	}
	return s.done(ctx, action, s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.AddMission(st, m)
	}))
}

// CreateCustomMission turns the commander's description into an offer.
func (s *Session) CreateCustomMission(ctx context.Context, description string) error {
	const action = "CreateCustomMission"
	description = strings.TrimSpace(description)
	if description == "" {
		return s.done(ctx, action, ErrDescriptionRequired)
	}
	cur := s.State()
	if err := s.eng.CheckMissionQuota(cur); err != nil {
		return s.done(ctx, action, err)
	}
	defer s.begin()()

	m, err := s.gw.GenerateCustomMission(ctx, description, cur.Reputation, len(cur.Officers))
	if err != nil {
		return s.done(ctx, action, err)
	}
	return s.done(ctx, action, s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.AddCustomMission(st, m)
	}))
}

func (s *Session) AssignOfficersToMission(ctx context.Context, missionID string, officerIDs []string) error {
	return s.done(ctx, "AssignOfficersToMission", s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.AssignOfficersToMission(st, missionID, officerIDs)
	}))
}

func (s *Session) DeclineMission(ctx context.Context, missionID string) error {
	return s.done(ctx, "DeclineMission", s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.DeclineMission(st, missionID)
	}))
}

// GenerateMissionEvent requests the next beat of an in-progress mission.
func (s *Session) GenerateMissionEvent(ctx context.Context, missionID string) error {
	const action = "GenerateMissionEvent"
	m, team, history, err := s.eng.MissionBriefing(s.State(), missionID)
	if err != nil {
		return s.done(ctx, action, err)
	}
	defer s.begin()()

	ev, err := s.gw.GenerateMissionEvent(ctx, m, team, history)
	if err != nil {
		return s.done(ctx, action, err)
	}
	return s.done(ctx, action, s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.AddMissionEvent(st, missionID, ev)
	}))
}

// MakeDecision resolves a mission event with the chosen option. optionID may
// be gateway.CustomOptionID, in which case directive is the commander's own
// order. Terminal events without options settle without the generator.
func (s *Session) MakeDecision(ctx context.Context, eventID, optionID, directive string) (engine.DecisionOutcome, error) {
	const action = "MakeDecision"
	ev, m, team, err := s.eng.DecisionContext(s.State(), eventID)
	if err != nil {
		return engine.DecisionOutcome{}, s.done(ctx, action, err)
	}

	var result domain.DecisionResult
	if len(ev.Options) == 0 && (ev.Type == domain.EventSuccess || ev.Type == domain.EventFailure) {
		result = engine.TerminalResult(ev)
	} else {
		opt, err := chooseOption(ev, optionID, directive)
		if err != nil {
			return engine.DecisionOutcome{}, s.done(ctx, action, err)
		}
		end := s.begin()
		result, err = s.gw.ResolveDecision(ctx, m, ev, opt, team)
		end()
		if err != nil {
			return engine.DecisionOutcome{}, s.done(ctx, action, err)
		}
	}

	var out engine.DecisionOutcome
	if err := s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		next, o, err := s.eng.MakeDecision(st, eventID, result)
		out = o
		return next, err
	}); err != nil {
		return engine.DecisionOutcome{}, s.done(ctx, action, err)
	}
	if out.MissionComplete {
		s.log.WithFields(logrus.Fields{"mission": out.Mission.Title, "success": out.Success}).Info("mission concluded")
	}
	if out.CaptureSuspect {
		s.captureSuspect(ctx, out.Mission)
	}
	return out, s.done(ctx, action, nil)
}

func chooseOption(ev domain.MissionEvent, optionID, directive string) (domain.MissionOption, error) {
	if optionID == gateway.CustomOptionID {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			return domain.MissionOption{}, ErrMessageRequired
		}
		return domain.MissionOption{ID: gateway.CustomOptionID, Label: directive, Description: directive, RiskLevel: 5}, nil
	}
	if len(ev.Options) == 0 {
		return domain.MissionOption{ID: "continue", Label: "Proceed", Description: "Continue with the operation.", RiskLevel: 1}, nil
	}
	i := slices.IndexFunc(ev.Options, func(o domain.MissionOption) bool { return o.ID == optionID })
	if i < 0 {
		return domain.MissionOption{}, fmt.Errorf("%w: %s", ErrOptionNotFound, optionID)
	}
	return ev.Options[i], nil
}

// captureSuspect books a suspect from a successful mission in the
// background. The result lands on whatever campaign is current on arrival,
// unless the campaign was reset or replaced in the meantime.
func (s *Session) captureSuspect(ctx context.Context, m domain.Mission) {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		sp, err := s.gw.GenerateSuspect(ctx, m)
		if err != nil {
			s.log.WithError(err).WithField("mission", m.Title).Warn("suspect escaped processing")
			return
		}
		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			s.log.WithField("suspect", sp.Name).Info("capture dropped; campaign was replaced")
			return
		}
		s.replaceLocked(ctx, s.eng.CaptureSuspect(s.state, sp))
		s.mu.Unlock()
		s.notify()
	}()
}

// AdvanceDay closes the shift. The transition itself is applied in one step
// after the configured delay; the next day's community event and a possible
// random event follow and may fail without failing the rotation.
func (s *Session) AdvanceDay(ctx context.Context) (engine.DayReport, error) {
	const action = "AdvanceDay"
	rep, err := s.rotate(ctx)
	if err != nil {
		return engine.DayReport{}, s.done(ctx, action, err)
	}
	s.metrics.RecordDay()
	s.log.WithFields(logrus.Fields{"day": rep.Day, "net": rep.NetBudget, "expired": rep.ExpiredOffers}).Info("shift rotation complete")
	s.afterDay(ctx)
	return rep, s.done(ctx, action, nil)
}

func (s *Session) rotate(ctx context.Context) (engine.DayReport, error) {
	s.mu.Lock()
	if s.advancing {
		s.mu.Unlock()
		return engine.DayReport{}, ErrDayInProgress
	}
	s.advancing = true
	s.mu.Unlock()
	s.notify()
	defer func() {
		s.mu.Lock()
		s.advancing = false
		s.mu.Unlock()
		s.notify()
	}()

	if err := sleep(ctx, s.rules.DayTransitionDelay()); err != nil {
		return engine.DayReport{}, err
	}
	var rep engine.DayReport
	err := s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		next, r, err := s.eng.AdvanceDay(st)
		rep = r
		return next, err
	})
	return rep, err
}

func (s *Session) afterDay(ctx context.Context) {
	defer s.busy()()
	cur := s.State()
	if ev, err := s.gw.GenerateCommunityEvent(ctx, cur.Reputation); err != nil {
		s.log.WithError(err).Warn("no community event for the new day")
	} else if err := s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.AddCommunityEvent(st, ev), nil
	}); err != nil {
		s.log.WithError(err).Warn("community event not posted")
	}

	if cur.PendingRandomEvent != nil || !s.eng.RollRandomEvent() {
		return
	}
	ev, err := s.gw.GenerateRandomEvent(ctx, s.State())
	if err != nil {
		s.log.WithError(err).Warn("random event lost")
		return
	}
	if err := s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.SetRandomEvent(st, ev)
	}); err != nil {
		s.log.WithError(err).Warn("random event not queued")
	}
}

// GenerateCommunityEvent adds one more community event offer for today.
func (s *Session) GenerateCommunityEvent(ctx context.Context) error {
	const action = "GenerateCommunityEvent"
	defer s.begin()()
	ev, err := s.gw.GenerateCommunityEvent(ctx, s.State().Reputation)
	if err != nil {
		return s.done(ctx, action, err)
	}
	return s.done(ctx, action, s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.AddCommunityEvent(st, ev), nil
	}))
}

func (s *Session) ScheduleEvent(ctx context.Context, eventID string, officerIDs []string) error {
	return s.done(ctx, "ScheduleEvent", s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.ScheduleEvent(st, eventID, officerIDs)
	}))
}

func (s *Session) CancelEvent(ctx context.Context, eventID string) error {
	return s.done(ctx, "CancelEvent", s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.CancelEvent(st, eventID)
	}))
}

// GenerateRandomEvent forces a random event outside the shift change.
func (s *Session) GenerateRandomEvent(ctx context.Context) error {
	const action = "GenerateRandomEvent"
	cur := s.State()
	if cur.PendingRandomEvent != nil {
		return s.done(ctx, action, engine.ErrRandomEventPending)
	}
	defer s.begin()()
	ev, err := s.gw.GenerateRandomEvent(ctx, cur)
	if err != nil {
		return s.done(ctx, action, err)
	}
	return s.done(ctx, action, s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.SetRandomEvent(st, ev)
	}))
}

func (s *Session) ResolveRandomEvent(ctx context.Context, choiceID string) (engine.RandomOutcome, error) {
	var out engine.RandomOutcome
	err := s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		next, o, err := s.eng.ResolveRandomEvent(st, choiceID)
		out = o
		return next, err
	})
	if err != nil {
		return engine.RandomOutcome{}, s.done(ctx, "ResolveRandomEvent", err)
	}
	return out, s.done(ctx, "ResolveRandomEvent", nil)
}

func (s *Session) DismissRandomEvent(ctx context.Context) error {
	return s.done(ctx, "DismissRandomEvent", s.update(ctx, s.eng.DismissRandomEvent))
}
