package session

import (
	"context"
	"strings"

	"watchcommander/internal/domain"
)

// InterrogateSuspect puts one question to a suspect and returns the answer.
// The first question moves the suspect into the interrogation room.
func (s *Session) InterrogateSuspect(ctx context.Context, suspectID string, history []domain.InterrogationMessage, message string) (string, error) {
	const action = "InterrogateSuspect"
	message = strings.TrimSpace(message)
	if message == "" {
		return "", s.done(ctx, action, ErrMessageRequired)
	}
	cur := s.State()
	sp, err := s.eng.InterrogationSubject(cur, suspectID)
	if err != nil {
		return "", s.done(ctx, action, err)
	}
	defer s.begin()()

	reply, err := s.gw.InterrogateSuspectTurn(ctx, sp, cur.CommanderName, history, message)
	if err != nil {
		return "", s.done(ctx, action, err)
	}
	if err := s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.MarkInterrogated(st, suspectID)
	}); err != nil {
		return "", s.done(ctx, action, err)
	}
	return reply, s.done(ctx, action, nil)
}

// ResolveInterrogation has the transcript judged and applies the result.
func (s *Session) ResolveInterrogation(ctx context.Context, suspectID string, history []domain.InterrogationMessage) (domain.InterrogationResult, error) {
	const action = "ResolveInterrogation"
	sp, err := s.eng.InterrogationSubject(s.State(), suspectID)
	if err != nil {
		return domain.InterrogationResult{}, s.done(ctx, action, err)
	}
	defer s.begin()()

	res, err := s.gw.ResolveInterrogation(ctx, sp, history)
	if err != nil {
		return domain.InterrogationResult{}, s.done(ctx, action, err)
	}
	if err := s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.ResolveInterrogation(st, suspectID, res)
	}); err != nil {
		return domain.InterrogationResult{}, s.done(ctx, action, err)
	}
	return res, s.done(ctx, action, nil)
}

func (s *Session) ChargeSuspect(ctx context.Context, suspectID string) error {
	return s.done(ctx, "ChargeSuspect", s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.ChargeSuspect(st, suspectID)
	}))
}

func (s *Session) ReleaseSuspect(ctx context.Context, suspectID string) error {
	return s.done(ctx, "ReleaseSuspect", s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.ReleaseSuspect(st, suspectID)
	}))
}

func (s *Session) ArchiveSuspect(ctx context.Context, suspectID string) error {
	return s.done(ctx, "ArchiveSuspect", s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.ArchiveSuspect(st, suspectID)
	}))
}

func (s *Session) RecruitCI(ctx context.Context, suspectID string) error {
	return s.done(ctx, "RecruitCI", s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.RecruitCI(st, suspectID)
	}))
}

// ProcessTrial takes a charged suspect to court.
func (s *Session) ProcessTrial(ctx context.Context, suspectID string) (domain.TrialOutcome, error) {
	const action = "ProcessTrial"
	cur := s.State()
	sp, err := s.eng.TrialDefendant(cur, suspectID)
	if err != nil {
		return domain.TrialOutcome{}, s.done(ctx, action, err)
	}
	defer s.begin()()

	outcome, err := s.gw.GenerateTrialOutcome(ctx, sp, cur.CommanderName)
	if err != nil {
		return domain.TrialOutcome{}, s.done(ctx, action, err)
	}
	if err := s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.ProcessTrial(st, suspectID, outcome)
	}); err != nil {
		return domain.TrialOutcome{}, s.done(ctx, action, err)
	}
	return outcome, s.done(ctx, action, nil)
}

// CreateNemesis turns a released suspect into a recurring antagonist.
func (s *Session) CreateNemesis(ctx context.Context, suspectID string) error {
	const action = "CreateNemesis"
	cur := s.State()
	sp, err := s.eng.NemesisCandidate(cur, suspectID)
	if err != nil {
		return s.done(ctx, action, err)
	}
	defer s.begin()()

	n, err := s.gw.GenerateNemesis(ctx, sp, cur.SquadName)
	if err != nil {
		return s.done(ctx, action, err)
	}
	return s.done(ctx, action, s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.CreateNemesis(st, suspectID, n)
	}))
}

// TriggerNemesisMission puts a nemesis-orchestrated mission on the board.
// It counts against the daily quota.
func (s *Session) TriggerNemesisMission(ctx context.Context, nemesisID string) error {
	const action = "TriggerNemesisMission"
	cur := s.State()
	n, err := s.eng.ActiveNemesis(cur, nemesisID)
	if err != nil {
		return s.done(ctx, action, err)
	}
	defer s.begin()()

	m, err := s.gw.GenerateNemesisMission(ctx, n, cur.Reputation, len(cur.Officers))
	if err != nil {
		return s.done(ctx, action, err)
	}
	return s.done(ctx, action, s.update(ctx, func(st domain.GameState) (domain.GameState, error) {
		return s.eng.TriggerNemesisMission(st, nemesisID, m)
	}))
}
