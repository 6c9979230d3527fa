package server

import (
	"watchcommander/internal/domain"
	"watchcommander/internal/engine"
	"watchcommander/internal/repo"
	"watchcommander/internal/session"
)

// Request payloads

type NewCampaignRequest struct {
	CommanderName string `json:"commanderName"`
	SquadName     string `json:"squadName"`
}

type RecruitRequest struct {
	Specialization string `json:"specialization,omitempty" example:"Medic"`
}

type DismissRequest struct {
	Reason string `json:"reason,omitempty"`
}

type GearRequest struct {
	Track string `json:"track" example:"armor"`
}

type CustomMissionRequest struct {
	Description string `json:"description"`
}

type AssignRequest struct {
	OfficerIDs []string `json:"officerIds"`
}

type DecisionRequest struct {
	OptionID  string `json:"optionId"`
	Directive string `json:"directive,omitempty"`
}

type ChoiceRequest struct {
	ChoiceID string `json:"choiceId,omitempty"`
}

type InterrogateRequest struct {
	History []domain.InterrogationMessage `json:"history,omitempty"`
	Message string                        `json:"message"`
}

type TranscriptRequest struct {
	History []domain.InterrogationMessage `json:"history,omitempty"`
}

// Response payloads

type TextResponse struct {
	Text     string           `json:"text"`
	Snapshot session.Snapshot `json:"snapshot"`
}

type DecisionResponse struct {
	MissionComplete bool             `json:"missionComplete"`
	Success         bool             `json:"success"`
	Mission         domain.Mission   `json:"mission"`
	Casualties      []string         `json:"casualties"`
	Injuries        []string         `json:"injuries"`
	Snapshot        session.Snapshot `json:"snapshot"`
}

type DayResponse struct {
	Report   engine.DayReport `json:"report"`
	Snapshot session.Snapshot `json:"snapshot"`
}

type RandomOutcomeResponse struct {
	Outcome  engine.RandomOutcome `json:"outcome"`
	Snapshot session.Snapshot     `json:"snapshot"`
}

type InterrogationResponse struct {
	Result   domain.InterrogationResult `json:"result"`
	Snapshot session.Snapshot           `json:"snapshot"`
}

type TrialResponse struct {
	Outcome  domain.TrialOutcome `json:"outcome"`
	Snapshot session.Snapshot    `json:"snapshot"`
}

type paginatedJournal struct {
	Items      []repo.JournalEntry `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

func decisionResponse(out engine.DecisionOutcome, snap session.Snapshot) DecisionResponse {
	resp := DecisionResponse{
		MissionComplete: out.MissionComplete,
		Success:         out.Success,
		Mission:         out.Mission,
		Casualties:      out.Casualties,
		Injuries:        out.Injuries,
		Snapshot:        snap,
	}
	if resp.Casualties == nil {
		resp.Casualties = []string{}
	}
	if resp.Injuries == nil {
		resp.Injuries = []string{}
	}
	return resp
}
