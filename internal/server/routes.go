package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"watchcommander/internal/domain"
	"watchcommander/internal/session"
)

type output[T any] struct {
	Body T `json:"body"`
}

type idPath struct {
	ID string `path:"id"`
}

// action registers an operation that mutates the campaign and answers with
// the resulting snapshot.
func action[I any](api huma.API, s *session.Session, op huma.Operation, run func(context.Context, *I) error) {
	if op.Method == "" {
		op.Method = http.MethodPost
	}
	huma.Register(api, op, func(ctx context.Context, in *I) (*output[session.Snapshot], error) {
		if err := run(ctx, in); err != nil {
			return nil, handleError(err)
		}
		return &output[session.Snapshot]{Body: s.Snapshot()}, nil
	})
}

func registerCampaign(api huma.API, s *session.Session) {
	huma.Register(api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/state",
		Summary:     "Current campaign with loading, day-advance and error observables",
	}, func(ctx context.Context, _ *struct{}) (*output[session.Snapshot], error) {
		return &output[session.Snapshot]{Body: s.Snapshot()}, nil
	})

	action(api, s, huma.Operation{
		OperationID: "start-campaign",
		Path:        "/campaign",
		Summary:     "Start a new campaign",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, in *struct {
		Body NewCampaignRequest `json:"body"`
	}) error {
		return s.StartNewGame(ctx, in.Body.CommanderName, in.Body.SquadName)
	})

	action(api, s, huma.Operation{
		OperationID: "reset-campaign",
		Method:      http.MethodDelete,
		Path:        "/campaign",
		Summary:     "Discard the campaign and its save",
	}, func(ctx context.Context, _ *struct{}) error {
		return s.ResetGame(ctx)
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-save",
		Method:      http.MethodGet,
		Path:        "/campaign/export",
		Summary:     "Download the campaign as a save file",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		ContentType        string `header:"Content-Type"`
		ContentDisposition string `header:"Content-Disposition"`
		Body               []byte
	}, error) {
		data, err := s.ExportSave()
		if err != nil {
			return nil, handleError(err)
		}
		st := s.State()
		return &struct {
			ContentType        string `header:"Content-Type"`
			ContentDisposition string `header:"Content-Disposition"`
			Body               []byte
		}{
			ContentType:        "application/json",
			ContentDisposition: fmt.Sprintf(`attachment; filename="swat-day-%d.json"`, st.Day),
			Body:               data,
		}, nil
	})

	action(api, s, huma.Operation{
		OperationID: "import-save",
		Path:        "/campaign/import",
		Summary:     "Replace the campaign with an uploaded save file",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, in *struct {
		RawBody []byte
	}) error {
		return s.ImportSave(ctx, in.RawBody)
	})

	action(api, s, huma.Operation{
		OperationID: "clear-error",
		Path:        "/campaign/clear-error",
		Summary:     "Empty the error slot",
	}, func(ctx context.Context, _ *struct{}) error {
		s.ClearError()
		return nil
	})

	action(api, s, huma.Operation{
		OperationID: "clear-mission-result",
		Path:        "/campaign/clear-result",
		Summary:     "Dismiss the last mission result",
	}, func(ctx context.Context, _ *struct{}) error {
		return s.ClearMissionResult(ctx)
	})
}

func registerJournal(api huma.API, j Journal, saveKey string) {
	if j == nil {
		return
	}
	huma.Register(api, huma.Operation{
		OperationID: "list-journal",
		Method:      http.MethodGet,
		Path:        "/campaign/journal",
		Summary:     "List save history, newest first",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Type   string `query:"type" enum:"campaign.saved,campaign.removed"`
		Limit  int    `query:"limit" default:"50"`
		Cursor string `query:"cursor"`
	}) (*output[paginatedJournal], error) {
		limit := normalizeLimit(input.Limit)
		var cursorID int64
		if input.Cursor != "" {
			parsed, err := strconv.ParseInt(input.Cursor, 10, 64)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid cursor", map[string]any{"cursor": input.Cursor})
			}
			cursorID = parsed
		}
		items, err := j.Journal(ctx, limit+1, cursorID, saveKey, input.Type)
		if err != nil {
			return nil, handleError(err)
		}
		resp := paginatedJournal{Items: items}
		if len(items) > limit {
			resp.NextCursor = strconv.FormatInt(items[limit-1].ID, 10)
			resp.Items = items[:limit]
		}
		return &output[paginatedJournal]{Body: resp}, nil
	})
}

func registerRoster(api huma.API, s *session.Session) {
	action(api, s, huma.Operation{
		OperationID: "recruit-officer",
		Path:        "/officers",
		Summary:     "Recruit an officer",
		Errors:      []int{http.StatusConflict, http.StatusBadGateway},
	}, func(ctx context.Context, in *struct {
		Body RecruitRequest `json:"body"`
	}) error {
		return s.RecruitOfficer(ctx, in.Body.Specialization)
	})

	huma.Register(api, huma.Operation{
		OperationID: "dismiss-officer",
		Method:      http.MethodPost,
		Path:        "/officers/{id}/dismiss",
		Summary:     "Dismiss an officer and hear their parting words",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, in *struct {
		ID   string         `path:"id"`
		Body DismissRequest `json:"body"`
	}) (*output[TextResponse], error) {
		line, err := s.DismissOfficer(ctx, in.ID, in.Body.Reason)
		if err != nil {
			return nil, handleError(err)
		}
		return &output[TextResponse]{Body: TextResponse{Text: line, Snapshot: s.Snapshot()}}, nil
	})

	action(api, s, huma.Operation{
		OperationID: "rehire-officer",
		Path:        "/officers/rehire",
		Summary:     "Bring back the last dismissed officer",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, _ *struct{}) error {
		return s.RehireLastOfficer(ctx)
	})

	action(api, s, huma.Operation{
		OperationID: "honor-fallen",
		Path:        "/officers/{id}/honor",
		Summary:     "Move a fallen officer to the memorial",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, in *idPath) error {
		return s.HonorFallen(ctx, in.ID)
	})

	huma.Register(api, huma.Operation{
		OperationID: "generate-eulogy",
		Method:      http.MethodPost,
		Path:        "/officers/{id}/eulogy",
		Summary:     "Write a eulogy for a fallen officer",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, in *idPath) (*output[TextResponse], error) {
		text, err := s.GenerateEulogy(ctx, in.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &output[TextResponse]{Body: TextResponse{Text: text, Snapshot: s.Snapshot()}}, nil
	})

	action(api, s, huma.Operation{
		OperationID: "upgrade-gear",
		Path:        "/officers/{id}/gear",
		Summary:     "Upgrade one gear track",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, in *struct {
		ID   string      `path:"id"`
		Body GearRequest `json:"body"`
	}) error {
		track, ok := domain.ParseGearTrack(in.Body.Track)
		if !ok {
			return newAPIError(http.StatusBadRequest, "bad_request", "unknown gear track", map[string]any{"track": in.Body.Track})
		}
		return s.UpgradeGear(ctx, in.ID, track)
	})

	action(api, s, huma.Operation{
		OperationID: "host-morale-event",
		Path:        "/morale-events/{id}/host",
		Summary:     "Spend budget on a morale event",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, in *idPath) error {
		return s.HostMoraleEvent(ctx, in.ID)
	})
}

func registerMissions(api huma.API, s *session.Session) {
	action(api, s, huma.Operation{
		OperationID: "generate-mission",
		Path:        "/missions",
		Summary:     "Request a briefing from dispatch",
		Errors:      []int{http.StatusTooManyRequests, http.StatusBadGateway},
	}, func(ctx context.Context, _ *struct{}) error {
		return s.GenerateMission(ctx)
	})

	action(api, s, huma.Operation{
		OperationID: "create-custom-mission",
		Path:        "/missions/custom",
		Summary:     "Turn a description into a mission",
		Errors:      []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusBadGateway},
	}, func(ctx context.Context, in *struct {
		Body CustomMissionRequest `json:"body"`
	}) error {
		return s.CreateCustomMission(ctx, in.Body.Description)
	})

	action(api, s, huma.Operation{
		OperationID: "assign-officers",
		Path:        "/missions/{id}/assign",
		Summary:     "Deploy officers on a mission",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, in *struct {
		ID   string        `path:"id"`
		Body AssignRequest `json:"body"`
	}) error {
		return s.AssignOfficersToMission(ctx, in.ID, in.Body.OfficerIDs)
	})

	action(api, s, huma.Operation{
		OperationID: "decline-mission",
		Path:        "/missions/{id}/decline",
		Summary:     "Turn a mission down",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, in *idPath) error {
		return s.DeclineMission(ctx, in.ID)
	})

	action(api, s, huma.Operation{
		OperationID: "generate-mission-event",
		Path:        "/missions/{id}/events",
		Summary:     "Advance a deployed mission to its next event",
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusBadGateway},
	}, func(ctx context.Context, in *idPath) error {
		return s.GenerateMissionEvent(ctx, in.ID)
	})

	huma.Register(api, huma.Operation{
		OperationID: "make-decision",
		Method:      http.MethodPost,
		Path:        "/mission-events/{id}/decision",
		Summary:     "Choose how the squad responds to an event",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusBadGateway},
	}, func(ctx context.Context, in *struct {
		ID   string          `path:"id"`
		Body DecisionRequest `json:"body"`
	}) (*output[DecisionResponse], error) {
		out, err := s.MakeDecision(ctx, in.ID, in.Body.OptionID, in.Body.Directive)
		if err != nil {
			return nil, handleError(err)
		}
		return &output[DecisionResponse]{Body: decisionResponse(out, s.Snapshot())}, nil
	})
}

func registerDay(api huma.API, s *session.Session) {
	huma.Register(api, huma.Operation{
		OperationID: "advance-day",
		Method:      http.MethodPost,
		Path:        "/day/advance",
		Summary:     "End the shift",
		Errors:      []int{http.StatusConflict},
	}, func(ctx context.Context, _ *struct{}) (*output[DayResponse], error) {
		report, err := s.AdvanceDay(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &output[DayResponse]{Body: DayResponse{Report: report, Snapshot: s.Snapshot()}}, nil
	})

	action(api, s, huma.Operation{
		OperationID: "generate-community-event",
		Path:        "/community-events",
		Summary:     "Request a community event",
		Errors:      []int{http.StatusBadGateway},
	}, func(ctx context.Context, _ *struct{}) error {
		return s.GenerateCommunityEvent(ctx)
	})

	action(api, s, huma.Operation{
		OperationID: "schedule-community-event",
		Path:        "/community-events/{id}/schedule",
		Summary:     "Send officers to a community event",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, in *struct {
		ID   string        `path:"id"`
		Body AssignRequest `json:"body"`
	}) error {
		return s.ScheduleEvent(ctx, in.ID, in.Body.OfficerIDs)
	})

	action(api, s, huma.Operation{
		OperationID: "cancel-community-event",
		Path:        "/community-events/{id}/cancel",
		Summary:     "Cancel a scheduled community event",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, in *idPath) error {
		return s.CancelEvent(ctx, in.ID)
	})

	action(api, s, huma.Operation{
		OperationID: "generate-random-event",
		Path:        "/random-event",
		Summary:     "Draw a random event",
		Errors:      []int{http.StatusConflict, http.StatusBadGateway},
	}, func(ctx context.Context, _ *struct{}) error {
		return s.GenerateRandomEvent(ctx)
	})

	huma.Register(api, huma.Operation{
		OperationID: "resolve-random-event",
		Method:      http.MethodPost,
		Path:        "/random-event/resolve",
		Summary:     "Answer the pending random event",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, in *struct {
		Body ChoiceRequest `json:"body"`
	}) (*output[RandomOutcomeResponse], error) {
		out, err := s.ResolveRandomEvent(ctx, in.Body.ChoiceID)
		if err != nil {
			return nil, handleError(err)
		}
		return &output[RandomOutcomeResponse]{Body: RandomOutcomeResponse{Outcome: out, Snapshot: s.Snapshot()}}, nil
	})

	action(api, s, huma.Operation{
		OperationID: "dismiss-random-event",
		Method:      http.MethodDelete,
		Path:        "/random-event",
		Summary:     "Ignore the pending random event",
	}, func(ctx context.Context, _ *struct{}) error {
		return s.DismissRandomEvent(ctx)
	})
}

func registerCustody(api huma.API, s *session.Session) {
	huma.Register(api, huma.Operation{
		OperationID: "interrogate-suspect",
		Method:      http.MethodPost,
		Path:        "/suspects/{id}/interrogate",
		Summary:     "Put one question to a suspect",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusBadGateway},
	}, func(ctx context.Context, in *struct {
		ID   string             `path:"id"`
		Body InterrogateRequest `json:"body"`
	}) (*output[TextResponse], error) {
		reply, err := s.InterrogateSuspect(ctx, in.ID, in.Body.History, in.Body.Message)
		if err != nil {
			return nil, handleError(err)
		}
		return &output[TextResponse]{Body: TextResponse{Text: reply, Snapshot: s.Snapshot()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "resolve-interrogation",
		Method:      http.MethodPost,
		Path:        "/suspects/{id}/interrogation/resolve",
		Summary:     "Conclude an interrogation",
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusBadGateway},
	}, func(ctx context.Context, in *struct {
		ID   string            `path:"id"`
		Body TranscriptRequest `json:"body"`
	}) (*output[InterrogationResponse], error) {
		res, err := s.ResolveInterrogation(ctx, in.ID, in.Body.History)
		if err != nil {
			return nil, handleError(err)
		}
		return &output[InterrogationResponse]{Body: InterrogationResponse{Result: res, Snapshot: s.Snapshot()}}, nil
	})

	for _, t := range []struct {
		id, path, summary string
		run               func(context.Context, string) error
	}{
		{"charge-suspect", "/suspects/{id}/charge", "File charges", s.ChargeSuspect},
		{"release-suspect", "/suspects/{id}/release", "Release a suspect", s.ReleaseSuspect},
		{"archive-suspect", "/suspects/{id}/archive", "Archive a closed case", s.ArchiveSuspect},
		{"recruit-ci", "/suspects/{id}/recruit-ci", "Turn a suspect into a confidential informant", s.RecruitCI},
		{"create-nemesis", "/suspects/{id}/nemesis", "Let a released suspect return as a nemesis", s.CreateNemesis},
		{"trigger-nemesis-mission", "/nemeses/{id}/missions", "Put a nemesis operation on the board", s.TriggerNemesisMission},
	} {
		run := t.run
		action(api, s, huma.Operation{
			OperationID: t.id,
			Path:        t.path,
			Summary:     t.summary,
			Errors:      []int{http.StatusNotFound, http.StatusConflict},
		}, func(ctx context.Context, in *idPath) error {
			return run(ctx, in.ID)
		})
	}

	huma.Register(api, huma.Operation{
		OperationID: "process-trial",
		Method:      http.MethodPost,
		Path:        "/suspects/{id}/trial",
		Summary:     "Take a charged suspect to court",
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusBadGateway},
	}, func(ctx context.Context, in *idPath) (*output[TrialResponse], error) {
		out, err := s.ProcessTrial(ctx, in.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &output[TrialResponse]{Body: TrialResponse{Outcome: out, Snapshot: s.Snapshot()}}, nil
	})
}
