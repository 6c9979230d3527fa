// Package gateway turns campaign requests into calls against the text
// generation service and turns its replies into validated domain values.
package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"watchcommander/internal/domain"
	"watchcommander/internal/metrics"
)

// Request names, used in errors, logs and metrics.
const (
	ReqRecruitOfficer         = "RecruitOfficer"
	ReqGenerateMission        = "GenerateMission"
	ReqGenerateMissionEvent   = "GenerateMissionEvent"
	ReqResolveDecision        = "ResolveDecision"
	ReqGenerateCommunityEvent = "GenerateCommunityEvent"
	ReqGenerateCustomMission  = "GenerateCustomMission"
	ReqGenerateSuspect        = "GenerateSuspect"
	ReqInterrogateSuspectTurn = "InterrogateSuspectTurn"
	ReqResolveInterrogation   = "ResolveInterrogation"
	ReqGenerateTrialOutcome   = "GenerateTrialOutcome"
	ReqGenerateRandomEvent    = "GenerateRandomEvent"
	ReqGenerateNemesis        = "GenerateNemesis"
	ReqGenerateNemesisMission = "GenerateNemesisMission"
	ReqGenerateFuneralEulogy  = "GenerateFuneralEulogy"
	ReqGenerateDismissal      = "GenerateDismissalDialogue"
)

const (
	conversationTemperature = 0.9
	trialTemperature        = 0.7
)

type Options struct {
	Extractor Extractor
	Logger    logrus.FieldLogger
	Metrics   *metrics.Collector
	// Temperature is used by every structured request. Zero means 0.8.
	Temperature float64
	// Timeout bounds each call on top of the caller's context. Zero means no
	// extra bound.
	Timeout time.Duration
	NewID   func() string
	Now     func() time.Time
}

// Gateway is stateless: each call is independent and safe for concurrent use.
type Gateway struct {
	gen         Generator
	extract     Extractor
	log         logrus.FieldLogger
	metrics     *metrics.Collector
	temperature float64
	timeout     time.Duration
	newID       func() string
	now         func() time.Time
}

func New(gen Generator, opts Options) *Gateway {
	g := &Gateway{
		gen:         gen,
		extract:     opts.Extractor,
		log:         opts.Logger,
		metrics:     opts.Metrics,
		temperature: opts.Temperature,
		timeout:     opts.Timeout,
		newID:       opts.NewID,
		now:         opts.Now,
	}
	if g.extract == nil {
		g.extract = BraceScanner{}
	}
	if g.log == nil {
		g.log = logrus.StandardLogger()
	}
	g.log = g.log.WithField("component", "gateway")
	if g.temperature <= 0 {
		g.temperature = 0.8
	}
	if g.newID == nil {
		g.newID = uuid.NewString
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

func (g *Gateway) call(ctx context.Context, request string, msgs []Message, temperature float64) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	start := time.Now()
	reply, err := g.gen.Generate(ctx, msgs, temperature)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = ErrEmptyReply
	}
	elapsed := time.Since(start)
	g.metrics.RecordGeneration(request, elapsed, err)
	entry := g.log.WithFields(logrus.Fields{"request": request, "elapsed": elapsed.Round(time.Millisecond)})
	if err != nil {
		entry.WithError(err).Warn("generation failed")
		return "", wrap(request, err)
	}
	entry.Debug("generation ok")
	return reply, nil
}

// text runs a conversational request whose reply is used verbatim.
func (g *Gateway) text(ctx context.Context, request string, msgs []Message, temperature float64) (string, error) {
	reply, err := g.call(ctx, request, msgs, temperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// object runs a structured request and hands the extracted object to decode.
func object[T any](ctx context.Context, g *Gateway, request string, msgs []Message, temperature float64, decode func(gjson.Result) (T, error)) (T, error) {
	var zero T
	reply, err := g.call(ctx, request, msgs, temperature)
	if err != nil {
		return zero, err
	}
	raw, err := g.extract.Extract(reply)
	if err != nil {
		g.log.WithFields(logrus.Fields{"request": request, "reply": truncate(reply, 200)}).Warn("no JSON in reply")
		return zero, wrap(request, err)
	}
	out, err := decode(gjson.Parse(raw))
	if err != nil {
		g.log.WithFields(logrus.Fields{"request": request}).WithError(err).Warn("reply rejected")
		return zero, wrap(request, err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RecruitOfficer generates a new officer. specialization may be empty.
func (g *Gateway) RecruitOfficer(ctx context.Context, existingNames []string, specialization string) (domain.Officer, error) {
	return object(ctx, g, ReqRecruitOfficer, chat(recruitPrompt(existingNames, specialization)), g.temperature, func(r gjson.Result) (domain.Officer, error) {
		return decodeOfficer(r, g.newID())
	})
}

func (g *Gateway) GenerateMission(ctx context.Context, reputation, day, squadSize int) (domain.Mission, error) {
	return object(ctx, g, ReqGenerateMission, chat(missionPrompt(reputation, day, squadSize)), g.temperature, func(r gjson.Result) (domain.Mission, error) {
		return decodeMission(r, g.newID(), g.now(), standardBounds)
	})
}

// GenerateCustomMission turns the commander's description into a mission.
// The team size is capped by the squad size.
func (g *Gateway) GenerateCustomMission(ctx context.Context, description string, reputation, squadSize int) (domain.Mission, error) {
	return object(ctx, g, ReqGenerateCustomMission, chat(customMissionPrompt(description, reputation)), g.temperature, func(r gjson.Result) (domain.Mission, error) {
		m, err := decodeMission(r, g.newID(), g.now(), customBounds)
		if err != nil {
			return m, err
		}
		m.RequiredOfficers = domain.Clamp(m.RequiredOfficers, 1, max(1, squadSize))
		return m, nil
	})
}

func (g *Gateway) GenerateMissionEvent(ctx context.Context, m domain.Mission, team []domain.Officer, history []domain.MissionEvent) (domain.MissionEvent, error) {
	return object(ctx, g, ReqGenerateMissionEvent, chat(missionEventPrompt(m, team, history)), g.temperature, func(r gjson.Result) (domain.MissionEvent, error) {
		return decodeMissionEvent(r, g.newID(), m.ID, g.now())
	})
}

func (g *Gateway) ResolveDecision(ctx context.Context, m domain.Mission, ev domain.MissionEvent, opt domain.MissionOption, team []domain.Officer) (domain.DecisionResult, error) {
	return object(ctx, g, ReqResolveDecision, chat(decisionPrompt(m, ev, opt, team)), g.temperature, decodeDecision)
}

func (g *Gateway) GenerateCommunityEvent(ctx context.Context, reputation int) (domain.CommunityEvent, error) {
	return object(ctx, g, ReqGenerateCommunityEvent, chat(communityEventPrompt(reputation)), g.temperature, func(r gjson.Result) (domain.CommunityEvent, error) {
		return decodeCommunityEvent(r, g.newID())
	})
}

// GenerateSuspect profiles a suspect captured during m.
func (g *Gateway) GenerateSuspect(ctx context.Context, m domain.Mission) (domain.Suspect, error) {
	return object(ctx, g, ReqGenerateSuspect, chat(suspectPrompt(m)), g.temperature, func(r gjson.Result) (domain.Suspect, error) {
		return decodeSuspect(r, g.newID())
	})
}

// InterrogateSuspectTurn returns the suspect's reply to the commander's message.
func (g *Gateway) InterrogateSuspectTurn(ctx context.Context, sp domain.Suspect, commander string, history []domain.InterrogationMessage, message string) (string, error) {
	return g.text(ctx, ReqInterrogateSuspectTurn, interrogationMessages(sp, commander, history, message), conversationTemperature)
}

func (g *Gateway) ResolveInterrogation(ctx context.Context, sp domain.Suspect, history []domain.InterrogationMessage) (domain.InterrogationResult, error) {
	return object(ctx, g, ReqResolveInterrogation, chat(resolveInterrogationPrompt(sp, history)), g.temperature, decodeInterrogation)
}

func (g *Gateway) GenerateTrialOutcome(ctx context.Context, sp domain.Suspect, commander string) (domain.TrialOutcome, error) {
	return object(ctx, g, ReqGenerateTrialOutcome, chat(trialPrompt(sp, commander)), trialTemperature, decodeTrial)
}

// GenerateRandomEvent builds a shift-start surprise for the campaign s.
func (g *Gateway) GenerateRandomEvent(ctx context.Context, s domain.GameState) (domain.RandomEvent, error) {
	return object(ctx, g, ReqGenerateRandomEvent, chat(randomEventPrompt(s)), g.temperature, func(r gjson.Result) (domain.RandomEvent, error) {
		return decodeRandomEvent(r, g.newID(), s.Officers, g.newID, g.now())
	})
}

func (g *Gateway) GenerateNemesis(ctx context.Context, sp domain.Suspect, squad string) (domain.Nemesis, error) {
	return object(ctx, g, ReqGenerateNemesis, chat(nemesisPrompt(sp, squad)), g.temperature, func(r gjson.Result) (domain.Nemesis, error) {
		return decodeNemesis(r, g.newID(), sp, g.now())
	})
}

func (g *Gateway) GenerateNemesisMission(ctx context.Context, n domain.Nemesis, reputation, squadSize int) (domain.Mission, error) {
	return object(ctx, g, ReqGenerateNemesisMission, chat(nemesisMissionPrompt(n, reputation, squadSize)), g.temperature, func(r gjson.Result) (domain.Mission, error) {
		m, err := decodeMission(r, g.newID(), g.now(), nemesisBounds)
		if err != nil {
			return m, err
		}
		m.NemesisID = n.ID
		if m.Priority.Order() < domain.PriorityHigh.Order() {
			m.Priority = domain.PriorityHigh
		}
		return m, nil
	})
}

func (g *Gateway) GenerateFuneralEulogy(ctx context.Context, o domain.Officer, squad string) (string, error) {
	return g.text(ctx, ReqGenerateFuneralEulogy, chat(eulogyPrompt(o, squad)), g.temperature)
}

func (g *Gateway) GenerateDismissalDialogue(ctx context.Context, o domain.Officer, reason string) (string, error) {
	return g.text(ctx, ReqGenerateDismissal, chat(dismissalPrompt(o, reason)), conversationTemperature)
}
