package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchcommander/internal/config"
	"watchcommander/internal/domain"
	"watchcommander/internal/gateway"
)

func TestBraceScannerExtract(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"prose around", "Sure thing!\n{\"a\": 1}\nHope this helps {really}.", `{"a": 1}`},
		{"nested", `Result: {"a":{"b":1},"c":2} done`, `{"a":{"b":1},"c":2}`},
		{"fenced after stray brace", "Use {placeholder} like this:\n```json\n{\"name\":\"X\"}\n```\nthanks", `{"name":"X"}`},
		{"fence without language", "```\n{\"ok\":true}\n```", `{"ok":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := gateway.BraceScanner{}.Extract(tc.reply)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, got)
		})
	}
}

func TestBraceScannerNoJSON(t *testing.T) {
	for _, reply := range []string{"", "no braces here", "broken {\"a\": }", "[1,2,3]"} {
		_, err := gateway.BraceScanner{}.Extract(reply)
		assert.ErrorIs(t, err, gateway.ErrNoJSON, reply)
	}
}

func TestChatClientOpenAI(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`)
	}))
	defer srv.Close()

	c := gateway.NewChatClient(config.LLM{Provider: "openai", URL: srv.URL, Model: "llama3.1", APIKey: "secret", TimeoutSeconds: 5, MaxTokens: 2048}, nil)
	out, err := c.Generate(context.Background(), []gateway.Message{{Role: "user", Content: "hi"}}, 0.8)
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
	assert.Equal(t, "llama3.1", got["model"])
	assert.EqualValues(t, 2048, got["max_tokens"])
	assert.EqualValues(t, 0.8, got["temperature"])
}

func TestChatClientOllama(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"from ollama"},"done":true}`)
	}))
	defer srv.Close()

	c := gateway.NewChatClient(config.LLM{Provider: "ollama", URL: srv.URL, Model: "llama3.1", TimeoutSeconds: 5, MaxTokens: 512}, nil)
	out, err := c.Generate(context.Background(), []gateway.Message{{Role: "user", Content: "hi"}}, 0.9)
	require.NoError(t, err)
	assert.Equal(t, "from ollama", out)
	assert.Equal(t, false, got["stream"])
	opts, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 512, opts["num_predict"])
}

func TestChatClientUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			fmt.Fprint(w, `{"choices":[{"message":{"content":"   "}}]}`)
			return
		}
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	log, _ := test.NewNullLogger()
	c := gateway.NewChatClient(config.LLM{URL: srv.URL, TimeoutSeconds: 5}, log)
	_, err := c.Generate(context.Background(), nil, 0.8)
	assert.ErrorIs(t, err, gateway.ErrUpstreamStatus)

	c = gateway.NewChatClient(config.LLM{URL: srv.URL + "/empty", TimeoutSeconds: 5}, log)
	_, err = c.Generate(context.Background(), nil, 0.8)
	assert.ErrorIs(t, err, gateway.ErrEmptyReply)
}

type scripted struct {
	replies      []string
	err          error
	temperatures []float64
	messages     [][]gateway.Message
}

func (s *scripted) Generate(_ context.Context, msgs []gateway.Message, temperature float64) (string, error) {
	s.temperatures = append(s.temperatures, temperature)
	s.messages = append(s.messages, msgs)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func newGateway(gen gateway.Generator) *gateway.Gateway {
	log, _ := test.NewNullLogger()
	n := 0
	return gateway.New(gen, gateway.Options{
		Logger: log,
		NewID: func() string {
			n++
			return fmt.Sprintf("gen-%d", n)
		},
		Now: func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
}

func TestRecruitOfficerNormalizes(t *testing.T) {
	gen := &scripted{replies: []string{"Here is your recruit:\n```json\n" + `{
		"name": "  Maria Vega ",
		"rank": "sergeant",
		"specialization": "Tech Specialist",
		"experience": 140,
		"morale": "88",
		"health": 92.6,
		"skills": {"marksmanship": 120, "tactics": -5, "fitness": 70, "leadership": 60, "composure": 55},
		"backstory": "Former Army signals."
	}` + "\n```"}}
	g := newGateway(gen)
	o, err := g.RecruitOfficer(context.Background(), []string{"Ana Ruiz"}, "")
	require.NoError(t, err)
	assert.Equal(t, "gen-1", o.ID)
	assert.Equal(t, "Maria Vega", o.Name)
	assert.Equal(t, domain.RankSergeant, o.Rank)
	assert.Equal(t, domain.SpecTechSpecialist, o.Specialization)
	assert.Equal(t, 100, o.Experience)
	assert.Equal(t, 88, o.Morale)
	assert.Equal(t, 93, o.Health)
	assert.Equal(t, 100, o.Skills.Marksmanship)
	assert.Equal(t, 0, o.Skills.Tactics)
	assert.Equal(t, 3500, o.Salary)
	assert.Equal(t, domain.OfficerAvailable, o.Status)
	assert.Equal(t, domain.Gear{ArmorLevel: 1, WeaponLevel: 1, UtilityLevel: 1}, o.Gear)
	assert.Equal(t, []float64{0.8}, gen.temperatures)
	assert.Contains(t, gen.messages[0][1].Content, "Ana Ruiz")
}

func TestSchemaFailureIsTyped(t *testing.T) {
	g := newGateway(&scripted{replies: []string{`{"rank":"Rookie"}`}})
	_, err := g.RecruitOfficer(context.Background(), nil, "")
	var gerr *gateway.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, gateway.ReqRecruitOfficer, gerr.Request)
	assert.Equal(t, "schema", gerr.Reason)
	assert.ErrorIs(t, err, gateway.ErrSchema)
}

func TestGeneratorFailureIsTyped(t *testing.T) {
	g := newGateway(&scripted{err: context.DeadlineExceeded})
	_, err := g.GenerateMission(context.Background(), 50, 1, 4)
	var gerr *gateway.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, gateway.ReqGenerateMission, gerr.Request)
	assert.Equal(t, "timeout", gerr.Reason)

	g = newGateway(&scripted{replies: []string{"I cannot help with that."}})
	_, err = g.GenerateMission(context.Background(), 50, 1, 4)
	assert.ErrorIs(t, err, gateway.ErrNoJSON)
}

func TestGenerateMissionClamps(t *testing.T) {
	g := newGateway(&scripted{replies: []string{`{"title":"Bank Job","type":"hostage rescue","priority":"urgent","riskLevel":14,"rewards":{"experience":120,"reputation":-4,"budget":20000}}`}})
	m, err := g.GenerateMission(context.Background(), 50, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.MissionHostageRescue, m.Type)
	assert.Equal(t, domain.PriorityMedium, m.Priority)
	assert.Equal(t, 10, m.RiskLevel)
	assert.Equal(t, 4, m.RequiredOfficers)
	assert.Equal(t, 0, m.Rewards.Reputation)
	assert.Equal(t, domain.MissionAvailable, m.Status)
	assert.Empty(t, m.AssignedOfficers)
	assert.NotNil(t, m.RequiredSpecializations)
	assert.False(t, m.CreatedAt.IsZero())
}

func TestGenerateCustomMission(t *testing.T) {
	g := newGateway(&scripted{replies: []string{`{"title":"Shake Down","type":"Custom Operation","requiredOfficers":8,"rewards":{"experience":20,"reputation":-80,"budget":90000}}`}})
	m, err := g.GenerateCustomMission(context.Background(), "rob the casino", 50, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.MissionCustomOperation, m.Type)
	assert.Equal(t, 3, m.RequiredOfficers)
	assert.Equal(t, -50, m.Rewards.Reputation)
}

func TestMissionEventOptions(t *testing.T) {
	g := newGateway(&scripted{replies: []string{`{"description":"Shots from the roof.","type":"combat","options":[{"label":"Return fire","riskLevel":12,"requiredSpecialization":"sniper"},{"id":"option2","label":""},{"id":"fall-back","label":"Fall back"}]}`}})
	ev, err := g.GenerateMissionEvent(context.Background(), domain.Mission{ID: "m1", Title: "Standoff"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "m1", ev.MissionID)
	assert.Equal(t, domain.EventCombat, ev.Type)
	require.Len(t, ev.Options, 2)
	assert.Equal(t, "option1", ev.Options[0].ID)
	assert.Equal(t, 10, ev.Options[0].RiskLevel)
	assert.Equal(t, "Sniper", ev.Options[0].RequiredSpecialization)
	assert.Equal(t, "fall-back", ev.Options[1].ID)
	assert.False(t, ev.Resolved)
}

func TestResolveDecision(t *testing.T) {
	g := newGateway(&scripted{replies: []string{`{"outcome":"Breach went loud.","casualties":"Ben Cole","injuries":["Ana Ruiz",""],"missionComplete":"true","success":true}`}})
	res, err := g.ResolveDecision(context.Background(), domain.Mission{}, domain.MissionEvent{}, domain.MissionOption{ID: gateway.CustomOptionID, Label: "Go in"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ben Cole"}, res.Casualties)
	assert.Equal(t, []string{"Ana Ruiz"}, res.Injuries)
	assert.True(t, res.MissionComplete)
	assert.True(t, res.Success)
}

func TestFreeTextRequests(t *testing.T) {
	gen := &scripted{replies: []string{"  You got nothing on me.  ", "   "}}
	g := newGateway(gen)
	out, err := g.InterrogateSuspectTurn(context.Background(), domain.Suspect{Name: "Vic"}, "Reyes",
		[]domain.InterrogationMessage{{Role: "Commander", Text: "Talk."}, {Role: "Suspect", Text: "No."}}, "Last chance.")
	require.NoError(t, err)
	assert.Equal(t, "You got nothing on me.", out)
	assert.Equal(t, 0.9, gen.temperatures[0])
	msgs := gen.messages[0]
	require.Len(t, msgs, 4)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Equal(t, "assistant", msgs[2].Role)
	assert.Equal(t, "Last chance.", msgs[3].Content)

	_, err = g.GenerateFuneralEulogy(context.Background(), domain.Officer{Name: "Ana"}, "Night Watch")
	assert.ErrorIs(t, err, gateway.ErrEmptyReply)
}

func TestTrialAndInterrogation(t *testing.T) {
	gen := &scripted{replies: []string{
		`{"verdict":"guilty","sentence":"10 years","reputationImpact":50,"budgetImpact":-9000}`,
		`{"success":true,"intel":"Warehouse on 5th.","reputationBonus":7,"budgetBonus":2500,"unlockedMission":{"title":"Warehouse Raid","type":"Drug Raid","riskLevel":0,"rewardBudget":20000}}`,
		`{"success":false,"intel":"Lawyered up.","unlockedMission":{"title":"Ignored"}}`,
	}}
	g := newGateway(gen)
	trial, err := g.GenerateTrialOutcome(context.Background(), domain.Suspect{Name: "Vic"}, "Reyes")
	require.NoError(t, err)
	assert.Equal(t, "Guilty", trial.Verdict)
	assert.Equal(t, 20, trial.ReputationImpact)
	assert.Equal(t, -5000, trial.BudgetImpact)
	assert.Equal(t, 0.7, gen.temperatures[0])

	res, err := g.ResolveInterrogation(context.Background(), domain.Suspect{Name: "Vic"}, nil)
	require.NoError(t, err)
	require.NotNil(t, res.UnlockedMission)
	assert.Equal(t, domain.MissionDrugRaid, res.UnlockedMission.Type)
	assert.Equal(t, 5, res.UnlockedMission.RiskLevel)

	res, err = g.ResolveInterrogation(context.Background(), domain.Suspect{Name: "Vic"}, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.UnlockedMission)
}

func TestRandomEventResolvesOfficerNames(t *testing.T) {
	g := newGateway(&scripted{replies: []string{`{"title":"Viral Video","type":"drama","effects":{"moraleChange":-50,"officerAffected":"ana ruiz"},"choices":[{"label":"Hold a presser","effects":{"reputationChange":4},"risk":150}]}`}})
	s := domain.GameState{Officers: []domain.Officer{{ID: "o1", Name: "Ana Ruiz", Status: domain.OfficerAvailable}}}
	ev, err := g.GenerateRandomEvent(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, domain.RandomDrama, ev.Type)
	assert.Equal(t, "o1", ev.Effects.OfficerAffected)
	assert.Equal(t, -30, ev.Effects.MoraleChange)
	require.Len(t, ev.Choices, 1)
	assert.Equal(t, "choice1", ev.Choices[0].ID)
	assert.Equal(t, 100, ev.Choices[0].Risk)
}

func TestNemesisRequests(t *testing.T) {
	g := newGateway(&scripted{replies: []string{
		`{"alias":"The Ghost","grudgeLevel":15,"signature":"Leaves a chalk outline"}`,
		`{"title":"Ghost Heist","priority":"Low","rewards":{"reputation":-20,"budget":15000}}`,
	}})
	sp := domain.Suspect{ID: "s1", Name: "Vic Lane"}
	n, err := g.GenerateNemesis(context.Background(), sp, "Night Watch")
	require.NoError(t, err)
	assert.Equal(t, "Vic Lane", n.Name)
	assert.Equal(t, "s1", n.OriginalSuspectID)
	assert.Equal(t, domain.MaxGrudge, n.GrudgeLevel)
	assert.Equal(t, domain.NemesisAtLarge, n.Status)

	m, err := g.GenerateNemesisMission(context.Background(), n, 50, 4)
	require.NoError(t, err)
	assert.Equal(t, n.ID, m.NemesisID)
	assert.Equal(t, domain.PriorityHigh, m.Priority)
	assert.Equal(t, -20, m.Rewards.Reputation)
}

func TestGatewayLogsFailures(t *testing.T) {
	log, hook := test.NewNullLogger()
	g := gateway.New(&scripted{err: errors.New("connection refused")}, gateway.Options{Logger: log})
	_, err := g.GenerateCommunityEvent(context.Background(), 50)
	require.Error(t, err)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, gateway.ReqGenerateCommunityEvent, entry.Data["request"])
}
