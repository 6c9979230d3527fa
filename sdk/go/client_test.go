package swatsdk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchcommander/internal/app"
	"watchcommander/internal/config"
	"watchcommander/internal/gateway"
	"watchcommander/internal/server"
)

const (
	communityJSON = `{"title": "Toy Drive", "type": "Charity", "description": "Collect toys.", "rewards": {"budget": 2000, "reputation": 3}}`
	officerJSON   = `{"name": "Ana Ruiz", "rank": "Officer", "specialization": "Medic", "experience": 30, "morale": 80, "health": 100}`
	missionJSON   = `{"title": "Bank Standoff", "type": "Hostage Rescue", "priority": "High", "riskLevel": 6, "requiredOfficers": 1, "rewards": {"experience": 100, "reputation": 10, "budget": 8000}}`
	decisionEvent = `{"type": "Decision", "description": "The vault door is rigged.", "options": [{"id": "breach", "label": "Breach", "riskLevel": 7}, {"id": "wait", "label": "Wait", "riskLevel": 3}]}`
	successJSON   = `{"outcome": "The crew surrenders.", "casualties": [], "injuries": [], "missionComplete": true, "success": true}`
)

// newTestClient serves a fresh campaign whose generator answers with
// replies in order and fails once they run out.
func newTestClient(t *testing.T, replies ...string) *Client {
	t.Helper()
	log, _ := test.NewNullLogger()
	var mu sync.Mutex
	gen := gateway.GeneratorFunc(func(context.Context, []gateway.Message, float64) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(replies) == 0 {
			return "", errors.New("dispatch offline")
		}
		r := replies[0]
		replies = replies[1:]
		return r, nil
	})
	cfg := config.Default()
	cfg.Rules.RandomEventChance = 0
	cfg.Rules.SuspectCaptureChance = 0
	rt, err := app.Open(context.Background(), t.TempDir(), cfg, log, app.Options{Generator: gen})
	require.NoError(t, err)
	t.Cleanup(rt.Close)
	handler, err := server.New(server.Config{Session: rt.Session, Journal: rt.Store, SaveKey: rt.SaveKey(), Auth: server.AuthConfig{JWTSecret: "s3cret"}, Logger: log})
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	token, err := server.SignToken("s3cret", "reyes", nil, 0)
	require.NoError(t, err)
	return New(srv.URL, token)
}

func TestClientAgainstServer(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, communityJSON, officerJSON)

	snap, err := c.StartCampaign(ctx, "Reyes", "Night Watch")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.State.Day)

	snap, err = c.RecruitOfficer(ctx, "Medic")
	require.NoError(t, err)
	require.Len(t, snap.State.Officers, 1)
	assert.Equal(t, "Ana Ruiz", snap.State.Officers[0].Name)

	_, err = c.GenerateMission(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "generation_failed", apiErr.Code)

	save, err := c.Export(ctx)
	require.NoError(t, err)
	_, err = c.StartCampaign(ctx, "Someone", "Else")
	require.NoError(t, err)
	snap, err = c.Import(ctx, save)
	require.NoError(t, err)
	assert.Equal(t, "Reyes", snap.State.CommanderName)

	page, err := c.JournalPage(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.NotEmpty(t, page.NextCursor)
}

func TestAssignAndDecide(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, communityJSON, officerJSON, missionJSON, decisionEvent, successJSON)

	_, err := c.StartCampaign(ctx, "Reyes", "Night Watch")
	require.NoError(t, err)
	snap, err := c.RecruitOfficer(ctx, "Medic")
	require.NoError(t, err)
	officerID := snap.State.Officers[0].ID
	snap, err = c.GenerateMission(ctx)
	require.NoError(t, err)
	require.Len(t, snap.State.ActiveMissions, 1)
	missionID := snap.State.ActiveMissions[0].ID

	snap, err = c.AssignOfficers(ctx, missionID, []string{officerID})
	require.NoError(t, err)
	assert.Equal(t, []string{officerID}, snap.State.ActiveMissions[0].AssignedOfficers)
	assert.Equal(t, "In Progress", snap.State.ActiveMissions[0].Status)
	assert.Equal(t, "On Mission", snap.State.Officers[0].Status)

	snap, err = c.GenerateMissionEvent(ctx, missionID)
	require.NoError(t, err)
	require.Len(t, snap.State.CurrentMissionEvents, 1)
	eventID := snap.State.CurrentMissionEvents[0].ID

	out, err := c.MakeDecision(ctx, eventID, "breach", "")
	require.NoError(t, err)
	assert.True(t, out.MissionComplete)
	assert.True(t, out.Success)
	assert.Empty(t, out.Snapshot.State.ActiveMissions)
	require.Len(t, out.Snapshot.State.CompletedMissions, 1)
	assert.Equal(t, missionID, out.Snapshot.State.CompletedMissions[0].ID)
	assert.Equal(t, "Available", out.Snapshot.State.Officers[0].Status)
}

func TestUnknownIDsAreNotFound(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, communityJSON)
	_, err := c.StartCampaign(ctx, "Reyes", "Night Watch")
	require.NoError(t, err)

	_, err = c.AssignOfficers(ctx, "no-such-mission", []string{"nobody"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "no-such-mission")
}
