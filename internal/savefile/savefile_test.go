package savefile_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchcommander/internal/config"
	"watchcommander/internal/domain"
	"watchcommander/internal/engine"
	"watchcommander/internal/savefile"
)

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func campaign(t *testing.T) domain.GameState {
	t.Helper()
	eng := engine.New(config.Default())
	eng.Now = func() time.Time { return now }
	n := 0
	eng.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	s, err := eng.StartNewGame("Reyes", "Night Watch", []domain.CommunityEvent{{Title: "Toy Drive", Type: domain.CommunityCharity}})
	require.NoError(t, err)
	s, err = eng.RecruitOfficer(s, domain.Officer{ID: "o1", Name: "Ana Ruiz", Health: 100, Morale: 80})
	require.NoError(t, err)
	s, err = eng.AddMission(s, domain.Mission{ID: "m1", Title: "Bank Standoff", Rewards: domain.Rewards{Budget: 5000}})
	require.NoError(t, err)
	s, err = eng.AssignOfficersToMission(s, "m1", []string{"o1"})
	require.NoError(t, err)
	s, err = eng.AddMissionEvent(s, "m1", domain.MissionEvent{ID: "e1", Type: domain.EventDecision, Description: "Vault", Options: []domain.MissionOption{{ID: "a", Label: "Breach", RiskLevel: 6}}})
	require.NoError(t, err)
	s = eng.CaptureSuspect(s, domain.Suspect{ID: "s1", Name: "Vic Lane"})
	return s
}

func TestRoundTrip(t *testing.T) {
	s := campaign(t)
	data, err := savefile.Encode(s)
	require.NoError(t, err)

	back, err := savefile.Decode(data, now.Add(time.Hour), 5)
	require.NoError(t, err)
	assert.Equal(t, s, back)
	assert.True(t, back.ActiveMissions[0].CreatedAt.Equal(now))
	assert.True(t, back.CurrentMissionEvents[0].Timestamp.Equal(now))

	imported, err := savefile.DecodeImport(data, now, 5)
	require.NoError(t, err)
	assert.Equal(t, s, imported)
}

func TestDecodeLegacySave(t *testing.T) {
	legacy := `{
		"commanderName": "Reyes",
		"squadName": "Night Watch",
		"officers": [{"id": "o1", "name": "Ana Ruiz", "rank": "Officer", "specialization": "Medic",
			"experience": 30.4, "morale": 72.6, "health": 140, "skills": {"marksmanship": 50},
			"status": "Available", "gear": {"armorLevel": 2}}],
		"activeMissions": [{"id": "m1", "title": "Old Job", "status": "Available", "riskLevel": 0,
			"createdAt": "2024-03-01T10:00:00.000Z"}],
		"completedMissions": [{"id": "m0", "title": "Older Job", "status": "Completed", "assignedOfficers": ["o1"],
			"createdAt": 1704067200000}],
		"reputation": 55,
		"budget": 98000.5,
		"day": 3,
		"gameLog": [{"id": "l1", "type": "Info", "message": "hello", "timestamp": "Mon Jan 01 2024 00:00:00 GMT+0000 (Coordinated Universal Time)"}],
		"currentMissionEvents": [{"id": "e1", "missionId": "m9", "type": "Info", "description": "x", "resolved": true, "timestamp": "garbage"}]
	}`
	s, err := savefile.Decode([]byte(legacy), now, 5)
	require.NoError(t, err)

	o := s.Officers[0]
	assert.Equal(t, 30, o.Experience)
	assert.Equal(t, 73, o.Morale)
	assert.Equal(t, 100, o.Health)
	assert.Equal(t, 1200, o.Salary)
	assert.Equal(t, domain.Gear{ArmorLevel: 2, WeaponLevel: 1, UtilityLevel: 1}, o.Gear)
	assert.NotNil(t, o.Medals)

	assert.Equal(t, 98001, s.Budget)
	assert.Equal(t, 5, s.MaxMissionsPerDay)
	assert.Equal(t, 5, s.ActiveMissions[0].RiskLevel)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), s.ActiveMissions[0].CreatedAt.UTC())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), s.CompletedMissions[0].CreatedAt)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), s.GameLog[0].Timestamp)
	assert.Equal(t, now, s.CurrentMissionEvents[0].Timestamp)

	assert.NotNil(t, s.FailedMissions)
	assert.NotNil(t, s.SuspectsInCustody)
	assert.NotNil(t, s.Nemeses)
	assert.NotEmpty(t, s.MoraleEvents)
}

func TestDecodeRejectsCorruptSaves(t *testing.T) {
	for _, data := range []string{"", "   ", "{not json", `[1,2]`, `"text"`} {
		_, err := savefile.Decode([]byte(data), now, 5)
		assert.ErrorIs(t, err, savefile.ErrInvalidSave, data)
	}
}

func TestDecodeImportValidatesShape(t *testing.T) {
	cases := map[string]string{
		"no commander":      `{"squadName":"A","officers":[]}`,
		"blank squad":       `{"commanderName":"R","squadName":"  ","officers":[]}`,
		"officers object":   `{"commanderName":"R","squadName":"A","officers":{}}`,
		"not json":          `{"commanderName":`,
		"numeric commander": `{"commanderName":7,"squadName":"A","officers":[]}`,
	}
	for name, data := range cases {
		_, err := savefile.DecodeImport([]byte(data), now, 5)
		assert.ErrorIs(t, err, savefile.ErrInvalidSave, name)
	}
	s, err := savefile.DecodeImport([]byte(`{"commanderName":"R","squadName":"A","officers":[]}`), now, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Day)
}
