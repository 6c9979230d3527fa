package domain_test

import (
	"strings"
	"testing"
	"time"

	"watchcommander/internal/domain"
)

func TestCalculateSalary(t *testing.T) {
	cases := map[domain.Rank]int{
		domain.RankRookie:        500,
		domain.RankOfficer:       1200,
		domain.RankSeniorOfficer: 2000,
		domain.RankSergeant:      3500,
		domain.RankLieutenant:    5000,
		domain.Rank("Chief"):     1000,
	}
	for rank, want := range cases {
		if got := domain.CalculateSalary(rank); got != want {
			t.Fatalf("salary for %q: got %d want %d", rank, got, want)
		}
	}
}

func TestPromotionFor(t *testing.T) {
	cases := []struct {
		rank domain.Rank
		exp  int
		want domain.Rank
	}{
		{domain.RankRookie, 24, domain.RankRookie},
		{domain.RankRookie, 25, domain.RankOfficer},
		{domain.RankRookie, 50, domain.RankSeniorOfficer},
		{domain.RankOfficer, 60, domain.RankSeniorOfficer},
		{domain.RankSeniorOfficer, 60, domain.RankSeniorOfficer},
		{domain.RankSeniorOfficer, 75, domain.RankSergeant},
		{domain.RankRookie, 80, domain.RankSergeant},
		{domain.RankSergeant, 94, domain.RankSergeant},
		{domain.RankSergeant, 95, domain.RankLieutenant},
		{domain.RankLieutenant, 100, domain.RankLieutenant},
	}
	for _, c := range cases {
		if got := domain.PromotionFor(c.rank, c.exp); got != c.want {
			t.Fatalf("%s at %d: got %s want %s", c.rank, c.exp, got, c.want)
		}
	}
}

func TestNameMatchesIsExactAfterTrim(t *testing.T) {
	if !domain.NameMatches("  jane DOE ", "Jane Doe") {
		t.Fatalf("expected case-insensitive trimmed match")
	}
	if domain.NameMatches("Jane", "Jane Doe") {
		t.Fatalf("partial names must not match")
	}
}

func TestFormatMoney(t *testing.T) {
	if got := domain.FormatMoney(2000); got != "$2,000" {
		t.Fatalf("got %q", got)
	}
	if got := domain.FormatMoney(-12500); got != "-$12,500" {
		t.Fatalf("got %q", got)
	}
}

func TestParseGearTrack(t *testing.T) {
	for _, in := range []string{"armor", "armorLevel", " Armor "} {
		if tr, ok := domain.ParseGearTrack(in); !ok || tr != domain.GearArmor {
			t.Fatalf("parse %q: %v %v", in, tr, ok)
		}
	}
	if _, ok := domain.ParseGearTrack("boots"); ok {
		t.Fatalf("unexpected track")
	}
}

func TestNormalizeOfficerClampsAndDefaults(t *testing.T) {
	o := domain.Officer{
		Rank:           "sergeant",
		Specialization: "hacker",
		Experience:     140,
		Morale:         -5,
		Health:         101,
		Skills:         domain.Skills{Marksmanship: 200},
	}
	domain.NormalizeOfficer(&o)
	if o.Rank != domain.RankSergeant || o.Specialization != domain.SpecAssault {
		t.Fatalf("enums not normalized: %+v", o)
	}
	if o.Experience != 100 || o.Morale != 0 || o.Health != 100 || o.Skills.Marksmanship != 100 {
		t.Fatalf("stats not clamped: %+v", o)
	}
	if o.Salary != 3500 {
		t.Fatalf("salary not derived: %d", o.Salary)
	}
	if o.Gear != (domain.Gear{ArmorLevel: 1, WeaponLevel: 1, UtilityLevel: 1}) {
		t.Fatalf("gear not defaulted: %+v", o.Gear)
	}
	if o.Status != domain.OfficerAvailable || o.Medals == nil {
		t.Fatalf("defaults missing: %+v", o)
	}
}

func TestNormalizeStateFillsMissingCollections(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := domain.GameState{CommanderName: "Hale", Reputation: 140}
	domain.NormalizeState(&s, now, 5)
	if s.Day != 1 || s.MaxMissionsPerDay != 5 || s.Reputation != 100 {
		t.Fatalf("scalars: %+v", s)
	}
	if s.Officers == nil || s.ActiveMissions == nil || s.SuspectsInCustody == nil || s.Nemeses == nil {
		t.Fatalf("collections left nil")
	}
	if len(s.MoraleEvents) == 0 {
		t.Fatalf("morale catalog not seeded")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := domain.GameState{
		Officers:       []domain.Officer{{ID: "o1", Medals: []string{"m1"}}},
		ActiveMissions: []domain.Mission{{ID: "m1", AssignedOfficers: []string{"o1"}}},
	}
	c := s.Clone()
	c.Officers[0].Medals[0] = "changed"
	c.ActiveMissions[0].AssignedOfficers[0] = "o2"
	if s.Officers[0].Medals[0] != "m1" || s.ActiveMissions[0].AssignedOfficers[0] != "o1" {
		t.Fatalf("clone shares backing arrays")
	}
}

func TestCheckInvariants(t *testing.T) {
	ok := domain.GameState{
		Day:        1,
		Reputation: 50,
		Officers:   []domain.Officer{{ID: "o1", Status: domain.OfficerOnMission, Health: 90}},
		ActiveMissions: []domain.Mission{
			{ID: "m1", Status: domain.MissionInProgress, AssignedOfficers: []string{"o1"}},
			{ID: "m2", Status: domain.MissionAvailable, AssignedOfficers: []string{}},
		},
		CurrentMissionEvents: []domain.MissionEvent{{ID: "e1", MissionID: "m1"}},
	}
	if err := domain.CheckInvariants(ok); err != nil {
		t.Fatalf("unexpected violation: %v", err)
	}

	bad := ok.Clone()
	bad.CurrentMissionEvents = append(bad.CurrentMissionEvents, domain.MissionEvent{ID: "e2", MissionID: "m1"})
	bad.ActiveMissions[1].AssignedOfficers = []string{"o1"}
	bad.Reputation = 120
	err := domain.CheckInvariants(bad)
	if err == nil {
		t.Fatalf("expected violations")
	}
	for _, want := range []string{"reputation", "unresolved events", "assigned officers"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %v", want, err)
		}
	}
}

func TestCheckInvariantsInjuredOnScheduledEvent(t *testing.T) {
	s := domain.GameState{
		Day:        1,
		Reputation: 50,
		Officers:   []domain.Officer{{ID: "o1", Status: domain.OfficerInjured, IsInjured: true, InjuryDays: 3, Health: 60}},
		AvailableEvents: []domain.CommunityEvent{
			{ID: "c1", Status: domain.CommunityScheduled, AssignedOfficers: []string{"o1"}},
		},
	}
	err := domain.CheckInvariants(s)
	if err == nil || !strings.Contains(err.Error(), "Injured but scheduled") {
		t.Fatalf("expected scheduled-event violation, got %v", err)
	}
	s.AvailableEvents[0].Status = domain.CommunityAvailable
	s.AvailableEvents[0].AssignedOfficers = []string{}
	if err := domain.CheckInvariants(s); err != nil {
		t.Fatalf("unexpected violation: %v", err)
	}
}
