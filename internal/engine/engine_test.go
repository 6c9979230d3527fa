package engine_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"watchcommander/internal/config"
	"watchcommander/internal/domain"
	"watchcommander/internal/engine"
)

type testEnv struct {
	Engine engine.Engine
	Config *config.Config
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	cfg := config.Default()
	eng := engine.New(cfg)
	eng.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	n := 0
	eng.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return testEnv{Engine: eng, Config: cfg}
}

func (env testEnv) start(t *testing.T) domain.GameState {
	t.Helper()
	s, err := env.Engine.StartNewGame("Reyes", "Night Watch", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func (env testEnv) recruit(t *testing.T, s domain.GameState, id, name string) domain.GameState {
	t.Helper()
	next, err := env.Engine.RecruitOfficer(s, domain.Officer{
		ID:             id,
		Name:           name,
		Rank:           domain.RankRookie,
		Specialization: domain.SpecAssault,
		Health:         100,
		Morale:         70,
	})
	if err != nil {
		t.Fatalf("recruit %s: %v", name, err)
	}
	return next
}

func checkInvariants(t *testing.T, s domain.GameState) {
	t.Helper()
	if err := domain.CheckInvariants(s); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func countLogs(s domain.GameState, typ domain.LogType) int {
	n := 0
	for _, l := range s.GameLog {
		if l.Type == typ {
			n++
		}
	}
	return n
}

func TestStartNewGameRequiresNames(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.StartNewGame("  ", "Squad", nil); !errors.Is(err, engine.ErrNameRequired) {
		t.Fatalf("expected name error, got %v", err)
	}
	s := env.start(t)
	if s.Budget != 100000 || s.Reputation != 50 || s.Day != 1 || s.MaxMissionsPerDay != 5 {
		t.Fatalf("unexpected starting state: budget=%d rep=%d day=%d max=%d", s.Budget, s.Reputation, s.Day, s.MaxMissionsPerDay)
	}
	if len(s.MoraleEvents) == 0 {
		t.Fatalf("expected morale catalog")
	}
	checkInvariants(t, s)
}

func TestRecruitOfficer(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	next := env.recruit(t, s, "o1", "Ana Ruiz")
	if next.Budget != 95000 {
		t.Fatalf("budget: got %d", next.Budget)
	}
	if len(next.Officers) != 1 || next.Officers[0].Status != domain.OfficerAvailable {
		t.Fatalf("roster: %+v", next.Officers)
	}
	if next.Officers[0].Salary != 500 {
		t.Fatalf("salary: got %d", next.Officers[0].Salary)
	}
	if countLogs(next, domain.LogSuccess) != 1 || !strings.HasPrefix(next.GameLog[0].Message, "Recruited Ana Ruiz") {
		t.Fatalf("log: %+v", next.GameLog)
	}
	if len(s.Officers) != 0 || s.Budget != 100000 {
		t.Fatalf("input state mutated")
	}
	checkInvariants(t, next)
}

func TestRecruitInsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	s.Budget = 4999
	next, err := env.Engine.RecruitOfficer(s, domain.Officer{Name: "Broke"})
	var funds *engine.InsufficientFundsError
	if !errors.As(err, &funds) || !errors.Is(err, engine.ErrInsufficientFunds) {
		t.Fatalf("expected funds error, got %v", err)
	}
	if funds.Need != 5000 || !strings.Contains(err.Error(), "$5,000") {
		t.Fatalf("unexpected error %v", err)
	}
	if len(next.Officers) != 0 || next.Budget != 4999 {
		t.Fatalf("state changed on failure")
	}
}

func TestMissionQuota(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	var err error
	for i := 0; i < 5; i++ {
		s, err = env.Engine.AddMission(s, domain.Mission{Title: fmt.Sprintf("Call %d", i), Type: domain.MissionHighRiskWarrant})
		if err != nil {
			t.Fatalf("add mission %d: %v", i, err)
		}
	}
	if _, err := env.Engine.AddMission(s, domain.Mission{Title: "One too many"}); !errors.Is(err, engine.ErrDispatchOverloaded) {
		t.Fatalf("expected overload, got %v", err)
	}
	s, _, err = env.Engine.AdvanceDay(s)
	if err != nil {
		t.Fatal(err)
	}
	if s.MissionsAttemptedToday != 0 || len(s.ActiveMissions) != 0 {
		t.Fatalf("expected quota reset and offers expired: %d %d", s.MissionsAttemptedToday, len(s.ActiveMissions))
	}
	checkInvariants(t, s)
}

func TestCustomMissionCapsTeamSize(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	s = env.recruit(t, s, "o1", "Ana Ruiz")
	s, err := env.Engine.AddCustomMission(s, domain.Mission{Title: "Escort", RequiredOfficers: 6, Rewards: domain.Rewards{Reputation: -3}})
	if err != nil {
		t.Fatal(err)
	}
	m := s.ActiveMissions[0]
	if m.RequiredOfficers != 1 || m.Type != domain.MissionCustomOperation || m.Rewards.Reputation != -3 {
		t.Fatalf("unexpected mission %+v", m)
	}
}

func setupInProgress(t *testing.T, env testEnv) (domain.GameState, string) {
	t.Helper()
	s := env.start(t)
	s = env.recruit(t, s, "o1", "Ana Ruiz")
	s = env.recruit(t, s, "o2", "Ben Cole")
	s, err := env.Engine.AddMission(s, domain.Mission{
		ID:        "m1",
		Title:     "Bank Standoff",
		Type:      domain.MissionHostageRescue,
		RiskLevel: 7,
		Rewards:   domain.Rewards{Experience: 10, Reputation: 8, Budget: 12000},
	})
	if err != nil {
		t.Fatal(err)
	}
	s, err = env.Engine.AssignOfficersToMission(s, "m1", []string{"o1", "o2", "o1"})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	checkInvariants(t, s)
	s, err = env.Engine.AddMissionEvent(s, "m1", domain.MissionEvent{
		ID:          "e1",
		Type:        domain.EventDecision,
		Description: "Suspect barricaded in the vault.",
		Options:     []domain.MissionOption{{ID: "a", Label: "Breach"}},
	})
	if err != nil {
		t.Fatalf("add event: %v", err)
	}
	checkInvariants(t, s)
	return s, "e1"
}

func TestMissionSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.Config.Rules.SuspectCaptureChance = 1
	s, eventID := setupInProgress(t, env)
	if len(s.ActiveMissions[0].AssignedOfficers) != 2 {
		t.Fatalf("expected deduplicated team, got %v", s.ActiveMissions[0].AssignedOfficers)
	}
	if _, err := env.Engine.AddMissionEvent(s, "m1", domain.MissionEvent{Type: domain.EventInfo}); !errors.Is(err, engine.ErrUnresolvedEvent) {
		t.Fatalf("expected unresolved event error, got %v", err)
	}
	budget, rep := s.Budget, s.Reputation

	next, out, err := env.Engine.MakeDecision(s, eventID, domain.DecisionResult{
		Outcome:         "Clean breach, hostages safe.",
		MissionComplete: true,
		Success:         true,
	})
	if err != nil {
		t.Fatalf("decision: %v", err)
	}
	if !out.MissionComplete || !out.Success || !out.CaptureSuspect {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(next.ActiveMissions) != 0 || len(next.CompletedMissions) != 1 || len(next.CurrentMissionEvents) != 0 {
		t.Fatalf("mission not moved: active=%d completed=%d events=%d", len(next.ActiveMissions), len(next.CompletedMissions), len(next.CurrentMissionEvents))
	}
	if next.Budget != budget+12000 || next.Reputation != rep+8 {
		t.Fatalf("rewards not applied: budget=%d rep=%d", next.Budget, next.Reputation)
	}
	for _, o := range next.Officers {
		if o.Status != domain.OfficerAvailable || o.Experience != 10 || o.MissionsCompleted != 1 || o.Morale != 75 {
			t.Fatalf("officer not debriefed: %+v", o)
		}
	}
	if next.LastMissionResult == nil || !next.LastMissionResult.Success || next.LuckyStreak != 1 {
		t.Fatalf("missing debrief")
	}
	checkInvariants(t, next)

	cleared := env.Engine.ClearMissionResult(next)
	if cleared.LastMissionResult != nil || next.LastMissionResult == nil {
		t.Fatalf("clear should only touch the copy")
	}
}

func TestMissionFailurePenalty(t *testing.T) {
	env := newTestEnv(t)
	s, eventID := setupInProgress(t, env)
	next, out, err := env.Engine.MakeDecision(s, eventID, domain.DecisionResult{MissionComplete: true, Success: false})
	if err != nil {
		t.Fatal(err)
	}
	if out.CaptureSuspect || len(next.FailedMissions) != 1 {
		t.Fatalf("unexpected failure outcome %+v", out)
	}
	if next.Reputation != s.Reputation-10 || next.UnluckyStreak != 1 {
		t.Fatalf("penalty not applied: rep=%d", next.Reputation)
	}
	checkInvariants(t, next)
}

func TestCasualtyTakesPrecedence(t *testing.T) {
	env := newTestEnv(t)
	s, eventID := setupInProgress(t, env)
	next, out, err := env.Engine.MakeDecision(s, eventID, domain.DecisionResult{
		Outcome:    "Shots fired.",
		Casualties: []string{" ana ruiz "},
		Injuries:   []string{"Ana Ruiz", "Ben Cole", "Nobody"},
	})
	if err != nil {
		t.Fatal(err)
	}
	ana, _ := env.Engine.Officer(next, "o1")
	ben, _ := env.Engine.Officer(next, "o2")
	if ana.Status != domain.OfficerKIA || ana.Health != 0 || ana.IsInjured {
		t.Fatalf("casualty not applied: %+v", ana)
	}
	if ben.Status != domain.OfficerInjured || ben.Health != 70 || ben.InjuryDays < 3 || ben.InjuryDays > 7 {
		t.Fatalf("injury not applied: %+v", ben)
	}
	if len(out.Casualties) != 1 || len(out.Injuries) != 1 {
		t.Fatalf("outcome lists wrong: %+v", out)
	}
	if _, _, err := env.Engine.MakeDecision(next, eventID, domain.DecisionResult{}); !errors.Is(err, engine.ErrEventResolved) {
		t.Fatalf("expected resolved error, got %v", err)
	}
	checkInvariants(t, next)

	if _, err := env.Engine.DismissOfficer(next, "o1", ""); !errors.Is(err, engine.ErrOfficerUnavailable) {
		t.Fatalf("KIA officer dismissed: %v", err)
	}
	if _, err := env.Engine.DismissOfficer(next, "o2", ""); !errors.Is(err, engine.ErrOfficerUnavailable) {
		t.Fatalf("injured officer dismissed mid-mission: %v", err)
	}
	if _, err := env.Engine.HonorFallen(next, "o1"); !errors.Is(err, engine.ErrOfficerUnavailable) {
		t.Fatalf("honored while the mission is in progress: %v", err)
	}

	next, err = env.Engine.AddMissionEvent(next, "m1", domain.MissionEvent{ID: "e2", Type: domain.EventDecision, Options: []domain.MissionOption{{ID: "a", Label: "Pull back"}}})
	if err != nil {
		t.Fatal(err)
	}
	next, _, err = env.Engine.MakeDecision(next, "e2", domain.DecisionResult{MissionComplete: true, Success: false})
	if err != nil {
		t.Fatal(err)
	}
	honored, err := env.Engine.HonorFallen(next, "o1")
	if err != nil || len(honored.Officers) != 1 {
		t.Fatalf("honor fallen: %v", err)
	}
	checkInvariants(t, honored)
}

func TestInjuryReleasesScheduledEvent(t *testing.T) {
	env := newTestEnv(t)
	s, eventID := setupInProgress(t, env)
	s = env.recruit(t, s, "o3", "Cal Ortiz")
	s = env.Engine.AddCommunityEvent(s, domain.CommunityEvent{
		ID:      "c1",
		Title:   "School Visit",
		Type:    domain.CommunityPublicRelations,
		Rewards: domain.EventRewards{Budget: 2000, Reputation: 4},
	})
	s, err := env.Engine.ScheduleEvent(s, "c1", []string{"o3"})
	if err != nil {
		t.Fatal(err)
	}

	next, out, err := env.Engine.MakeDecision(s, eventID, domain.DecisionResult{
		Outcome:  "A stray round hits the school bus outside.",
		Injuries: []string{"Cal Ortiz"},
	})
	if err != nil {
		t.Fatal(err)
	}
	cal, _ := env.Engine.Officer(next, "o3")
	if cal.Status != domain.OfficerInjured || len(out.Injuries) != 1 {
		t.Fatalf("injury not applied: %+v", cal)
	}
	ev := next.AvailableEvents[0]
	if ev.Status != domain.CommunityAvailable || len(ev.AssignedOfficers) != 0 {
		t.Fatalf("injured officer still scheduled: status=%s assigned=%v", ev.Status, ev.AssignedOfficers)
	}
	checkInvariants(t, next)

	day, rep, err := env.Engine.AdvanceDay(next)
	if err != nil {
		t.Fatal(err)
	}
	if rep.EventBudget != 0 || day.Reputation != next.Reputation {
		t.Fatalf("released event still paid out: %+v", rep)
	}
}

func TestTerminalResult(t *testing.T) {
	res := engine.TerminalResult(domain.MissionEvent{Type: domain.EventFailure, Description: "Suspect escaped."})
	if !res.MissionComplete || res.Success || res.Outcome != "Suspect escaped." {
		t.Fatalf("unexpected %+v", res)
	}
}

func TestAssignRejectsUnavailableOfficers(t *testing.T) {
	env := newTestEnv(t)
	s, _ := setupInProgress(t, env)
	s, err := env.Engine.AddMission(s, domain.Mission{ID: "m2", Title: "Warrant"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.AssignOfficersToMission(s, "m2", []string{"o1"}); !errors.Is(err, engine.ErrOfficerUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if _, err := env.Engine.AssignOfficersToMission(s, "m2", nil); !errors.Is(err, engine.ErrNoOfficers) {
		t.Fatalf("expected no officers, got %v", err)
	}
	if _, err := env.Engine.AssignOfficersToMission(s, "m2", []string{"ghost"}); !errors.Is(err, engine.ErrOfficerNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := env.Engine.AssignOfficersToMission(s, "m1", []string{"o1"}); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := env.Engine.DeclineMission(s, "m1"); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Fatalf("declined in-progress mission: %v", err)
	}
	declined, err := env.Engine.DeclineMission(s, "m2")
	if err != nil || declined.Reputation != s.Reputation-5 || len(declined.ActiveMissions) != 1 {
		t.Fatalf("decline: %v", err)
	}
}

func TestAdvanceDayConservation(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	s = env.recruit(t, s, "o1", "Ana Ruiz")
	s = env.recruit(t, s, "o2", "Ben Cole")
	s = env.recruit(t, s, "o3", "Cal Diaz")
	s.Officers[1].Rank = domain.RankSergeant
	s.Officers[1].Salary = 3500
	s.Officers[2].Status = domain.OfficerKIA
	s.Officers[2].Health = 0
	s.Officers[0].IsInjured = true
	s.Officers[0].InjuryDays = 1
	s.Officers[0].Status = domain.OfficerInjured
	s.Officers[0].Health = 50

	next, rep, err := env.Engine.AdvanceDay(s)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Payroll != 4000 || rep.NetBudget != 10000-4000 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if next.Budget != s.Budget+10000-4000 || next.Day != 2 {
		t.Fatalf("budget not conserved: %d -> %d", s.Budget, next.Budget)
	}
	ana, _ := env.Engine.Officer(next, "o1")
	if ana.Status != domain.OfficerAvailable || ana.IsInjured || ana.Health != 70 {
		t.Fatalf("recovery wrong: %+v", ana)
	}
	ben, _ := env.Engine.Officer(next, "o2")
	if ben.Morale != 72 {
		t.Fatalf("rest morale: %d", ben.Morale)
	}
	cal, _ := env.Engine.Officer(next, "o3")
	if cal.Morale != 70 || cal.Status != domain.OfficerKIA {
		t.Fatalf("KIA officer touched: %+v", cal)
	}
	if len(rep.Recovered) != 1 {
		t.Fatalf("recovered: %v", rep.Recovered)
	}
	checkInvariants(t, next)
}

func TestCommunityEventRewardsSettleAtDayEnd(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	s = env.recruit(t, s, "o1", "Ana Ruiz")
	s = env.Engine.AddCommunityEvent(s, domain.CommunityEvent{
		ID:      "c1",
		Title:   "School Visit",
		Type:    domain.CommunityPublicRelations,
		Rewards: domain.EventRewards{Budget: 2000, Reputation: 4},
	})
	s, err := env.Engine.ScheduleEvent(s, "c1", []string{"o1"})
	if err != nil {
		t.Fatal(err)
	}
	checkInvariants(t, s)
	if _, err := env.Engine.DismissOfficer(s, "o1", "late"); !errors.Is(err, engine.ErrOfficerUnavailable) {
		t.Fatalf("deployed officer dismissed: %v", err)
	}
	next, rep, err := env.Engine.AdvanceDay(s)
	if err != nil {
		t.Fatal(err)
	}
	if rep.EventBudget != 2000 || next.Budget != s.Budget+10000+2000-500 || next.Reputation != s.Reputation+4 {
		t.Fatalf("event rewards: %+v budget=%d", rep, next.Budget)
	}
	if len(next.AvailableEvents) != 0 || next.Officers[0].Status != domain.OfficerAvailable {
		t.Fatalf("events not cleared")
	}
	checkInvariants(t, next)

	cancelled, err := env.Engine.CancelEvent(s, "c1")
	if err != nil || cancelled.Officers[0].Status != domain.OfficerAvailable {
		t.Fatalf("cancel: %v", err)
	}
	checkInvariants(t, cancelled)
}

func TestUpgradeGearFundingGate(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	s = env.recruit(t, s, "o1", "Ana Ruiz")
	s.Officers[0].Gear.ArmorLevel = 2
	s.Budget = 1500
	if _, err := env.Engine.UpgradeGear(s, "o1", domain.GearArmor); !errors.Is(err, engine.ErrInsufficientFunds) {
		t.Fatalf("expected funds error, got %v", err)
	}
	s.Budget = 2000
	next, err := env.Engine.UpgradeGear(s, "o1", domain.GearArmor)
	if err != nil {
		t.Fatal(err)
	}
	if next.Budget != 0 || next.Officers[0].Gear.ArmorLevel != 3 {
		t.Fatalf("upgrade not applied: %+v budget=%d", next.Officers[0].Gear, next.Budget)
	}
	again, err := env.Engine.UpgradeGear(next, "o1", domain.GearArmor)
	if err != nil || len(again.GameLog) != len(next.GameLog) {
		t.Fatalf("maxed upgrade should be a no-op: %v", err)
	}
	if _, err := env.Engine.UpgradeGear(next, "ghost", domain.GearWeapon); err != nil {
		t.Fatalf("missing officer should be ignored: %v", err)
	}
}

func TestDismissAndRehire(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	s = env.recruit(t, s, "o1", "Ana Ruiz")
	s, err := env.Engine.DismissOfficer(s, "o1", "insubordination")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Officers) != 0 || s.LastDismissedOfficer == nil || s.GameLog[0].Message != "Dismissed Ana Ruiz: insubordination" {
		t.Fatalf("dismiss: %+v", s.GameLog[0])
	}
	s, err = env.Engine.RehireLastOfficer(s)
	if err != nil || len(s.Officers) != 1 || s.LastDismissedOfficer != nil {
		t.Fatalf("rehire: %v", err)
	}
	if _, err := env.Engine.RehireLastOfficer(s); !errors.Is(err, engine.ErrNoDismissedOfficer) {
		t.Fatalf("expected empty slot, got %v", err)
	}
}

func TestHostMoraleEvent(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	s = env.recruit(t, s, "o1", "Ana Ruiz")
	next, err := env.Engine.HostMoraleEvent(s, "bbq")
	if err != nil {
		t.Fatal(err)
	}
	if next.Budget != s.Budget-1500 || next.Officers[0].Morale != 80 {
		t.Fatalf("bbq: budget=%d morale=%d", next.Budget, next.Officers[0].Morale)
	}
	if _, err := env.Engine.HostMoraleEvent(s, "gala"); !errors.Is(err, engine.ErrMoraleEventNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCustodyPipeline(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	s = env.Engine.CaptureSuspect(s, domain.Suspect{ID: "s1", Name: "Vic Lane", Crime: "Armed robbery", IntelLevel: 60, Resistance: 40})
	if s.SuspectsInCustody[0].Status != domain.SuspectCustody {
		t.Fatalf("capture status %s", s.SuspectsInCustody[0].Status)
	}
	if _, err := env.Engine.ProcessTrial(s, "s1", domain.TrialOutcome{Verdict: "Guilty"}); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Fatalf("trial before charge: %v", err)
	}
	charged, err := env.Engine.ChargeSuspect(s, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if charged.Budget != s.Budget-1000 || charged.Reputation != s.Reputation+5 {
		t.Fatalf("charge costs: budget=%d rep=%d", charged.Budget, charged.Reputation)
	}
	sentenced, err := env.Engine.ProcessTrial(charged, "s1", domain.TrialOutcome{Verdict: "Guilty", Sentence: "15 years", ReputationImpact: 5, BudgetImpact: 2000})
	if err != nil {
		t.Fatal(err)
	}
	sp, _ := env.Engine.Suspect(sentenced, "s1")
	if sp.Status != domain.SuspectSentenced || sp.TrialSentence != "15 years" || sentenced.GameLog[0].Type != domain.LogSuccess {
		t.Fatalf("trial not recorded: %+v", sp)
	}
	archived, err := env.Engine.ArchiveSuspect(sentenced, "s1")
	if err != nil || len(archived.SuspectsInCustody) != 0 {
		t.Fatalf("archive: %v", err)
	}
	if _, err := env.Engine.ArchiveSuspect(s, "s1"); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Fatalf("archived a suspect still in custody: %v", err)
	}

	released, err := env.Engine.ReleaseSuspect(s, "s1")
	if err != nil || released.Reputation != s.Reputation-2 {
		t.Fatalf("release penalty: %v rep=%d", err, released.Reputation)
	}
	if _, err := env.Engine.RecruitCI(s, "s1"); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Fatalf("CI without intel: %v", err)
	}
}

func TestInterrogationUnlocksMission(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	for i := 1; i <= 5; i++ {
		s = env.recruit(t, s, fmt.Sprintf("o%d", i), fmt.Sprintf("Officer %d", i))
	}
	s = env.Engine.CaptureSuspect(s, domain.Suspect{ID: "s1", Name: "Vic Lane"})
	s, err := env.Engine.MarkInterrogated(s, "s1")
	if err != nil {
		t.Fatal(err)
	}
	s.MissionsAttemptedToday = s.MaxMissionsPerDay
	next, err := env.Engine.ResolveInterrogation(s, "s1", domain.InterrogationResult{
		Success:         true,
		Intel:           "The crew meets at the docks.",
		ReputationBonus: 6,
		BudgetBonus:     1000,
		UnlockedMission: &domain.UnlockedMission{Title: "Dock Raid", Description: "Hit the warehouse.", Type: domain.MissionDrugRaid, RiskLevel: 8, RewardBudget: 9000},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(next.ActiveMissions) != 1 {
		t.Fatalf("expected unlocked mission")
	}
	m := next.ActiveMissions[0]
	if m.Priority != domain.PriorityHigh || m.RequiredOfficers != 3 || m.Rewards.Experience != 150 || m.Rewards.Reputation != 6 || m.Rewards.Budget != 9000 {
		t.Fatalf("unlocked mission wrong: %+v", m)
	}
	if !strings.HasPrefix(m.Briefing, "INTEL-DRIVEN OPERATION: Based on the interrogation of Vic Lane") {
		t.Fatalf("briefing %q", m.Briefing)
	}
	if next.MissionsAttemptedToday != s.MissionsAttemptedToday {
		t.Fatalf("unlocked mission counted against quota")
	}
	sp, _ := env.Engine.Suspect(next, "s1")
	if sp.Status != domain.SuspectCharged || sp.IntelRevealed == "" {
		t.Fatalf("suspect not charged: %+v", sp)
	}
	informant, err := env.Engine.RecruitCI(next, "s1")
	if err != nil || informant.Budget != next.Budget-2000 {
		t.Fatalf("recruit CI: %v", err)
	}
	checkInvariants(t, next)
}

func TestNemesisLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.Config.Rules.SuspectCaptureChance = 0
	s := env.start(t)
	s = env.recruit(t, s, "o1", "Ana Ruiz")
	s = env.Engine.CaptureSuspect(s, domain.Suspect{ID: "s1", Name: "Vic Lane"})
	if _, err := env.Engine.CreateNemesis(s, "s1", domain.Nemesis{}); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Fatalf("nemesis from custody: %v", err)
	}
	s, err := env.Engine.ReleaseSuspect(s, "s1")
	if err != nil {
		t.Fatal(err)
	}
	s, err = env.Engine.CreateNemesis(s, "s1", domain.Nemesis{ID: "n1", Alias: "The Ghost", GrudgeLevel: 5})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.CreateNemesis(s, "s1", domain.Nemesis{}); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Fatalf("duplicate nemesis: %v", err)
	}
	s, err = env.Engine.TriggerNemesisMission(s, "n1", domain.Mission{ID: "m1", Title: "Ghost Heist"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Nemeses[0].Status != domain.NemesisPlotting || s.Nemeses[0].EncounterCount != 1 || s.MissionsAttemptedToday != 1 {
		t.Fatalf("trigger: %+v", s.Nemeses[0])
	}
	s, err = env.Engine.AssignOfficersToMission(s, "m1", []string{"o1"})
	if err != nil {
		t.Fatal(err)
	}
	s, err = env.Engine.AddMissionEvent(s, "m1", domain.MissionEvent{ID: "e1", Type: domain.EventFailure})
	if err != nil {
		t.Fatal(err)
	}
	ev, _, _, err := env.Engine.DecisionContext(s, "e1")
	if err != nil {
		t.Fatal(err)
	}
	failed, _, err := env.Engine.MakeDecision(s, "e1", engine.TerminalResult(ev))
	if err != nil {
		t.Fatal(err)
	}
	if n := failed.Nemeses[0]; n.Status != domain.NemesisAtLarge || n.GrudgeLevel != 6 {
		t.Fatalf("nemesis after failure: %+v", n)
	}
	checkInvariants(t, failed)

	won, _, err := env.Engine.MakeDecision(s, "e1", domain.DecisionResult{MissionComplete: true, Success: true})
	if err != nil {
		t.Fatal(err)
	}
	if won.Nemeses[0].Status != domain.NemesisCaptured {
		t.Fatalf("nemesis not captured")
	}
	if _, err := env.Engine.TriggerNemesisMission(won, "n1", domain.Mission{}); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Fatalf("captured nemesis struck again: %v", err)
	}
}

func TestRandomEvents(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	s = env.recruit(t, s, "o1", "Ana Ruiz")
	ev := domain.RandomEvent{
		Title: "Media Spotlight",
		Type:  domain.RandomDrama,
		Choices: []domain.RandomEventChoice{
			{ID: "talk", Label: "Give an interview", Effects: domain.RandomEffects{ReputationChange: 5, MoraleChange: 3}},
			{ID: "gamble", Label: "Stage a raid for cameras", Effects: domain.RandomEffects{BudgetChange: 4000}, Risk: 100},
		},
	}
	s, err := env.Engine.SetRandomEvent(s, ev)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.SetRandomEvent(s, ev); !errors.Is(err, engine.ErrRandomEventPending) {
		t.Fatalf("expected pending error, got %v", err)
	}
	if _, _, err := env.Engine.ResolveRandomEvent(s, "nope"); !errors.Is(err, engine.ErrChoiceNotFound) {
		t.Fatalf("expected choice error, got %v", err)
	}

	talked, out, err := env.Engine.ResolveRandomEvent(s, "talk")
	if err != nil || out.Backfired {
		t.Fatalf("talk: %v %+v", err, out)
	}
	if talked.Reputation != s.Reputation+5 || talked.Officers[0].Morale != 73 || talked.PendingRandomEvent != nil {
		t.Fatalf("effects not applied: rep=%d morale=%d", talked.Reputation, talked.Officers[0].Morale)
	}

	gambled, out, err := env.Engine.ResolveRandomEvent(s, "gamble")
	if err != nil || !out.Backfired || gambled.Budget != s.Budget-4000 {
		t.Fatalf("backfire: %v %+v budget=%d", err, out, gambled.Budget)
	}

	dismissed, err := env.Engine.DismissRandomEvent(s)
	if err != nil || dismissed.PendingRandomEvent != nil || dismissed.Budget != s.Budget {
		t.Fatalf("dismiss: %v", err)
	}
	if _, err := env.Engine.DismissRandomEvent(dismissed); !errors.Is(err, engine.ErrNoRandomEvent) {
		t.Fatalf("expected nothing pending, got %v", err)
	}
}

func TestRandomEventBonusMission(t *testing.T) {
	env := newTestEnv(t)
	s := env.start(t)
	s, err := env.Engine.SetRandomEvent(s, domain.RandomEvent{
		Title:   "Tip Line",
		Type:    domain.RandomOpportunity,
		Effects: domain.RandomEffects{BonusMission: &domain.Mission{Title: "Stash House", RiskLevel: 6}},
	})
	if err != nil {
		t.Fatal(err)
	}
	next, _, err := env.Engine.ResolveRandomEvent(s, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(next.ActiveMissions) != 1 || next.MissionsAttemptedToday != 0 {
		t.Fatalf("bonus mission: %d missions, quota %d", len(next.ActiveMissions), next.MissionsAttemptedToday)
	}
	checkInvariants(t, next)
}
