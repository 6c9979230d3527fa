package domain

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	MaxLogEntries = 100
	MaxGearLevel  = 3
	MaxGrudge     = 10
)

// CalculateSalary returns the daily salary for a rank.
func CalculateSalary(r Rank) int {
	switch r {
	case RankRookie:
		return 500
	case RankOfficer:
		return 1200
	case RankSeniorOfficer:
		return 2000
	case RankSergeant:
		return 3500
	case RankLieutenant:
		return 5000
	}
	return 1000
}

// PromotionFor returns the rank an officer holds after reaching experience exp.
// Officers are never demoted.
func PromotionFor(current Rank, exp int) Rank {
	switch {
	case exp >= 95 && current != RankLieutenant:
		return RankLieutenant
	case exp >= 75 && current.Order() >= 0 && current.Order() < RankSergeant.Order():
		return RankSergeant
	case exp >= 50 && (current == RankRookie || current == RankOfficer):
		return RankSeniorOfficer
	case exp >= 25 && current == RankRookie:
		return RankOfficer
	}
	return current
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampStat bounds a percentage-style stat to [0,100].
func ClampStat(v int) int { return Clamp(v, 0, 100) }

// NameMatches compares a generated name against an officer's name on record.
func NameMatches(generated, onRecord string) bool {
	return strings.EqualFold(strings.TrimSpace(generated), strings.TrimSpace(onRecord))
}

// AnyNameMatches reports whether any of names matches onRecord.
func AnyNameMatches(names []string, onRecord string) bool {
	for _, n := range names {
		if NameMatches(n, onRecord) {
			return true
		}
	}
	return false
}

// Assignable reports whether the officer may be deployed to a mission or event.
func (o Officer) Assignable() bool { return o.Status == OfficerAvailable }

// OnDuty reports whether the officer draws salary.
func (o Officer) OnDuty() bool { return o.Status != OfficerKIA }

// Payroll sums the salaries of all officers still on duty.
func Payroll(officers []Officer) int {
	total := 0
	for _, o := range officers {
		if o.OnDuty() {
			total += o.Salary
		}
	}
	return total
}

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount like "$12,500".
func FormatMoney(amount int) string {
	if amount < 0 {
		return moneyPrinter.Sprintf("-$%d", -amount)
	}
	return moneyPrinter.Sprintf("$%d", amount)
}

// DefaultMoraleEvents is the catalog offered to every squad.
func DefaultMoraleEvents() []MoraleEvent {
	return []MoraleEvent{
		{ID: "pizza-party", Title: "Pizza Party", Description: "Stack of pies in the briefing room after shift.", Type: MoralePizzaParty, Cost: 500, MoraleBoost: 5, Duration: "1 hour", Icon: "🍕"},
		{ID: "bbq", Title: "Squad BBQ", Description: "Grill out behind the armory with families invited.", Type: MoraleBBQ, Cost: 1500, MoraleBoost: 10, Duration: "Afternoon", Icon: "🍖"},
		{ID: "training-day", Title: "Training Day", Description: "Friendly competition on the range and in the kill house.", Type: MoraleTrainingDay, Cost: 3000, MoraleBoost: 12, Duration: "Full day", Icon: "🎯"},
		{ID: "awards-ceremony", Title: "Awards Ceremony", Description: "Formal recognition in front of the brass and the press.", Type: MoraleAwardsCeremony, Cost: 5000, MoraleBoost: 20, Duration: "Evening", Icon: "🏅"},
		{ID: "day-off", Title: "Day Off", Description: "Paid rest day for the whole squad.", Type: MoraleDayOff, Cost: 8000, MoraleBoost: 25, Duration: "Full day", Icon: "🏖"},
		{ID: "team-building", Title: "Team Building Retreat", Description: "Off-site exercises to tighten the unit.", Type: MoraleTeamBuilding, Cost: 10000, MoraleBoost: 30, Duration: "Weekend", Icon: "🤝"},
	}
}
