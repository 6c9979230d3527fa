package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/viper"

	"watchcommander/internal/domain"
	"watchcommander/internal/session"
)

func printSummary(snap session.Snapshot) error {
	if viper.GetBool("json") {
		return printJSON(snap)
	}
	st := snap.State
	if st.CommanderName == "" {
		fmt.Println("No campaign in progress.")
	} else {
		fmt.Printf("Day %d | %s, %s | Budget %s | Reputation %d | Dispatch %d/%d\n",
			st.Day, st.CommanderName, st.SquadName, domain.FormatMoney(st.Budget), st.Reputation,
			st.MissionsAttemptedToday, st.MaxMissionsPerDay)
	}
	if len(st.GameLog) > 0 {
		fmt.Printf("Latest: [%s] %s\n", st.GameLog[0].Type, st.GameLog[0].Message)
	}
	if snap.Error != "" {
		fmt.Println("Error:", snap.Error)
	}
	return nil
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	return tw
}

func printOfficers(officers []domain.Officer) {
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Name", "Rank", "Specialization", "Status", "Health", "Morale", "XP", "Gear A/W/U", "Salary"})
	for _, o := range officers {
		status := string(o.Status)
		if o.InjuryDays > 0 {
			status = fmt.Sprintf("%s (%dd)", status, o.InjuryDays)
		}
		tw.AppendRow(table.Row{
			o.ID, o.Name, o.Rank, o.Specialization, status, o.Health, o.Morale, o.Experience,
			fmt.Sprintf("%d/%d/%d", o.Gear.ArmorLevel, o.Gear.WeaponLevel, o.Gear.UtilityLevel),
			domain.FormatMoney(o.Salary),
		})
	}
	tw.Render()
}

func printMissions(missions []domain.Mission) {
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Title", "Type", "Priority", "Risk", "Officers", "Reward", "Status", "Assigned"})
	for _, m := range missions {
		tw.AppendRow(table.Row{
			m.ID, m.Title, m.Type, m.Priority, m.RiskLevel, m.RequiredOfficers,
			domain.FormatMoney(m.Rewards.Budget), m.Status, strings.Join(m.AssignedOfficers, ","),
		})
	}
	tw.Render()
}

func printMissionEvents(events []domain.MissionEvent) {
	tw := newTable()
	tw.AppendHeader(table.Row{"Event", "Mission", "Type", "Description", "Options"})
	for _, ev := range events {
		if ev.Resolved {
			continue
		}
		opts := make([]string, 0, len(ev.Options))
		for _, o := range ev.Options {
			opts = append(opts, fmt.Sprintf("%s: %s (risk %d)", o.ID, o.Label, o.RiskLevel))
		}
		tw.AppendRow(table.Row{ev.ID, ev.MissionID, ev.Type, ev.Description, strings.Join(opts, "\n")})
	}
	tw.Render()
}

func printCommunityEvents(events []domain.CommunityEvent) {
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Title", "Type", "Min officers", "Reward", "Reputation", "Status"})
	for _, ev := range events {
		tw.AppendRow(table.Row{
			ev.ID, ev.Title, ev.Type, ev.Requirements.MinOfficers,
			domain.FormatMoney(ev.Rewards.Budget), ev.Rewards.Reputation, ev.Status,
		})
	}
	tw.Render()
}

func printMoraleEvents(events []domain.MoraleEvent) {
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Title", "Cost", "Morale", "Duration"})
	for _, ev := range events {
		tw.AppendRow(table.Row{ev.ID, ev.Title, domain.FormatMoney(ev.Cost), fmt.Sprintf("+%d", ev.MoraleBoost), ev.Duration})
	}
	tw.Render()
}

func printSuspects(suspects []domain.Suspect) {
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Name", "Crime", "Status", "Intel", "Resistance", "Revealed"})
	for _, sp := range suspects {
		tw.AppendRow(table.Row{sp.ID, sp.Name, sp.Crime, sp.Status, sp.IntelLevel, sp.Resistance, sp.IntelRevealed})
	}
	tw.Render()
}

func printNemeses(nemeses []domain.Nemesis) {
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Name", "Alias", "Status", "Grudge", "Encounters", "Signature"})
	for _, n := range nemeses {
		tw.AppendRow(table.Row{n.ID, n.Name, n.Alias, n.Status, n.GrudgeLevel, n.EncounterCount, n.Signature})
	}
	tw.Render()
}

func printGameLog(entries []domain.LogEntry) {
	tw := newTable()
	tw.AppendHeader(table.Row{"Time", "Type", "Message"})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.Timestamp.Format("2006-01-02 15:04:05"), e.Type, e.Message})
	}
	tw.Render()
}
