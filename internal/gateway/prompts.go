package gateway

import (
	"fmt"
	"strings"

	"watchcommander/internal/domain"
)

const systemPrompt = `You are the game master for "SWAT Watch Commander", a realistic tactical police simulation.
You generate SWAT mission scenarios, officer profiles, tactical events and their outcomes.
Keep everything grounded in real SWAT operations: dramatic, never absurd, and fair to the
commander's choices. Account for officer specializations, skills, gear and the risk involved.
Always answer in valid JSON in the exact shape each request asks for.`

func chat(prompt string) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}
}

func joinEnum[T ~string](values []T) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", string(v))
	}
	return strings.Join(quoted, " | ")
}

func officerLine(o domain.Officer) string {
	return fmt.Sprintf("- %s (%s, %s) - Health: %d%%, Skills: Marksmanship %d, Tactics %d, Composure %d. Gear: Armor Lvl %d, Weapons Lvl %d, Utility Lvl %d",
		o.Name, o.Rank, o.Specialization, o.Health,
		o.Skills.Marksmanship, o.Skills.Tactics, o.Skills.Composure,
		o.Gear.ArmorLevel, o.Gear.WeaponLevel, o.Gear.UtilityLevel)
}

func teamLines(team []domain.Officer) string {
	if len(team) == 0 {
		return "- (no officers)"
	}
	lines := make([]string, len(team))
	for i, o := range team {
		lines[i] = officerLine(o)
	}
	return strings.Join(lines, "\n")
}

func recruitPrompt(existingNames []string, specialization string) string {
	var b strings.Builder
	b.WriteString("Generate a realistic SWAT officer profile.\n")
	if specialization != "" {
		fmt.Fprintf(&b, "The officer MUST have the specialization: %s\n", specialization)
	} else {
		fmt.Fprintf(&b, "Choose a specialization from: %s\n", joinEnum(domain.Specializations))
	}
	if len(existingNames) > 0 {
		fmt.Fprintf(&b, "Avoid these names already in the squad: %s\n", strings.Join(existingNames, ", "))
	}
	fmt.Fprintf(&b, `
Respond with ONLY valid JSON in this exact format:
{
  "name": "Full Name",
  "nickname": "Optional call sign",
  "rank": %s,
  "specialization": %s,
  "experience": 0-100,
  "morale": 60-100,
  "health": 80-100,
  "skills": {"marksmanship": 30-100, "tactics": 30-100, "fitness": 30-100, "leadership": 20-100, "composure": 30-100},
  "backstory": "2-3 sentence backstory including training and notable achievements"
}`, joinEnum(domain.Ranks), joinEnum(domain.Specializations))
	return b.String()
}

func missionShape(types []domain.MissionType, requiredOfficers string, reputation string) string {
	return fmt.Sprintf(`{
  "title": "Short mission title",
  "description": "Brief 1-2 sentence description",
  "type": %s,
  "priority": %s,
  "location": "Specific location",
  "estimatedDuration": "e.g. 2-4 hours",
  "requiredOfficers": %s,
  "requiredSpecializations": ["recommended", "specializations"],
  "riskLevel": 1-10,
  "rewards": {"experience": 50-200, "reputation": %s, "budget": 5000-50000},
  "briefing": "Detailed 3-5 sentence tactical briefing with intel, suspects, hostages, layout and threats"
}`, joinEnum(types), joinEnum(domain.Priorities), requiredOfficers, reputation)
}

func missionPrompt(reputation, day, squadSize int) string {
	required := max(2, min(8, squadSize*3/2))
	return fmt.Sprintf(`Generate a realistic SWAT mission scenario.
Current squad reputation: %d/100
Current day: %d
Current squad size: %d officers.

Higher reputation means more critical, high-profile missions become available.

Respond with ONLY valid JSON in this exact format:
%s`, reputation, day, squadSize, missionShape(domain.StandardMissionTypes, fmt.Sprint(required), "5-25"))
}

func customMissionPrompt(description string, reputation int) string {
	return fmt.Sprintf(`A commander has described a custom SWAT mission. Turn it into a structured mission.

Commander's description: %q
Current squad reputation: %d/100

If the description is unethical, illegal or corrupt, still generate the mission but make the
reputation reward HEAVILY NEGATIVE (-30 to -50). Helpful community work earns positive reputation.

Respond with ONLY valid JSON in this exact format:
%s`, description, reputation, missionShape(domain.MissionTypes, "1-8", "-50 to 50"))
}

func missionEventPrompt(m domain.Mission, team []domain.Officer, history []domain.MissionEvent) string {
	var past strings.Builder
	for _, ev := range history {
		fmt.Fprintf(&past, "- %s", ev.Description)
		if ev.Outcome != "" {
			fmt.Fprintf(&past, " (Outcome: %s)", ev.Outcome)
		}
		past.WriteString("\n")
	}
	if past.Len() == 0 {
		past.WriteString("Mission just started\n")
	}
	wrapUp := ""
	if len(history) > 3 {
		wrapUp = "Consider wrapping up the mission soon with a climactic event.\n"
	}
	return fmt.Sprintf(`Generate the next event for an ongoing SWAT mission.

Mission: %s
Type: %s
Location: %s
Briefing: %s
Risk Level: %d/10

Assigned Officers:
%s

Previous Events:
%s
Generate a realistic tactical event that requires the commander's decision.
Higher gear levels should open more tactical options or add safety.
%s
Respond with ONLY valid JSON in this exact format:
{
  "description": "What is happening (2-3 sentences)",
  "type": %s,
  "options": [
    {"id": "option1", "label": "Short action label", "description": "What this choice involves", "riskLevel": 1-10, "requiredSpecialization": "Optional specialist"},
    {"id": "option2", "label": "Alternative action", "description": "What this alternative involves", "riskLevel": 1-10}
  ]
}

For type "Success" or "Failure" options may be an empty array; these end the mission.`,
		m.Title, m.Type, m.Location, m.Briefing, m.RiskLevel, teamLines(team), past.String(), wrapUp, joinEnum(domain.EventTypes))
}

// CustomOptionID marks a free-form directive typed by the commander instead of
// one of the generated options.
const CustomOptionID = "custom"

func decisionPrompt(m domain.Mission, ev domain.MissionEvent, opt domain.MissionOption, team []domain.Officer) string {
	risk := fmt.Sprintf("%d/10", opt.RiskLevel)
	custom := ""
	if opt.ID == CustomOptionID {
		risk = "To be assessed based on complexity"
		custom = "IMPORTANT: This is a CUSTOM DIRECTIVE from the Commander. Assess its tactical soundness, risk and chance of success given the situation and the squad.\n"
	}
	specialist := ""
	if opt.RequiredSpecialization != "" {
		has := "does NOT have"
		for _, o := range team {
			if string(o.Specialization) == opt.RequiredSpecialization {
				has = "HAS"
				break
			}
		}
		specialist = fmt.Sprintf("Note: this action benefits from a %s. The team %s this specialist.\n", opt.RequiredSpecialization, has)
	}
	return fmt.Sprintf(`Resolve a tactical decision in a SWAT mission.

Mission: %s (%s)
Current Event: %s
Chosen Action: %s - %s
Risk Level of Choice: %s
%s
Officers involved:
%s
%s
Rules:
1. Tactically suicidal actions MUST be punished with casualties or mission failure.
2. SWAT work is dangerous. Reckless or outgunned plans fail or cause injuries.
3. Judge custom directives strictly. Nonsense leads to failure or chaos.
4. Respect officer skills. Low-stat rookies panic and miss more than veterans.
Use the officers' exact full names in casualties and injuries.

Respond with ONLY valid JSON:
{
  "outcome": "2-3 sentences describing what happened",
  "casualties": ["names of officers Killed In Action, or empty"],
  "injuries": ["names of injured officers, or empty"],
  "missionComplete": true/false,
  "success": true/false
}`, m.Title, m.Type, ev.Description, opt.Label, opt.Description, risk, custom, teamLines(team), specialist)
}

func communityEventPrompt(reputation int) string {
	return fmt.Sprintf(`Generate a realistic SWAT community or charity event.
Current squad reputation: %d/100

These events raise money for charity, the community or the squad itself.
Higher reputation leads to bigger, more high-profile events.

Respond with ONLY valid JSON in this exact format:
{
  "title": "Short event title",
  "description": "Brief 1-2 sentence description",
  "type": %s,
  "requirements": {"minOfficers": 1-4, "requiredSpecialization": "Optional lead specialist"},
  "rewards": {"budget": 1000-15000, "reputation": 2-10}
}`, reputation, joinEnum(domain.CommunityEventTypes))
}

func suspectPrompt(m domain.Mission) string {
	return fmt.Sprintf(`Generate a realistic suspect apprehended during a SWAT mission.

Mission: %s (%s)
Location: %s

Respond with ONLY valid JSON:
{
  "name": "Full Name",
  "crime": "Specific crime related to the mission",
  "personality": "e.g. Cocky, Terrified, Professional Criminal, Mentally Unstable, Cooperative",
  "intelLevel": 20-90,
  "resistance": 30-95
}`, m.Title, m.Type, m.Location)
}

func interrogationMessages(sp domain.Suspect, commander string, history []domain.InterrogationMessage, message string) []Message {
	system := fmt.Sprintf(`You are playing a suspect in an interrogation room.

Suspect Name: %s
Crime: %s
Personality: %s
Resistance: %d/100

Interrogator: Commander %s

Stay in character. Your answers reflect your personality and resistance.
If the commander is clever, aggressive or empathetic you may reveal snippets of truth, stay silent or lie.
Keep it brief (1-3 sentences). Respond ONLY with the suspect's direct speech.`, sp.Name, sp.Crime, sp.Personality, sp.Resistance, commander)
	msgs := []Message{{Role: "system", Content: system}}
	for _, h := range history {
		role := "assistant"
		if h.Role == "Commander" {
			role = "user"
		}
		msgs = append(msgs, Message{Role: role, Content: h.Text})
	}
	return append(msgs, Message{Role: "user", Content: message})
}

func transcript(history []domain.InterrogationMessage) string {
	lines := make([]string, len(history))
	for i, h := range history {
		lines[i] = h.Role + ": " + h.Text
	}
	return strings.Join(lines, "\n")
}

func resolveInterrogationPrompt(sp domain.Suspect, history []domain.InterrogationMessage) string {
	return fmt.Sprintf(`Based on this interrogation, decide whether the suspect cracked and gave up valuable intel.

Suspect: %s
Personality: %s
Original Resistance: %d/100

Transcript:
%s

Judge whether the commander's tactics lowered the suspect's resistance enough to get the truth.

Respond with ONLY valid JSON:
{
  "success": true/false,
  "intel": "One sentence describing the intel gathered, or why they did not crack",
  "reputationBonus": 0-15,
  "budgetBonus": 0-10000,
  "unlockedMission": {
    "title": "Short title for a follow-up operation",
    "description": "How the mission relates to the intel",
    "type": %s,
    "riskLevel": 1-10,
    "location": "A related address",
    "rewardBudget": 10000-50000
  }
}
Include unlockedMission only when success is true and the intel is significant.`,
		sp.Name, sp.Personality, sp.Resistance, transcript(history),
		joinEnum([]domain.MissionType{domain.MissionDrugRaid, domain.MissionHostageRescue, domain.MissionHighRiskWarrant, domain.MissionBombThreat}))
}

func trialPrompt(sp domain.Suspect, commander string) string {
	intel := sp.IntelRevealed
	if intel == "" {
		intel = "None"
	}
	return fmt.Sprintf(`Generate a realistic trial outcome for a suspect apprehended by SWAT.

Suspect: %s
Crime: %s
Intel Gathered: %s
Personality: %s

Commander in charge: %s

Gathered intel makes a conviction more likely and more severe.

Respond with ONLY valid JSON:
{
  "verdict": "Guilty" | "Not Guilty" | "Case Dismissed",
  "sentence": "e.g. 15 years in federal prison, 5 years probation",
  "reputationImpact": -10 to 20,
  "budgetImpact": -5000 to 15000
}`, sp.Name, sp.Crime, intel, sp.Personality, commander)
}

func randomEventPrompt(s domain.GameState) string {
	var roster []string
	for _, o := range s.Officers {
		if o.OnDuty() {
			roster = append(roster, fmt.Sprintf("%s (%s, morale %d)", o.Name, o.Specialization, o.Morale))
		}
	}
	return fmt.Sprintf(`Generate an unexpected event for the start of a SWAT squad's shift.

Squad: %s
Day: %d
Reputation: %d/100
Budget: %s
Officers: %s

Respond with ONLY valid JSON:
{
  "title": "Short headline",
  "description": "1-2 sentences",
  "type": %s,
  "effects": {"budgetChange": -10000 to 10000, "reputationChange": -10 to 10, "moraleChange": -15 to 15, "officerAffected": "Optional exact officer name"},
  "choices": [
    {"id": "choice1", "label": "Response", "effects": {"budgetChange": 0, "reputationChange": 0, "moraleChange": 0}, "risk": 0-100}
  ]
}
Choices are optional. A choice's risk is the percent chance it backfires.`,
		s.SquadName, s.Day, s.Reputation, domain.FormatMoney(s.Budget), strings.Join(roster, ", "), joinEnum(domain.RandomEventTypes))
}

func nemesisPrompt(sp domain.Suspect, squad string) string {
	return fmt.Sprintf(`A released suspect is coming back to haunt the SWAT squad %s.

Suspect: %s
Crime: %s
Personality: %s

Turn them into a recurring antagonist.

Respond with ONLY valid JSON:
{
  "alias": "Street alias",
  "grudgeLevel": 1-10,
  "signature": "Their calling card or modus operandi",
  "backstory": "2 sentences on why they hold a grudge against the squad"
}`, squad, sp.Name, sp.Crime, sp.Personality)
}

func nemesisMissionPrompt(n domain.Nemesis, reputation, squadSize int) string {
	required := max(2, min(8, squadSize))
	return fmt.Sprintf(`The nemesis %s ("%s") strikes again.
Signature: %s
Grudge level: %d/10
Previous encounters: %d
Squad reputation: %d/100

Generate a mission the nemesis orchestrated. It should reflect their signature and escalate with the grudge.

Respond with ONLY valid JSON in this exact format:
%s`, n.Name, n.Alias, n.Signature, n.GrudgeLevel, n.EncounterCount, reputation,
		missionShape(domain.StandardMissionTypes, fmt.Sprint(required), "-10 to 30"))
}

func eulogyPrompt(o domain.Officer, squad string) string {
	return fmt.Sprintf(`Write a solemn 2-3 sentence memorial tribute for a fallen SWAT officer.
Officer Name: %s
Rank: %s
Specialization: %s
Missions Completed: %d
Squad: %s

The tone should be respectful and honorable. Focus on their sacrifice and service to the city.
Respond with the tribute text only.`, o.Name, o.Rank, o.Specialization, o.MissionsCompleted, squad)
}

func dismissalPrompt(o domain.Officer, reason string) string {
	return fmt.Sprintf(`Write realistic dialogue for dismissing a SWAT officer from the team.

Officer: %s
Rank: %s
Specialization: %s
Experience level: %d%%
Missions completed: %d
Reason for dismissal: %s

A brief professional exchange: 2-3 lines from the commander, 1-2 lines from the officer.
Respond with just the dialogue text, no JSON.`, o.Name, o.Rank, o.Specialization, o.Experience, o.MissionsCompleted, reason)
}
