package triage

import (
	"fmt"
	"sort"
	"strings"
)

// Turn text sent to the assistant. The exchange-level persona, output schema
// and safety policy live with the assistant client; the state machine only
// formats the clinical content of each turn.

// IntakePrompt packages a completed intake into the opening assessment turn.
func IntakePrompt(d IntakeData) string {
	var b strings.Builder
	b.WriteString("NEW PATIENT ASSESSMENT START:\n")
	fmt.Fprintf(&b, "Name: %s | Age: %s | Sex: %s\n", d.FullName, d.Age, d.Sex)
	fmt.Fprintf(&b, "Symptoms: %s\n", d.CurrentSymptoms)
	fmt.Fprintf(&b, "Medical History: %s\n", d.Conditions)
	fmt.Fprintf(&b, "Meds: %s | Allergies: %s\n", d.Medications, d.Allergies)
	if d.Vitals != "" || d.LabResults != "" {
		fmt.Fprintf(&b, "Vitals: %s | Recent Labs: %s\n", d.Vitals, d.LabResults)
	}
	if d.Smoking != "" || d.Alcohol != "" || d.Pregnancy != "" {
		fmt.Fprintf(&b, "Lifestyle: smoking=%s alcohol=%s pregnancy=%s\n", d.Smoking, d.Alcohol, d.Pregnancy)
	}
	b.WriteString("\nInstructions: Generate ALL relevant clarifying questions to fully differentiate the condition in ONE GO.\n")
	return b.String()
}

// AnswersPrompt concatenates the question/answer pairs of a clarifying round
// into the follow-up turn. Selected option ids are resolved to their display
// text so the assistant sees what the patient actually read.
func AnswersPrompt(questions []Question, answers map[string][]string) string {
	var b strings.Builder
	b.WriteString("PATIENT COMPREHENSIVE FOLLOW-UP ANSWERS:\n")
	for _, q := range questions {
		selected := answers[q.ID]
		sort.Strings(selected)
		texts := make([]string, 0, len(selected))
		for _, id := range selected {
			texts = append(texts, q.Options[id])
		}
		fmt.Fprintf(&b, "Q: %s -> A: %s\n", q.Question, strings.Join(texts, ", "))
	}
	return b.String()
}
