package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jcjuneja-hospital/triage-service/internal/triage"
)

// turnPayload is the wire shape requested from the external service. It is a
// single schema for both outcomes; the clarifying_questions_needed flag plus
// the question list decide which one this turn actually is.
type turnPayload struct {
	SymptomSummary            string                     `json:"symptom_summary"`
	ClarifyingQuestionsNeeded string                     `json:"clarifying_questions_needed"`
	Questions                 []triage.Question          `json:"questions"`
	ProbableConditions        []triage.ProbableCondition `json:"probable_conditions"`
	RedFlags                  []string                   `json:"red_flags"`
	RecommendedTests          []string                   `json:"recommended_tests"`
	RecommendedDepartment     string                     `json:"recommended_department"`
	SelfCareAdvice            string                     `json:"self_care_advice"`
	AyurvedicSuggestions      string                     `json:"ayurvedic_suggestions"`
	EstimatedConsultationTime string                     `json:"estimated_consultation_time"`
}

// ParseTurn decodes one raw completion into a classified outcome.
//
// Precedence rule: the turn is terminal if and only if
// clarifying_questions_needed is "NO"; otherwise a non-empty question list is
// required; anything else is rejected rather than guessed.
func ParseTurn(raw string) (*triage.TurnOutcome, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}

	var payload turnPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	switch strings.ToUpper(strings.TrimSpace(payload.ClarifyingQuestionsNeeded)) {
	case "NO":
		if payload.SymptomSummary == "" || payload.RecommendedDepartment == "" {
			return nil, fmt.Errorf("%w: terminal report missing symptom summary or department", ErrMalformedResponse)
		}
		return &triage.TurnOutcome{Report: &triage.Report{
			SymptomSummary:            payload.SymptomSummary,
			ProbableConditions:        normalizeConditions(payload.ProbableConditions),
			RedFlags:                  payload.RedFlags,
			RecommendedTests:          payload.RecommendedTests,
			RecommendedDepartment:     payload.RecommendedDepartment,
			SelfCareAdvice:            payload.SelfCareAdvice,
			AyurvedicSuggestions:      payload.AyurvedicSuggestions,
			EstimatedConsultationTime: payload.EstimatedConsultationTime,
		}}, nil
	case "YES":
		if len(payload.Questions) == 0 {
			return nil, fmt.Errorf("%w: clarification requested without questions", ErrUnclassifiable)
		}
		for _, q := range payload.Questions {
			if q.ID == "" || q.Question == "" || len(q.Options) == 0 {
				return nil, fmt.Errorf("%w: question %q is incomplete", ErrMalformedResponse, q.ID)
			}
		}
		return &triage.TurnOutcome{Questions: &triage.QuestionBatch{
			SymptomSummary: payload.SymptomSummary,
			Questions:      payload.Questions,
		}}, nil
	default:
		return nil, fmt.Errorf("%w: clarifying_questions_needed=%q", ErrUnclassifiable, payload.ClarifyingQuestionsNeeded)
	}
}

// stripFences removes residual markdown code-fence markers. Schema
// enforcement by the service is best effort, so fenced JSON still shows up.
func stripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// normalizeConditions maps the probability shorthands some completions use
// ("Mod", lowercase variants) onto the canonical display levels.
func normalizeConditions(conditions []triage.ProbableCondition) []triage.ProbableCondition {
	for i, c := range conditions {
		switch strings.ToLower(strings.TrimSpace(string(c.Probability))) {
		case "low":
			conditions[i].Probability = triage.ProbabilityLow
		case "mod", "moderate", "medium":
			conditions[i].Probability = triage.ProbabilityModerate
		case "high":
			conditions[i].Probability = triage.ProbabilityHigh
		}
	}
	return conditions
}
