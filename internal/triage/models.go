package triage

// IntakeData is the demographic and symptom record collected for one visit.
// All fields are free-text as entered by the patient; it is mutable during
// intake and frozen once it becomes part of a committed record.
type IntakeData struct {
	PhoneNumber     string `json:"phone_number"`
	FullName        string `json:"full_name"`
	Relationship    string `json:"relationship"`
	Age             string `json:"age"`
	Sex             string `json:"sex"`
	BloodGroup      string `json:"blood_group"`
	Weight          string `json:"weight"`
	Height          string `json:"height"`
	CurrentSymptoms string `json:"current_symptoms"`
	Conditions      string `json:"conditions"`
	Medications     string `json:"medications"`
	Allergies       string `json:"allergies"`
	Smoking         string `json:"smoking"`
	Alcohol         string `json:"alcohol"`
	Pregnancy       string `json:"pregnancy"`
	Surgeries       string `json:"surgeries"`
	LabResults      string `json:"lab_results"`
	Vitals          string `json:"vitals"`
}

// Probability is the ordinal likelihood attached to a probable condition.
// It is display-only and never compared numerically.
type Probability string

const (
	ProbabilityLow      Probability = "Low"
	ProbabilityModerate Probability = "Moderate"
	ProbabilityHigh     Probability = "High"
)

// ProbableCondition is one (condition, likelihood, rationale) tuple from a
// triage report.
type ProbableCondition struct {
	Name        string      `json:"name"`
	Probability Probability `json:"probability"`
	Reason      string      `json:"reason"`
}

// Question is a single multiple-choice clarifying question produced by the
// assistant. Options map option id -> option text; insertion order is not
// significant.
type Question struct {
	ID            string            `json:"id"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	AllowMultiple bool              `json:"allow_multiple"`
}

// QuestionBatch is one round of clarifying questions together with the
// assistant's running symptom summary.
type QuestionBatch struct {
	SymptomSummary string     `json:"symptom_summary"`
	Questions      []Question `json:"questions"`
}

// Report is a terminal triage result: no outstanding questions, eligible for
// persistence as a patient record.
type Report struct {
	SymptomSummary            string              `json:"symptom_summary"`
	ProbableConditions        []ProbableCondition `json:"probable_conditions"`
	RedFlags                  []string            `json:"red_flags"`
	RecommendedTests          []string            `json:"recommended_tests"`
	RecommendedDepartment     string              `json:"recommended_department"`
	SelfCareAdvice            string              `json:"self_care_advice"`
	AyurvedicSuggestions      string              `json:"ayurvedic_suggestions"`
	EstimatedConsultationTime string              `json:"estimated_consultation_time"`
}

// TurnOutcome is the classified result of one assistant turn. Exactly one of
// Questions or Report is non-nil.
type TurnOutcome struct {
	Questions *QuestionBatch
	Report    *Report
}
