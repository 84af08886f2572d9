package assistant

import (
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// turnResponseFormat asks the service for schema-constrained generation
// matching turnPayload. Enforcement on the provider side is best effort;
// ParseTurn still cleans and validates everything that comes back.
func turnResponseFormat() *openai.ChatCompletionResponseFormat {
	schema := turnSchema()
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   "triage_turn",
			Schema: &schema,
		},
	}
}

func turnSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"symptom_summary":             {Type: jsonschema.String},
			"clarifying_questions_needed": {Type: jsonschema.String, Enum: []string{"YES", "NO"}},
			"questions": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"id":       {Type: jsonschema.String},
						"question": {Type: jsonschema.String},
						"options": {
							Type:                 jsonschema.Object,
							AdditionalProperties: jsonschema.Definition{Type: jsonschema.String},
						},
						"allow_multiple": {Type: jsonschema.Boolean},
					},
					Required: []string{"id", "question", "options", "allow_multiple"},
				},
			},
			"probable_conditions": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"name":        {Type: jsonschema.String},
						"probability": {Type: jsonschema.String, Enum: []string{"Low", "Moderate", "High"}},
						"reason":      {Type: jsonschema.String},
					},
					Required: []string{"name", "probability", "reason"},
				},
			},
			"red_flags":                   {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
			"recommended_tests":           {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
			"recommended_department":      {Type: jsonschema.String},
			"self_care_advice":            {Type: jsonschema.String},
			"ayurvedic_suggestions":       {Type: jsonschema.String},
			"estimated_consultation_time": {Type: jsonschema.String},
		},
		Required: []string{"symptom_summary", "clarifying_questions_needed"},
	}
}
