package oracle

import "google.golang.org/genai"

var nullable = true

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func strList(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: &genai.Schema{Type: genai.TypeString}}
}

func enum(values ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Format: "enum", Enum: values}
}

var levels = []string{"low", "medium", "high", "critical"}

var resultSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"analysis":           str("Explanation of what the issues or symptoms indicate"),
		"possibleCauses":     strList("Most likely root causes"),
		"recommendedActions": strList("Diagnostic steps and repairs, most important first"),
		"estimatedCost": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"min": {Type: genai.TypeNumber},
				"max": {Type: genai.TypeNumber},
			},
			Required: []string{"min", "max"},
		},
		"urgency": enum(levels...),
	},
	Required:         []string{"analysis", "possibleCauses", "recommendedActions", "urgency"},
	PropertyOrdering: []string{"analysis", "possibleCauses", "recommendedActions", "estimatedCost", "urgency"},
}

var freeTextSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"analysis": str("Brief analysis of what the owner might be experiencing"),
		"suggestedIssues": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"description": str("Natural language description of a potential issue"),
					"category":    str("Vehicle system the issue belongs to"),
					"severity":    enum(levels...),
					"reasoning":   str("Why this issue might match the description"),
				},
				Required: []string{"description", "category", "severity", "reasoning"},
			},
		},
		"clarifyingQuestions": strList("Questions that narrow down the problem"),
	},
	Required: []string{"analysis", "suggestedIssues", "clarifyingQuestions"},
}

var turnSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"message": str("The next question for the owner"),
		"responseOptions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":       str("Short option id"),
					"text":     str("Answer text"),
					"category": str("Vehicle system the answer points at"),
				},
				Required: []string{"id", "text"},
			},
		},
		"currentStep": {Type: genai.TypeInteger},
		"totalSteps":  {Type: genai.TypeInteger},
		"analysis":    str("What has been learned so far"),
		"finalDiagnosis": {
			Type:       resultSchema.Type,
			Properties: resultSchema.Properties,
			Required:   resultSchema.Required,
			Nullable:   &nullable,
		},
	},
	Required: []string{"message", "currentStep", "totalSteps"},
}
