package oracle

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/tjfontaine/autodiag/internal/domain"
)

const notSpecified = "Not specified"

const vehicleBlock = `Vehicle Information:
- Make: {{.Vehicle.Make}}
- Model: {{.Vehicle.Model}}
- Year: {{.Vehicle.Year}}
- Engine: {{.Vehicle.Engine}}
- Mileage: {{.Vehicle.Mileage}}`

const resultSchemaText = `{
  "analysis": "Comprehensive explanation of what these issues indicate and how they might be related",
  "possibleCauses": ["Array of most likely root causes based on the symptoms"],
  "recommendedActions": ["Array of recommended diagnostic steps and repairs, prioritized by importance"],
  "estimatedCost": {
    "min": minimum_repair_cost_in_USD,
    "max": maximum_repair_cost_in_USD
  },
  "urgency": "low|medium|high|critical"
}`

const issuesPrompt = `You are an expert automotive diagnostic AI. A car owner is experiencing the following issues with their vehicle. Provide comprehensive diagnostic information.

{{template "vehicle" .}}

Issues Reported:
{{range $i, $is := .Issues}}{{if $i}}

{{end}}- {{$is.Description}} ({{$is.Category}}, {{$is.Severity}} priority)
  Common causes: {{join $is.CommonCauses ", "}}{{end}}

Please provide a detailed analysis in the following JSON format:
{{template "result" .}}

Focus on practical, actionable advice. Consider the vehicle's age and mileage in your recommendations. If multiple issues are related, explain the connections. Prioritize safety-critical issues.
`

const symptomsPrompt = `You are an expert automotive diagnostic AI. A vehicle owner is experiencing symptoms but doesn't have access to OBD-II codes. Analyze the symptoms and provide diagnostic guidance.

{{template "vehicle" .}}

Reported Symptoms:
{{range .Symptoms}}- {{.Category}}: {{.Description}}
{{end}}
Please provide a diagnostic analysis in the following JSON format:
{{template "result" .}}

Consider the vehicle's age and mileage. If symptoms are safety-critical, prioritize urgent recommendations.
`

const freeTextPrompt = `You are an expert automotive diagnostic AI. A car owner has described their vehicle problem, but it doesn't match our predefined issue database. Help them by analyzing their input and suggesting relevant car issues.

User's Description: "{{.Text}}"

{{template "vehicle" .}}

Please provide a response in the following JSON format:
{
  "analysis": "Brief analysis of what the user might be experiencing based on their description",
  "suggestedIssues": [
    {
      "description": "Natural language description of a potential issue",
      "category": "Engine|Brakes|Transmission|Electrical|Suspension|Steering|Exhaust|Climate Control|Fuel System|Tires",
      "severity": "low|medium|high|critical",
      "reasoning": "Why this issue might match their description"
    }
  ],
  "clarifyingQuestions": [
    "Specific questions to help narrow down the problem",
    "Questions about when the issue occurs",
    "Questions about additional symptoms"
  ]
}

Focus on:
1. Interpreting their description even if it's vague or uses non-technical terms
2. Suggesting 2-4 most likely issues that could match their description
3. Asking 3-5 clarifying questions to help diagnose the problem more accurately
4. Being helpful and encouraging, not dismissive

Consider common car problems and how non-technical users might describe them.
`

const turnSchemaText = `{
  "message": "The next question to ask the owner",
  "responseOptions": [
    {"id": "short-id", "text": "Answer the owner can pick", "category": "Engine|Brakes|Transmission|Electrical|Suspension|Steering|Exhaust|Climate Control|Fuel System|Tires"}
  ],
  "currentStep": current_step_number,
  "totalSteps": {{.TotalSteps}},
  "analysis": "What you have learned so far",
  "finalDiagnosis": null
}`

const startPrompt = `You are an expert automotive diagnostic AI guiding a car owner through a short multiple-choice interview to find the cause of a problem that doesn't match our predefined issue database.

Owner's Description: "{{.Text}}"

{{template "vehicle" .}}

Ask the first question. Offer 3-5 short answer options the owner can pick from. The interview lasts at most {{.TotalSteps}} questions.

Respond in the following JSON format:
{{template "turn" .}}
`

const continuePrompt = `You are an expert automotive diagnostic AI guiding a car owner through a short multiple-choice interview to find the cause of a vehicle problem.

Owner's Description: "{{.Text}}"

{{template "vehicle" .}}

Interview so far (step {{.Step}} of {{.TotalSteps}}):
{{range $i, $e := .History}}{{inc $i}}. Q: {{$e.Question}}
   A: {{$e.Answer}}
{{end}}
{{if .Last}}This is the last step. You must return a final diagnosis now.{{else}}If you are confident about the cause, return a final diagnosis. Otherwise ask the next question with 3-5 short answer options.{{end}}

Respond in the following JSON format:
{{template "turn" .}}

When you return a final diagnosis, set "finalDiagnosis" to an object in this format and leave "responseOptions" empty:
{{template "result" .}}
`

const explainPrompt = `Explain the automotive diagnostic trouble code "{{.Code}}" in simple, easy-to-understand terms.
Include:
1. What system it affects
2. What the code means in plain English
3. Common symptoms
4. Typical causes
5. General repair approach

Keep the explanation concise but informative for a car owner.
`

var prompts = template.Must(template.New("vehicle").Funcs(template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}).Parse(vehicleBlock))

func init() {
	for name, text := range map[string]string{
		"result":   resultSchemaText,
		"turn":     turnSchemaText,
		"issues":   issuesPrompt,
		"symptoms": symptomsPrompt,
		"freetext": freeTextPrompt,
		"start":    startPrompt,
		"continue": continuePrompt,
		"explain":  explainPrompt,
	} {
		template.Must(prompts.New(name).Parse(text))
	}
}

// vehicleView renders optional vehicle fields as "Not specified".
type vehicleView struct {
	Make, Model, Year, Engine, Mileage string
}

func newVehicleView(v domain.VehicleInfo) vehicleView {
	view := vehicleView{
		Make:    orNotSpecified(v.Make),
		Model:   orNotSpecified(v.Model),
		Year:    notSpecified,
		Engine:  orNotSpecified(v.Engine),
		Mileage: notSpecified,
	}
	if v.Year > 0 {
		view.Year = fmt.Sprint(v.Year)
	}
	if v.Mileage != nil && *v.Mileage > 0 {
		view.Mileage = fmt.Sprintf("%d miles", *v.Mileage)
	}
	return view
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

type promptData struct {
	Vehicle    vehicleView
	Issues     []domain.Issue
	Symptoms   []domain.Symptom
	Text       string
	Code       string
	History    []domain.Exchange
	Step       int
	TotalSteps int
	Last       bool
}

func render(name string, data promptData) (string, error) {
	var sb strings.Builder
	if err := prompts.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	return sb.String(), nil
}
