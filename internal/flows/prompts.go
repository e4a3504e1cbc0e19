package flows

import (
	"strings"
	"text/template"
)

const systemInstruction = `You assist law-enforcement analysts who monitor public social media for drug trafficking.
Answer only with the requested JSON object. Do not add introductory or explanatory text outside of it.`

var analyzeContentTemplate = template.Must(template.New("analyzeSocialMediaContent").Parse(
	`You are an AI assistant specializing in identifying drug trafficking activities on social media platforms.

Analyze the content from {{.Platform}} provided below. Identify any potential indicators of drug trafficking, including specific keywords and emojis.
Assess the overall risk level (Low, Medium, or High) based on the identified indicators.
Provide a clear explanation of your reasoning for the identified indicators and the assigned risk level.
Extract the specific drug-related keywords and emojis into the "matchedKeywords" and "matchedEmojis" fields respectively.

Content: {{.Content}}
{{- if .HasImage}}
An image posted with the content is attached; include what it shows in your analysis.
{{- end}}

Format your output as a valid JSON object with the fields "indicators" (array of strings), "riskLevel" ("Low", "Medium" or "High"),
"reasoning" (string), "matchedKeywords" (array of strings) and "matchedEmojis" (array of strings). Pay attention to data types.`))

var assessRiskTemplate = template.Must(template.New("assessDrugTraffickingRisk").Parse(
	`You are an expert in identifying drug trafficking activities based on analyzed content from social media platforms.

Given the following content analysis, assess the likelihood of drug trafficking involvement. Provide a risk score between 0 and 100, a qualitative risk level (Low, Medium, High), and specific indicators that suggest drug trafficking.

Content Analysis:
{{.ContentAnalysis}}

Provide the output as a JSON object with the fields "riskScore", "riskLevel" and "indicators".
Ensure the riskScore is a number between 0 and 100. Ensure the riskLevel is one of "Low", "Medium", or "High". Ensure indicators is an array of strings.`))

var generateReportTemplate = template.Must(template.New("generateReportFromAnalysis").Parse(
	`You are an expert in generating summary reports based on content and risk analysis.

Based on the content analysis and risk assessment provided, generate a comprehensive summary report highlighting key findings and potential risks.

Content Analysis: {{.ContentAnalysis}}
Risk Assessment: {{.RiskAssessment}}

Return a JSON object with a single string field "report" holding the report.`))

var identifyUserTemplate = template.Must(template.New("identifySuspectedUser").Parse(
	`You are an expert OSINT (Open-Source Intelligence) analyst specializing in tracking illicit activities online.

A user has been flagged for suspicious activity. Your task is to perform a simulated OSINT analysis on the provided username and platform.
Based on the username, generate a list of plausible linked profiles on other platforms, each formatted as "platform:username". For example, if the username is "drug_dealer123", a linked profile could be "Telegram:drug_dealer123_shop".
Generate a potential email address if it seems plausible based on the username.
Assess the user's risk level (Low, Medium, High, Critical) based on the username's characteristics and potential for illicit activities.
Provide a summary explaining your findings and the rationale for the assigned risk level.

Username: {{.Username}}
Platform: {{.Platform}}

Return a JSON object with the fields "linkedProfiles" (array of strings), "email" (string, omit when none is plausible),
"riskLevel" ("Low", "Medium", "High" or "Critical") and "summary" (string).`))

func render(tmpl *template.Template, data interface{}) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
