package openai

import (
	"fmt"
	"strings"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

const (
	extractionSystemPrompt = "You are a legal document analyst. Extract specific fields from incident reports and return them in valid JSON format."

	summarySystemPrompt = "You are a legal document analyst. Create a concise summary of the provided text, focusing on key incident details, legal implications, and important facts. Keep the summary to a maximum of 10 sentences."

	analysisSystemPrompt = "You are a legal and safety analysis expert specializing in workplace incidents and compliance. Generate professional, thorough incident analysis reports suitable for legal documentation."
)

func buildExtractionPrompt(pdfText string) string {
	return fmt.Sprintf(`You are a legal document analyst. Extract the following 5 fields from the provided incident report text:

1. Date of Injury: The date when the injury occurred
2. Location of Incident: Where the incident took place
3. Cause of Incident: What caused the incident
4. Type of Incident: The category/type of incident
5. Statutory Violations Cited: Any legal violations mentioned (return as array)

Please extract these fields from the following text and return them in JSON format:

%s

Return only valid JSON with these exact field names:
{
  "dateOfInjury": "extracted date",
  "locationOfIncident": "extracted location",
  "causeOfIncident": "extracted cause",
  "typeOfIncident": "extracted type",
  "statutoryViolationsCited": ["violation1", "violation2"]
}`, pdfText)
}

func buildSummaryPrompt(pdfText string) string {
	return "Please summarize the following incident report text:\n\n" + pdfText
}

func buildAnalysisPrompt(fields domain.IncidentFields) string {
	return fmt.Sprintf(`You are a legal and safety analysis expert specializing in workplace incidents and compliance. Given the incident details below, generate a comprehensive "Incident Analysis" report. The output should be professional, thorough, and suitable for legal documentation or safety reports.

## INCIDENT DETAILS
- Date of Injury: %s
- Location of Incident: %s
- Cause of Incident: %s
- Type of Incident: %s
- Statutory Violations Cited: %s

## OUTPUT GUIDELINES
- Provide a detailed analysis of the incident circumstances and contributing factors.
- Assess the severity and potential legal implications of the statutory violations.
- Include recommendations for prevention and compliance improvement.
- Address any patterns or systemic issues that may have contributed to the incident.
- Tone should be professional, objective, and legally sound.

Now generate the "Incident Analysis" section. Should be comprehensive and well-structured for legal or safety documentation.`,
		fields.DateOfInjury,
		fields.LocationOfIncident,
		fields.CauseOfIncident,
		fields.TypeOfIncident,
		strings.Join(fields.StatutoryViolationsCited, ", "),
	)
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
