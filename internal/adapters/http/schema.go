package httpadapter

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request bodies are validated against JSON Schemas before any core
// call. A schema failure produces the field-keyed validation envelope
// and the request never reaches a use case.

var extractFieldsSchema = jsonschema.MustCompileString("extract_fields.json", `{
	"type": "object",
	"required": ["pdfText"],
	"additionalProperties": false,
	"properties": {
		"pdfText": {"type": "string", "minLength": 1}
	}
}`)

var generateAnalysisSchema = jsonschema.MustCompileString("generate_analysis.json", `{
	"type": "object",
	"required": [
		"dateOfInjury", "locationOfIncident", "causeOfIncident",
		"typeOfIncident", "statutoryViolationsCited", "pdfText"
	],
	"additionalProperties": false,
	"properties": {
		"dateOfInjury": {"type": "string", "minLength": 1},
		"locationOfIncident": {"type": "string", "minLength": 1},
		"causeOfIncident": {"type": "string", "minLength": 1},
		"typeOfIncident": {"type": "string", "minLength": 1},
		"statutoryViolationsCited": {
			"type": "array",
			"minItems": 1,
			"items": {"type": "string", "minLength": 1}
		},
		"pdfText": {"type": "string", "minLength": 1}
	}
}`)

// validateBody returns nil when the body conforms to the schema, or a
// field-to-message map describing every violation.
func validateBody(schema *jsonschema.Schema, body []byte) map[string]string {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return map[string]string{"body": "request body is not valid JSON"}
	}

	err := schema.Validate(value)
	if err == nil {
		return nil
	}

	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return map[string]string{"body": err.Error()}
	}

	fields := make(map[string]string)
	collectViolations(validationErr, fields)
	if len(fields) == 0 {
		fields["body"] = validationErr.Message
	}
	return fields
}

func collectViolations(err *jsonschema.ValidationError, fields map[string]string) {
	if len(err.Causes) == 0 {
		recordViolation(err, fields)
		return
	}
	for _, cause := range err.Causes {
		collectViolations(cause, fields)
	}
}

func recordViolation(err *jsonschema.ValidationError, fields map[string]string) {
	if field := fieldFromPointer(err.InstanceLocation); field != "" {
		if _, seen := fields[field]; !seen {
			fields[field] = err.Message
		}
		return
	}

	// Required-property failures sit at the object root; the message
	// carries the missing names in single quotes.
	if strings.Contains(err.Message, "missing propert") {
		for _, name := range quotedNames(err.Message) {
			if _, seen := fields[name]; !seen {
				fields[name] = "required field is missing"
			}
		}
		return
	}

	if _, seen := fields["body"]; !seen {
		fields["body"] = err.Message
	}
}

func fieldFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(pointer, "/")
	if trimmed == "" {
		return ""
	}
	// Nested locations like /statutoryViolationsCited/0 collapse to the
	// top-level field the caller sent.
	if i := strings.Index(trimmed, "/"); i > 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}

func quotedNames(message string) []string {
	var names []string
	parts := strings.Split(message, "'")
	for i := 1; i < len(parts); i += 2 {
		if parts[i] != "" {
			names = append(names, parts[i])
		}
	}
	return names
}
