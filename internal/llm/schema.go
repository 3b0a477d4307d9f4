// Package llm - schema.go describes the structured output expected from a model call.
package llm

import (
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// FieldType is the JSON type of an output field.
type FieldType string

const (
	// FieldString is a JSON string
	FieldString FieldType = "string"
	// FieldStringArray is a JSON array of strings
	FieldStringArray FieldType = "[]string"
)

// OutputSchema defines the JSON object a prompt must return.
type OutputSchema struct {
	Name   string        // Schema name, matches the embedded JSON Schema file
	Fields []SchemaField // Expected output fields
}

// SchemaField defines a single field in the output object.
type SchemaField struct {
	Name        string    // JSON field name
	Type        FieldType // JSON type
	Description string    // Description for the model
	Required    bool      // Whether this field is required
}

// Instructions renders the output contract appended to every prompt.
func (s OutputSchema) Instructions() string {
	var sb strings.Builder

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range s.Fields {
		typeHint := `"string"`
		if field.Type == FieldStringArray {
			typeHint = `["string"]`
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(s.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")
	sb.WriteString("Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n")

	return sb.String()
}

// GenaiSchema converts the schema into a Gemini response schema.
func (s OutputSchema) GenaiSchema() *genai.Schema {
	out := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(s.Fields)),
	}
	for _, field := range s.Fields {
		prop := &genai.Schema{Type: genai.TypeString, Description: field.Description}
		if field.Type == FieldStringArray {
			prop = &genai.Schema{
				Type:        genai.TypeArray,
				Description: field.Description,
				Items:       &genai.Schema{Type: genai.TypeString},
			}
		}
		out.Properties[field.Name] = prop
		if field.Required {
			out.Required = append(out.Required, field.Name)
		}
	}
	return out
}

// --- Predefined Schemas ---

// SuggestionsSchema is the output of suggestion generation.
func SuggestionsSchema() OutputSchema {
	return OutputSchema{
		Name: "suggestions",
		Fields: []SchemaField{
			{
				Name:        "suggestions",
				Type:        FieldStringArray,
				Description: "Suggested replies, a job posting draft, an application email or message options, tailored to the input and mode",
				Required:    true,
			},
		},
	}
}

// RefinedDraftSchema is the output of the improve and refine flows.
func RefinedDraftSchema() OutputSchema {
	return OutputSchema{
		Name: "refined_draft",
		Fields: []SchemaField{
			{
				Name:        "refinedDraft",
				Type:        FieldString,
				Description: "The refined draft",
				Required:    true,
			},
		},
	}
}

// SummarySchema is the output of the summarize flows.
func SummarySchema() OutputSchema {
	return OutputSchema{
		Name: "summary",
		Fields: []SchemaField{
			{
				Name:        "summary",
				Type:        FieldString,
				Description: "A concise summary of the input",
				Required:    true,
			},
		},
	}
}
