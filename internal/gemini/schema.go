package gemini

import (
	"github.com/Trigerxx3/cyber/internal/llm"

	"github.com/google/generative-ai-go/genai"
)

var schemaTypes = map[llm.SchemaType]genai.Type{
	llm.TypeObject:  genai.TypeObject,
	llm.TypeArray:   genai.TypeArray,
	llm.TypeString:  genai.TypeString,
	llm.TypeNumber:  genai.TypeNumber,
	llm.TypeInteger: genai.TypeInteger,
	llm.TypeBoolean: genai.TypeBoolean,
}

// toGenaiSchema translates the provider-neutral schema into Gemini's form.
func toGenaiSchema(s *llm.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        schemaTypes[s.Type],
		Description: s.Description,
		Nullable:    s.Nullable,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}

	if len(s.Enum) > 0 {
		out.Format = "enum"
		out.Enum = s.Enum
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}

	return out
}
