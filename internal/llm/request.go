package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty response from provider")

// Generator is the structured text generator capability every flow depends on.
type Generator interface {
	// Generate sends one rendered prompt and returns the raw model text,
	// which is expected to be JSON when Request.Schema is set.
	Generate(ctx context.Context, req Request) (string, error)
	Close() error
	GetModelInfo() map[string]interface{}
}

// Request is a single prompt call.
type Request struct {
	// Name identifies the prompt for logs and metrics.
	Name              string
	SystemInstruction string
	Prompt            string
	Image             *Image
	Schema            *Schema
}

// Image is inline media attached to a prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

// SchemaType is a JSON schema primitive type.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
)

// Schema is the provider-neutral subset of JSON schema used to describe
// structured output. Providers translate it to their native form.
type Schema struct {
	Type        SchemaType
	Description string
	Enum        []string
	Items       *Schema
	Properties  map[string]*Schema
	Required    []string
	Nullable    bool
}
