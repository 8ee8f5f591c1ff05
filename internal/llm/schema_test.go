package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToOpenAI_StripsSchemaKeyAndForcesAdditionalProperties(t *testing.T) {
	schema := Schema{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": PropertyList{
			{Name: "name", Schema: Schema{"type": "string"}},
		},
	}

	got := ToOpenAI(schema)

	_, hasSchemaKey := got["$schema"]
	assert.False(t, hasSchemaKey)
	assert.Equal(t, false, got["additionalProperties"])
}

func TestToGemini_ConvertsTypesAndOrdering(t *testing.T) {
	schema := Schema{
		"type": "object",
		"properties": PropertyList{
			{Name: "url", Schema: Schema{"type": "string"}},
			{Name: "text", Schema: Schema{"type": "string"}},
		},
		"required": []string{"text", "url"},
	}

	got := ToGemini(schema)

	assert.Equal(t, "OBJECT", got["type"])
	assert.Equal(t, false, got["additionalProperties"])

	ordering, ok := got["propertyOrdering"].([]string)
	assert.True(t, ok)
	assert.Equal(t, []string{"url", "text"}, ordering)

	props, ok := got["properties"].(PropertyList)
	assert.True(t, ok)

	textSchema, ok := props.Get("text")
	assert.True(t, ok)
	assert.Equal(t, "STRING", textSchema["type"])
}
