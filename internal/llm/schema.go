// Package llm implements the structured LLM invocation contract common to
// the G/H/I stages (spec.md §4.6): call(provider, prompt, model, schema,
// temperature, timeout, retries, options) -> object conforming to schema.
package llm

import "encoding/json"

// Schema is a JSON Schema document represented as a generic map, the way
// callers in this pipeline build them (struct literals describing fact,
// score, and topic-draft shapes) rather than through a schema-building
// library — none of the pack's dependencies offer one.
type Schema = map[string]any

// NamedSchema pairs a property name with its schema node.
type NamedSchema struct {
	Name   string
	Schema Schema
}

// PropertyList is an object node's "properties" value: an ordered set of
// named schema nodes. A bare Go map has no reproducible iteration order,
// but spec.md §4.6 requires Gemini's explicit propertyOrdering to match
// declaration order, so every schema in internal/stages builds its
// "properties" as a PropertyList instead of a nested Schema map.
type PropertyList []NamedSchema

// Get returns the schema registered under name, or (nil, false).
func (p PropertyList) Get(name string) (Schema, bool) {
	for _, ns := range p {
		if ns.Name == name {
			return ns.Schema, true
		}
	}

	return nil, false
}

// MarshalJSON renders p as a JSON object with its keys in declaration
// order, so a schema serialized for OpenAI also preserves order rather
// than falling back to encoding/json's alphabetical map-key sort.
func (p PropertyList) MarshalJSON() ([]byte, error) {
	var buf []byte

	buf = append(buf, '{')

	for i, ns := range p {
		if i > 0 {
			buf = append(buf, ',')
		}

		key, err := json.Marshal(ns.Name)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(ns.Schema)
		if err != nil {
			return nil, err
		}

		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}

	buf = append(buf, '}')

	return buf, nil
}

// ToOpenAI prepares a schema for OpenAI's structured-output mode: strip
// $schema and force additionalProperties:false on every object node,
// since OpenAI's strict mode rejects schemas missing it. Grounded
// verbatim on original's schema_adapter.to_openai, extended with the
// additionalProperties pass OpenAI's `strict: true` mode requires beyond
// what the original (which targets the legacy Responses API) enforced.
func ToOpenAI(schema Schema) Schema {
	clean := withoutSchemaKey(schema)
	forceNoAdditionalProps(clean)

	return clean
}

var geminiTypeMap = map[string]string{
	"object":  "OBJECT",
	"string":  "STRING",
	"array":   "ARRAY",
	"number":  "NUMBER",
	"integer": "INTEGER",
	"boolean": "BOOLEAN",
}

var geminiCopiedKeys = []string{"required", "minItems", "maxItems", "minLength", "format"}

// ToGemini converts a JSON Schema document into Gemini's response_schema
// shape: upper-cased type names, explicit propertyOrdering alongside
// properties, and additionalProperties:false forced on every object.
// Grounded verbatim on original's schema_adapter.to_gemini.
func ToGemini(schema Schema) Schema {
	clean := withoutSchemaKey(schema)

	return convertGeminiNode(clean).(Schema)
}

func withoutSchemaKey(schema Schema) Schema {
	out := make(Schema, len(schema))

	for k, v := range schema {
		if k == "$schema" {
			continue
		}

		out[k] = v
	}

	return out
}

func forceNoAdditionalProps(node Schema) {
	if t, ok := node["type"].(string); ok && t == "object" {
		node["additionalProperties"] = false
	}

	if props, ok := node["properties"].(PropertyList); ok {
		for _, ns := range props {
			forceNoAdditionalProps(ns.Schema)
		}
	}

	if items, ok := node["items"].(Schema); ok {
		forceNoAdditionalProps(items)
	}
}

func convertGeminiNode(node any) any {
	asMap, ok := node.(Schema)
	if !ok {
		return node
	}

	result := make(Schema, len(asMap))

	if t, ok := asMap["type"].(string); ok {
		if mapped, known := geminiTypeMap[t]; known {
			result["type"] = mapped
		} else {
			result["type"] = t
		}
	}

	if props, ok := asMap["properties"].(PropertyList); ok {
		converted := make(PropertyList, len(props))
		ordering := make([]string, len(props))

		for i, ns := range props {
			converted[i] = NamedSchema{Name: ns.Name, Schema: convertGeminiNode(ns.Schema).(Schema)}
			ordering[i] = ns.Name
		}

		result["properties"] = converted
		result["propertyOrdering"] = ordering
	}

	if items, ok := asMap["items"]; ok {
		result["items"] = convertGeminiNode(items)
	}

	for _, key := range geminiCopiedKeys {
		if v, ok := asMap[key]; ok {
			result[key] = v
		}
	}

	if result["type"] == "OBJECT" {
		result["additionalProperties"] = false
	}

	return result
}
