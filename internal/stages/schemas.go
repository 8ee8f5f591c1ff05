package stages

import "github.com/lueurxax/briefing-pipeline/internal/llm"

var factSchema = llm.Schema{
	"type": "object",
	"properties": llm.PropertyList{
		{Name: "fact_id", Schema: llm.Schema{"type": "string"}},
		{Name: "text", Schema: llm.Schema{"type": "string"}},
		{Name: "url", Schema: llm.Schema{"type": "string"}},
	},
	"required": []string{"fact_id", "text", "url"},
}

// clusterFactsSchema is the stage-1 (fact extractor) output schema.
var clusterFactsSchema = llm.Schema{
	"title": "ClusterFacts",
	"type":  "object",
	"properties": llm.PropertyList{
		{Name: "facts", Schema: llm.Schema{
			"type":  "array",
			"items": factSchema,
		}},
	},
	"required": []string{"facts"},
}

var scoresSchema = llm.Schema{
	"type": "object",
	"properties": llm.PropertyList{
		{Name: "actionability", Schema: llm.Schema{"type": "integer"}},
		{Name: "novelty", Schema: llm.Schema{"type": "integer"}},
		{Name: "impact", Schema: llm.Schema{"type": "integer"}},
		{Name: "reusability", Schema: llm.Schema{"type": "integer"}},
		{Name: "reliability", Schema: llm.Schema{"type": "integer"}},
		{Name: "agentic_bonus", Schema: llm.Schema{"type": "integer"}},
	},
	"required": []string{"actionability", "novelty", "impact", "reusability", "reliability", "agentic_bonus"},
}

var scoredFactSchema = llm.Schema{
	"type": "object",
	"properties": llm.PropertyList{
		{Name: "fact_id", Schema: llm.Schema{"type": "string"}},
		{Name: "text", Schema: llm.Schema{"type": "string"}},
		{Name: "url", Schema: llm.Schema{"type": "string"}},
		{Name: "scores", Schema: scoresSchema},
		{Name: "strategic_flag", Schema: llm.Schema{"type": "boolean"}},
		{Name: "rationale", Schema: llm.Schema{"type": "string"}},
	},
	"required": []string{"fact_id", "text", "url", "scores"},
}

var droppedFactSchema = llm.Schema{
	"type": "object",
	"properties": llm.PropertyList{
		{Name: "fact_id", Schema: llm.Schema{"type": "string"}},
		{Name: "reason", Schema: llm.Schema{"type": "string"}},
	},
	"required": []string{"fact_id", "reason"},
}

// clusterSelectionSchema is the stage-2 (scorer) output schema.
var clusterSelectionSchema = llm.Schema{
	"title": "ClusterSelection",
	"type":  "object",
	"properties": llm.PropertyList{
		{Name: "picked", Schema: llm.Schema{"type": "array", "items": scoredFactSchema}},
		{Name: "dropped", Schema: llm.Schema{"type": "array", "items": droppedFactSchema}},
		{Name: "notes", Schema: llm.Schema{"type": "string"}},
	},
	"required": []string{"picked"},
}

var bulletDraftSchema = llm.Schema{
	"type": "object",
	"properties": llm.PropertyList{
		{Name: "text", Schema: llm.Schema{"type": "string"}},
		{Name: "url", Schema: llm.Schema{"type": "string"}},
		{Name: "fact_ids", Schema: llm.Schema{"type": "array", "items": llm.Schema{"type": "string"}}},
	},
	"required": []string{"text", "url"},
}

var draftAnnotationsSchema = llm.Schema{
	"type": "object",
	"properties": llm.PropertyList{
		{Name: "agentic", Schema: llm.Schema{"type": "boolean"}},
		{Name: "strategic", Schema: llm.Schema{"type": "boolean"}},
	},
}

// topicDraftSchema is the stage-3 (topic drafter) output schema.
var topicDraftSchema = llm.Schema{
	"title": "TopicDraft",
	"type":  "object",
	"properties": llm.PropertyList{
		{Name: "topic_id", Schema: llm.Schema{"type": "string"}},
		{Name: "headline", Schema: llm.Schema{"type": "string"}},
		{Name: "bullets", Schema: llm.Schema{"type": "array", "items": bulletDraftSchema, "minItems": 1, "maxItems": 4}},
		{Name: "annotations", Schema: draftAnnotationsSchema},
		{Name: "notes", Schema: llm.Schema{"type": "string"}},
	},
	"required": []string{"topic_id", "headline", "bullets", "annotations"},
}
