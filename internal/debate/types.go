// Package debate contains the multi-phase debate orchestration engine and
// its domain types: a run takes one prompt through independent solutions,
// optional code execution, cross-examination, critique, and final synthesis.
package debate

import (
	"errors"

	"github.com/roomai/agora/internal/llm"
	"github.com/roomai/agora/internal/sandbox"
)

// Preset modes tune the solution-phase framing.
const (
	PresetGeneral  = "general"
	PresetCoding   = "coding"
	PresetAcademic = "academic"
	PresetResearch = "research"
)

// Request is one debate invocation.
type Request struct {
	Prompt  string        `json:"prompt"`
	Models  []string      `json:"selectedModels,omitempty"`
	History []llm.Message `json:"history,omitempty"`
	Preset  string        `json:"preset,omitempty"`
}

// QueryType is the classified category of a prompt.
type QueryType string

const (
	TypeCode           QueryType = "code"
	TypeAcademic       QueryType = "academic"
	TypeCreative       QueryType = "creative"
	TypeAnalytical     QueryType = "analytical"
	TypeRecommendation QueryType = "recommendation"
	TypeGeneral        QueryType = "general"
)

// Complexity tiers drive nothing structural yet but travel with the
// classification so clients can surface them.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Classification is derived deterministically from the prompt and consumed
// once per request.
type Classification struct {
	Type                QueryType  `json:"type"`
	EnableCodeExecution bool       `json:"enableCodeExecution"`
	Complexity          Complexity `json:"complexity"`
}

// Phase labels in their fixed execution order. Optional phases may be absent
// from a transcript but never reordered.
const (
	PhaseGrounding = "Grounding"
	PhaseSolutions = "Independent Solutions"
	PhaseExecution = "Code Execution"
	PhaseCrossExam = "Cross-Examination"
	PhaseCritique  = "Critique"
	PhaseSynthesis = "Final Synthesis"
)

// TranscriptEntry is one phase's record. The transcript is a log of phases,
// not of individual model calls; its order is the record of what happened.
type TranscriptEntry struct {
	Phase   string `json:"phase"`
	Payload any    `json:"payload"`
}

// SourceRef points at one grounding source.
type SourceRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// GroundingRecord is the payload of an (optional) Grounding entry.
type GroundingRecord struct {
	Query   string      `json:"query"`
	Sources []SourceRef `json:"sources"`
}

// SolutionRecord is one participant's raw independent answer.
type SolutionRecord struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// ExecutionRecord is one participant's slice of the Code Execution entry.
type ExecutionRecord struct {
	Model            string                    `json:"model"`
	Executed         bool                      `json:"executed"`
	Results          []sandbox.ExecutionResult `json:"results,omitempty"`
	AdversarialTests string                    `json:"adversarialTests,omitempty"`
}

// ExchangeRecord is one ordered pair's question/defense exchange.
type ExchangeRecord struct {
	Interrogator string `json:"interrogator"`
	Respondent   string `json:"respondent"`
	Question     string `json:"question"`
	Defense      string `json:"defense"`
}

// CritiqueRecord is one ordered pair's weakness listing.
type CritiqueRecord struct {
	Critic   string `json:"critic"`
	Target   string `json:"target"`
	Critique string `json:"critique"`
}

// SynthesisRecord is the payload of the final entry.
type SynthesisRecord struct {
	Model     string `json:"model"`
	Synthesis string `json:"synthesis"`
}

// Cache statuses reported in result metadata.
const (
	CacheHit  = "HIT"
	CacheMiss = "MISS"
)

// Metadata describes one completed run.
type Metadata struct {
	DurationSeconds  float64           `json:"durationSeconds"`
	ModelsUsed       map[string]string `json:"modelsUsed"`
	CacheStatus      string            `json:"cacheStatus"`
	GroundingSources []SourceRef       `json:"groundingSources,omitempty"`
}

// Result is the immutable outcome of one debate run.
type Result struct {
	FinalAnswer    string            `json:"finalAnswer"`
	Transcript     []TranscriptEntry `json:"transcript"`
	Metadata       Metadata          `json:"metadata"`
	Classification Classification    `json:"classification"`
}

// Validation errors, mapped to 400 by the HTTP layer.
var (
	ErrEmptyPrompt = errors.New("prompt is required")
	ErrNoModels    = errors.New("at least one model must be selected")
)
