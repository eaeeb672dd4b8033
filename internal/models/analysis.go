// internal/models/analysis.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StructuredResponse is the contract every analysis path produces, whether it
// comes from a catalog scenario, the fallback extractor or a live agent.
type StructuredResponse struct {
	Intent            string                 `json:"intent"`
	IntentConfidence  *float64               `json:"intent_confidence,omitempty"`
	Routing           string                 `json:"routing"`
	RoutingConfidence *float64               `json:"routing_confidence,omitempty"`
	Confidence        float64                `json:"confidence"`
	Items             []ExtractedItem        `json:"items"`
	KBMatches         []KBMatch              `json:"kb_matches"`
	KnowledgeGaps     []KnowledgeGap         `json:"knowledge_gaps"`
	ExtractedMetadata map[string]interface{} `json:"extracted_metadata"`
}

type ExtractedItem struct {
	SKU              string   `json:"sku"`
	Description      string   `json:"description"`
	Quantity         int      `json:"quantity"`
	Category         string   `json:"category"`
	Confidence       *float64 `json:"confidence,omitempty"`
	ExtractionSource string   `json:"extraction_source,omitempty"`
}

type KBMatch struct {
	Title       string  `json:"title"`
	Section     string  `json:"section"`
	Confidence  float64 `json:"confidence"`
	Relevance   string  `json:"relevance"`
	RowStart    *int    `json:"row_start,omitempty"`
	RowEnd      *int    `json:"row_end,omitempty"`
	MatchReason string  `json:"match_reason,omitempty"`
}

// KnowledgeGap is always the record form. Older payloads carry gaps as plain
// strings; UnmarshalJSON folds those into Description.
type KnowledgeGap struct {
	Description string   `json:"description"`
	Confidence  *float64 `json:"confidence,omitempty"`
	GapReason   string   `json:"gap_reason,omitempty"`
}

// Relevance tiers after normalization.
const (
	RelevanceHigh    = "high"
	RelevanceMedium  = "medium"
	RelevanceLow     = "low"
	RelevanceUnknown = "unknown"
)

// Confidence tiers used when presenting scores.
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"
)

// Response sources.
const (
	SourceScenario = "scenario"
	SourceFallback = "fallback"
	SourceLive     = "live"
)

// AnalysisRecord is a persisted analysis, kept for export and lookup.
type AnalysisRecord struct {
	ID         string              `json:"id"`
	Input      string              `json:"input"`
	Mode       string              `json:"mode"`
	Source     string              `json:"source"`
	ScenarioID string              `json:"scenario_id,omitempty"`
	Response   *StructuredResponse `json:"response"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Float returns a pointer to v, for the optional confidence fields.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v, for the optional row fields.
func Int(v int) *int {
	return &v
}

// ConfidenceTier buckets a score: >= 0.9 high, >= 0.7 medium, otherwise low.
func ConfidenceTier(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return TierHigh
	case confidence >= 0.7:
		return TierMedium
	default:
		return TierLow
	}
}

// EffectiveIntentConfidence falls back to the overall confidence.
func (r *StructuredResponse) EffectiveIntentConfidence() float64 {
	if r.IntentConfidence != nil {
		return *r.IntentConfidence
	}
	return r.Confidence
}

// EffectiveRoutingConfidence falls back to the overall confidence.
func (r *StructuredResponse) EffectiveRoutingConfidence() float64 {
	if r.RoutingConfidence != nil {
		return *r.RoutingConfidence
	}
	return r.Confidence
}

// Clone returns a deep copy. Catalog responses are handed out through Clone
// so callers can never reach the stored value.
func (r *StructuredResponse) Clone() *StructuredResponse {
	if r == nil {
		return nil
	}

	out := &StructuredResponse{
		Intent:            r.Intent,
		IntentConfidence:  cloneFloat(r.IntentConfidence),
		Routing:           r.Routing,
		RoutingConfidence: cloneFloat(r.RoutingConfidence),
		Confidence:        r.Confidence,
	}

	if r.Items != nil {
		out.Items = make([]ExtractedItem, len(r.Items))
		for i, item := range r.Items {
			item.Confidence = cloneFloat(item.Confidence)
			out.Items[i] = item
		}
	}

	if r.KBMatches != nil {
		out.KBMatches = make([]KBMatch, len(r.KBMatches))
		for i, match := range r.KBMatches {
			match.RowStart = cloneInt(match.RowStart)
			match.RowEnd = cloneInt(match.RowEnd)
			out.KBMatches[i] = match
		}
	}

	if r.KnowledgeGaps != nil {
		out.KnowledgeGaps = make([]KnowledgeGap, len(r.KnowledgeGaps))
		for i, gap := range r.KnowledgeGaps {
			gap.Confidence = cloneFloat(gap.Confidence)
			out.KnowledgeGaps[i] = gap
		}
	}

	if r.ExtractedMetadata != nil {
		out.ExtractedMetadata = cloneValue(r.ExtractedMetadata).(map[string]interface{})
	}

	return out
}

// RelevanceLevel normalizes Relevance case-insensitively. Anything outside
// High/Medium/Low is reported as unknown and treated as neutral.
func (m KBMatch) RelevanceLevel() string {
	switch strings.ToLower(strings.TrimSpace(m.Relevance)) {
	case RelevanceHigh:
		return RelevanceHigh
	case RelevanceMedium:
		return RelevanceMedium
	case RelevanceLow:
		return RelevanceLow
	default:
		return RelevanceUnknown
	}
}

// HasRange reports whether the match spans more than one row.
func (m KBMatch) HasRange() bool {
	return m.RowStart != nil && m.RowEnd != nil && *m.RowEnd != *m.RowStart
}

// RowRange renders the row reference: "" without a start row, "Row 4" for a
// single row and "Row 1-15" for a span.
func (m KBMatch) RowRange() string {
	if m.RowStart == nil {
		return ""
	}
	if m.HasRange() {
		return fmt.Sprintf("Row %d-%d", *m.RowStart, *m.RowEnd)
	}
	return fmt.Sprintf("Row %d", *m.RowStart)
}

// MarshalJSON drops row_end when it repeats row_start.
func (m KBMatch) MarshalJSON() ([]byte, error) {
	type plain KBMatch
	out := plain(m)
	if out.RowEnd != nil && out.RowStart != nil && *out.RowEnd == *out.RowStart {
		out.RowEnd = nil
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts both the legacy string form and the record form.
func (g *KnowledgeGap) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var description string
		if err := json.Unmarshal(data, &description); err != nil {
			return err
		}
		*g = KnowledgeGap{Description: description}
		return nil
	}

	type record KnowledgeGap
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("knowledge gap must be a string or an object: %w", err)
	}
	*g = KnowledgeGap(r)
	return nil
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
