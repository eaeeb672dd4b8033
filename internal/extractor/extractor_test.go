package extractor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-analyzer/internal/models"
)

func fixedClock() time.Time {
	return time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.FixedZone("CET", 3600))
}

func TestExtract_EmptyInput(t *testing.T) {
	resp := New(WithClock(fixedClock)).Extract("")

	assert.Equal(t, DefaultIntent, resp.Intent)
	require.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
	require.Len(t, resp.KBMatches, 1)
	require.Len(t, resp.KnowledgeGaps, 2)

	assert.Equal(t, 0, resp.ExtractedMetadata["input_length"])
	assert.Equal(t, 0, resp.ExtractedMetadata["word_count"])
	assert.Equal(t, DetectedType, resp.ExtractedMetadata["detected_type"])
	assert.Equal(t, "2025-01-02T02:04:05.006Z", resp.ExtractedMetadata["processing_time"])
}

func TestExtract_FixedFields(t *testing.T) {
	resp := Extract("Hello there")

	require.NotNil(t, resp.IntentConfidence)
	assert.Equal(t, 0.75, *resp.IntentConfidence)
	assert.Equal(t, "Customer Support > General Team", resp.Routing)
	require.NotNil(t, resp.RoutingConfidence)
	assert.Equal(t, 0.68, *resp.RoutingConfidence)
	assert.Equal(t, 0.75, resp.Confidence)

	kb := resp.KBMatches[0]
	assert.Equal(t, "General FAQ", kb.Title)
	assert.Equal(t, "Common Questions", kb.Section)
	assert.Equal(t, 0.65, kb.Confidence)
	assert.Equal(t, models.RelevanceMedium, kb.RelevanceLevel())
	assert.Equal(t, "Row 1-15", kb.RowRange())
	assert.Equal(t, "No specific knowledge base matches found for this input type", kb.MatchReason)

	gaps := resp.KnowledgeGaps
	assert.Equal(t, "Input content requires manual review for proper classification", gaps[0].Description)
	assert.Equal(t, 0.88, *gaps[0].Confidence)
	assert.Equal(t, "Content doesn't match any known scenario patterns", gaps[0].GapReason)
	assert.Equal(t, "No specific routing rules defined for this type of inquiry", gaps[1].Description)
	assert.Equal(t, 0.72, *gaps[1].Confidence)
	assert.Equal(t, "Routing logic needs expansion for this content type", gaps[1].GapReason)
}

func TestExtract_Metadata(t *testing.T) {
	resp := New(WithClock(fixedClock)).Extract("  héllo   wörld \n again ")

	assert.Equal(t, 24, resp.ExtractedMetadata["input_length"])
	assert.Equal(t, 3, resp.ExtractedMetadata["word_count"])
}

// ==========================
// Items
// ==========================

func TestExtractItems_ContactThenValuesCappedAtThree(t *testing.T) {
	text := "Reach anna.b@example.org or ops@example.net about 25 units, a $1,500 budget, 40 users, 3 pieces and 9 items"

	items := ExtractItems(text)
	require.Len(t, items, 4)

	contact := items[0]
	assert.Equal(t, ContactSKU, contact.SKU)
	assert.Equal(t, "anna.b@example.org", contact.Description)
	assert.Equal(t, 1, contact.Quantity)
	assert.Equal(t, ContactCategory, contact.Category)
	assert.Equal(t, 0.95, *contact.Confidence)
	assert.Equal(t, "Email address found: anna.b@example.org", contact.ExtractionSource)

	expected := []string{"25 units", "$1,500", "40 users"}
	for i, want := range expected {
		item := items[i+1]
		assert.Equal(t, "ITEM-"+string(rune('1'+i)), item.SKU)
		assert.Equal(t, want, item.Description)
		assert.Equal(t, 1, item.Quantity)
		assert.Equal(t, ValueCategory, item.Category)
		assert.Equal(t, 0.7, *item.Confidence)
		assert.Equal(t, "Numerical value detected: "+want, item.ExtractionSource)
	}
}

func TestExtractItems_Patterns(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{name: "case-insensitive noun", text: "ship 10 UNITS", expected: []string{"10 UNITS"}},
		{name: "no space before noun", text: "for 200employees", expected: []string{"200employees"}},
		{name: "bare number ignored", text: "room 42 on floor 3", expected: nil},
		{name: "currency without digits", text: "$ signs only", expected: nil},
		{name: "currency", text: "around $12,000 per year", expected: []string{"$12,000"}},
		{name: "no-break space", text: "need 50\u00a0units soon", expected: []string{"50\u00a0units"}},
		{name: "ideographic space", text: "about 30\u3000users", expected: []string{"30\u3000users"}},
		{name: "vertical tab", text: "order 7\vitems", expected: []string{"7\vitems"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := ExtractItems(tt.text)
			got := make([]string, 0, len(items))
			for _, item := range items {
				got = append(got, item.Description)
			}
			if tt.expected == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractItems_InvalidEmailIgnored(t *testing.T) {
	items := ExtractItems("write to someone@localhost or @example.com")
	assert.Empty(t, items)
}

// ==========================
// Intent
// ==========================

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"What would it cost?", "Pricing Inquiry"},
		{"Need pricing and support", "Pricing Inquiry"},
		{"Can someone help me", "Support Request"},
		{"Please send more information", "Information Request"},
		{"Full SPECIFICATIONS attached", "Information Request"},
		{"We want to purchase licenses", "Purchase Intent"},
		{"Ordering for next week", "Purchase Intent"},
		{"Let's set up a meeting", "Consultation Request"},
		{"Good morning", "General Inquiry"},
		{"", "General Inquiry"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DetectIntent(tt.text), "text %q", tt.text)
	}
}

func TestExtract_ReturnsIndependentResponses(t *testing.T) {
	e := New(WithClock(fixedClock))
	first := e.Extract("help with 5 units")
	second := e.Extract("help with 5 units")
	assert.Equal(t, first, second)

	first.Items[0].Description = "changed"
	first.KnowledgeGaps[0].Description = "changed"
	first.ExtractedMetadata["word_count"] = 99

	assert.Equal(t, "5 units", second.Items[0].Description)
	assert.NotEqual(t, "changed", second.KnowledgeGaps[0].Description)
	assert.Equal(t, 4, second.ExtractedMetadata["word_count"])
}
