// internal/extractor/extractor.go
package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"content-analyzer/internal/models"
)

// Fixed values of the generic response.
const (
	IntentConfidence  = 0.75
	Routing           = "Customer Support > General Team"
	RoutingConfidence = 0.68
	Confidence        = 0.75

	ContactSKU        = "EMAIL-CONTACT"
	ContactCategory   = "Contact Information"
	ContactConfidence = 0.95

	ValueCategory   = "Extracted Value"
	ValueConfidence = 0.7
	MaxValueItems   = 3

	DefaultIntent = "General Inquiry"
	DetectedType  = "general"

	kbTitle       = "General FAQ"
	kbSection     = "Common Questions"
	kbConfidence  = 0.65
	kbRelevance   = "Medium"
	kbRowStart    = 1
	kbRowEnd      = 15
	kbMatchReason = "No specific knowledge base matches found for this input type"

	gapManualReview       = "Input content requires manual review for proper classification"
	gapManualReviewConf   = 0.88
	gapManualReviewReason = "Content doesn't match any known scenario patterns"
	gapRouting            = "No specific routing rules defined for this type of inquiry"
	gapRoutingConf        = 0.72
	gapRoutingReason      = "Routing logic needs expansion for this content type"

	// TimestampLayout is ISO-8601 in UTC with milliseconds.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	// The space class also takes Unicode separators such as NBSP and the
	// ideographic space, which RE2's \s does not.
	valuePattern = regexp.MustCompile(`(?i)\$[\d,]+|\d+[\s\v\p{Z}\x{FEFF}]*(?:units|pieces|items|employees|users)`)
)

type intentGroup struct {
	intent   string
	keywords []string
}

// intentGroups is checked in order; the first group with a hit wins.
var intentGroups = []intentGroup{
	{intent: "Pricing Inquiry", keywords: []string{"quote", "pricing", "cost"}},
	{intent: "Support Request", keywords: []string{"support", "help", "issue"}},
	{intent: "Information Request", keywords: []string{"information", "details", "specifications"}},
	{intent: "Purchase Intent", keywords: []string{"order", "purchase", "buy"}},
	{intent: "Consultation Request", keywords: []string{"meeting", "consultation", "discuss"}},
}

// Extractor builds the best-effort response for text no scenario claims.
type Extractor struct {
	now func() time.Time
}

type Option func(*Extractor)

// WithClock replaces time.Now for the processing_time field.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails. Every call returns a fresh response.
func (e *Extractor) Extract(text string) *models.StructuredResponse {
	return &models.StructuredResponse{
		Intent:            DetectIntent(text),
		IntentConfidence:  models.Float(IntentConfidence),
		Routing:           Routing,
		RoutingConfidence: models.Float(RoutingConfidence),
		Confidence:        Confidence,
		Items:             ExtractItems(text),
		KBMatches: []models.KBMatch{{
			Title:       kbTitle,
			Section:     kbSection,
			Confidence:  kbConfidence,
			Relevance:   kbRelevance,
			RowStart:    models.Int(kbRowStart),
			RowEnd:      models.Int(kbRowEnd),
			MatchReason: kbMatchReason,
		}},
		KnowledgeGaps: []models.KnowledgeGap{
			{
				Description: gapManualReview,
				Confidence:  models.Float(gapManualReviewConf),
				GapReason:   gapManualReviewReason,
			},
			{
				Description: gapRouting,
				Confidence:  models.Float(gapRoutingConf),
				GapReason:   gapRoutingReason,
			},
		},
		ExtractedMetadata: map[string]interface{}{
			"input_length":    utf8.RuneCountInString(text),
			"detected_type":   DetectedType,
			"processing_time": e.now().UTC().Format(TimestampLayout),
			"word_count":      len(strings.Fields(text)),
		},
	}
}

// Extract runs a default Extractor.
func Extract(text string) *models.StructuredResponse {
	return New().Extract(text)
}

// ExtractItems returns the contact item, if any, followed by up to
// MaxValueItems value items in order of appearance. The result is never nil.
func ExtractItems(text string) []models.ExtractedItem {
	items := make([]models.ExtractedItem, 0, 1+MaxValueItems)

	if email := emailPattern.FindString(text); email != "" {
		items = append(items, models.ExtractedItem{
			SKU:              ContactSKU,
			Description:      email,
			Quantity:         1,
			Category:         ContactCategory,
			Confidence:       models.Float(ContactConfidence),
			ExtractionSource: fmt.Sprintf("Email address found: %s", email),
		})
	}

	for i, match := range valuePattern.FindAllString(text, MaxValueItems) {
		items = append(items, models.ExtractedItem{
			SKU:              fmt.Sprintf("ITEM-%d", i+1),
			Description:      match,
			Quantity:         1,
			Category:         ValueCategory,
			Confidence:       models.Float(ValueConfidence),
			ExtractionSource: fmt.Sprintf("Numerical value detected: %s", match),
		})
	}

	return items
}

// DetectIntent is a substring check per group, so "buy" also hits "buyer".
func DetectIntent(text string) string {
	lower := strings.ToLower(text)
	for _, group := range intentGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.intent
			}
		}
	}
	return DefaultIntent
}
