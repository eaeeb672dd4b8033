// pkg/catalog/schema.go
package catalog

import "content-analyzer/internal/models"

// File is the on-disk layout of a scenario catalog.
type File struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Scenarios   []Scenario `json:"scenarios"`
}

// Scenario is a pre-authored answer keyed by id. Input is the trigger text
// offered as an example and used to exercise the classifier.
type Scenario struct {
	ID          string                    `json:"id"`
	Title       string                    `json:"title,omitempty"`
	Description string                    `json:"description,omitempty"`
	Input       string                    `json:"input"`
	Response    models.StructuredResponse `json:"response"`
}

// Example is what the API and CLI list for "try this" inputs.
type Example struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Input       string `json:"input"`
}

func (s Scenario) clone() Scenario {
	out := s
	out.Response = *s.Response.Clone()
	return out
}
