// internal/workers/analysis/analyze-content/models.go
package analyzecontent

import "content-analyzer/internal/models"

type Input struct {
	Text      string `json:"text"`
	RequestID string `json:"requestId,omitempty"`
}

type Output struct {
	AnalysisID string                     `json:"analysisId"`
	RequestID  string                     `json:"requestId,omitempty"`
	Source     string                     `json:"source"`
	ScenarioID string                     `json:"scenarioId,omitempty"`
	Mode       string                     `json:"mode"`
	Analysis   *models.StructuredResponse `json:"analysis"`
}

// inputSchema is checked against the raw job variables before decoding.
func inputSchema(maxLength int) map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"text"},
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":      "string",
				"maxLength": maxLength,
			},
			"requestId": map[string]interface{}{
				"type": "string",
			},
		},
	}
}
