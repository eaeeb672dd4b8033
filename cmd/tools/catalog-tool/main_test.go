package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-analyzer/internal/common/errors"
)

const mismatchedCatalog = `{
  "version": "test",
  "scenarios": [
    {
      "id": "support-billing",
      "input": "nothing here routes anywhere",
      "response": {"intent": "Billing", "routing": "Billing", "confidence": 0.5, "items": [], "kb_matches": [], "knowledge_gaps": []}
    }
  ]
}`

func TestValidateCatalog_Embedded(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, validateCatalog(&buf, ""))
	assert.Contains(t, buf.String(), "8 scenarios")
}

func TestValidateCatalog_MissingFile(t *testing.T) {
	err := validateCatalog(&bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFixtureLoadFailure, errors.CodeOf(err))
}

func TestListScenarios(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listScenarios(&buf, "", false))
	out := buf.String()
	assert.Contains(t, out, "INTENT")
	assert.Contains(t, out, "emergency-service-request")
	assert.Contains(t, out, "rfp-enterprise")
}

func TestListScenarios_IDsOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listScenarios(&buf, "", true))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 8)
	assert.Equal(t, "manufacturing-custom-fabrication", lines[0])
	assert.Equal(t, "rfp-enterprise", lines[7])
	assert.NotContains(t, buf.String(), "INTENT")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{name: "scenario", text: "The invoice shows the wrong plan", want: `support-billing (keyword "invoice")`},
		{name: "no match", text: "Can we discuss your hours", want: "no match (fallback extraction)"},
		{name: "input type", text: "Please find our proposal attached", want: "input type: RFP"},
		{name: "blank", text: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := classify(&buf, tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestCheckCatalog_EmbeddedIsConsistent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, checkCatalog(&buf, ""))
	assert.Contains(t, buf.String(), "8 rules, 8 scenarios")
}

func TestCheckCatalog_ReportsProblems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(mismatchedCatalog), 0o600))

	var buf bytes.Buffer
	err := checkCatalog(&buf, path)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "rule technical-support has no catalog entry")
	assert.Contains(t, out, "example for support-billing matches no rule")
}
