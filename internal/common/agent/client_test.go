package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-analyzer/internal/common/errors"
)

const agentReply = `{
	"intent": "Warranty Claim",
	"routing": "Support > Warranty",
	"confidence": 0.81,
	"items": [{"sku": "W-1", "description": "Pump", "quantity": 2, "category": "Parts"}],
	"kb_matches": [],
	"knowledge_gaps": ["Serial number missing"],
	"extracted_metadata": {"channel": "email"}
}`

func fixedNow() time.Time {
	return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
}

// ==========================
// Analyze
// ==========================

func TestAnalyze_Success(t *testing.T) {
	var got Request
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-live", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(agentReply))
	}))
	defer srv.Close()

	c := NewClient(time.Second, WithClock(fixedNow))
	resp, err := c.Analyze(context.Background(), srv.URL, "sk-live", "pump broke")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "pump broke", got.Input)
	assert.Equal(t, "2025-03-04T05:06:07.000Z", got.Timestamp)
	assert.False(t, got.Test)

	assert.Equal(t, "Warranty Claim", resp.Intent)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	require.Len(t, resp.KnowledgeGaps, 1)
	assert.Equal(t, "Serial number missing", resp.KnowledgeGaps[0].Description)
	assert.Equal(t, "email", resp.ExtractedMetadata["channel"])
}

func TestAnalyze_MissingConfigMakesNoRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := NewClient(time.Second)

	_, err := c.Analyze(context.Background(), srv.URL, "", "text")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigurationMissing))

	_, err = c.Analyze(context.Background(), "", "key", "text")
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigurationMissing))

	err = RequireConfig("", "")
	stdErr := errors.AsStandardError(err)
	assert.Contains(t, stdErr.Details, "endpoint")
	assert.Contains(t, stdErr.Details, "apiKey")

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
		code    errors.ErrorCode
		message string
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			code:    errors.ErrCodeUpstreamRejected,
			message: "401 Unauthorized",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			code:    errors.ErrCodeUpstreamRejected,
			message: "502 Bad Gateway",
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>not json</html>"))
			},
			code: errors.ErrCodeUpstreamInvalidResponse,
		},
		{
			name: "null body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("null"))
			},
			code: errors.ErrCodeUpstreamInvalidResponse,
		},
		{
			name: "slow agent",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(2 * time.Second):
				case <-r.Context().Done():
				}
			},
			timeout: 50 * time.Millisecond,
			code:    errors.ErrCodeUpstreamTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			timeout := tt.timeout
			if timeout == 0 {
				timeout = time.Second
			}
			_, err := NewClient(timeout).Analyze(context.Background(), srv.URL, "key", "text")
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestAnalyze_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(time.Second).Analyze(context.Background(), url, "key", "text")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamUnavailable, errors.CodeOf(err))
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewClient(0).Timeout())
	assert.Equal(t, time.Second, NewClient(time.Second).Timeout())
}

// ==========================
// TestConnection
// ==========================

func TestTestConnection(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(time.Second).TestConnection(context.Background(), srv.URL, "key"))
	assert.Equal(t, "Test connection", got.Input)
	assert.True(t, got.Test)
	assert.Empty(t, got.Timestamp)
}

func TestTestConnection_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewClient(time.Second).TestConnection(context.Background(), srv.URL, "key")
	assert.True(t, errors.HasCode(err, errors.ErrCodeUpstreamRejected))

	err = NewClient(time.Second).TestConnection(context.Background(), "", "key")
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigurationMissing))
}
