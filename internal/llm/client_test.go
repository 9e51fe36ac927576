package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsense/internal/common/config"
	cerrors "dealsense/internal/common/errors"
	"dealsense/internal/common/logger"
	"dealsense/internal/decision/intent"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.LLMConfig{
		BaseURL:    baseURL,
		Timeout:    2000,
		MaxRetries: 2,
	}, logger.NewTestLogger())
}

func TestInterpretSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/interpret", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{
			"intent": "external_research",
			"proposedContracts": ["EXTERNAL_RESEARCH"],
			"extractedEntities": {"company": "Initech"},
			"isAmbiguous": false,
			"confidence": 0.82,
			"reason": "asks about an outside organization"
		}`))
	}))
	defer server.Close()

	interp, err := newTestClient(server.URL).Interpret(context.Background(), "anything on Initech?", nil)
	require.NoError(t, err)
	assert.Equal(t, "external_research", interp.Intent)
	assert.Equal(t, []string{"EXTERNAL_RESEARCH"}, interp.ProposedContracts)
	assert.Equal(t, 0.82, interp.Confidence)
	assert.False(t, interp.IsAmbiguous)
}

func TestInterpretSendsThreadContext(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`{"intent": "single_meeting", "confidence": 0.9}`))
	}))
	defer server.Close()

	tc := &intent.ThreadContext{PriorCompanyID: "c-1"}
	_, err := newTestClient(server.URL).Interpret(context.Background(), "what about next steps?", tc)
	require.NoError(t, err)
	assert.Contains(t, gotBody, "priorCompanyId")
}

func TestInterpretRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing intent", `{"confidence": 0.9}`},
		{"confidence out of range", `{"intent": "single_meeting", "confidence": 1.7}`},
		{"wrong type", `{"intent": 42, "confidence": 0.5}`},
		{"not json", `interpretation unavailable`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Interpret(context.Background(), "hello there", nil)
			require.Error(t, err)
		})
	}
}

func TestInterpretRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"intent": "general_help", "confidence": 0.7}`))
	}))
	defer server.Close()

	interp, err := newTestClient(server.URL).Interpret(context.Background(), "hmm", nil)
	require.NoError(t, err)
	assert.Equal(t, "general_help", interp.Intent)
	assert.Equal(t, 3, attempts)
}

func TestInterpretExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Interpret(context.Background(), "hmm", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLLMFailed)

	var serr *cerrors.StandardError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, cerrors.ErrCodeLLMInterpretationFailed, serr.Code)
	assert.True(t, cerrors.IsRetryable(serr))
}

func TestInterpretTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"intent": "general_help", "confidence": 0.7}`))
	}))
	defer server.Close()

	c := NewClient(config.LLMConfig{BaseURL: server.URL, Timeout: 50, MaxRetries: 0}, logger.NewTestLogger())
	_, err := c.Interpret(context.Background(), "hmm", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLLMTimeout)

	var serr *cerrors.StandardError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, cerrors.ErrCodeLLMTimeout, serr.Code)
	assert.True(t, cerrors.IsRetryable(serr))
}

func TestValidateIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/validate-intent", r.URL.Path)
		w.Write([]byte(`{"confirmed": false, "suggestedIntent": "product_knowledge"}`))
	}))
	defer server.Close()

	v, err := newTestClient(server.URL).ValidateIntent(context.Background(),
		intent.IntentGeneralHelp, "weak match", []string{"keyword:our"})
	require.NoError(t, err)
	assert.False(t, v.Confirmed)
	assert.Equal(t, "product_knowledge", v.SuggestedIntent)
}

func TestSelectContracts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/select-contracts", r.URL.Path)
		w.Write([]byte(`{"contracts": ["FAQ_ANSWER", "PRODUCT_EXPLANATION"]}`))
	}))
	defer server.Close()

	names, err := newTestClient(server.URL).SelectContracts(context.Background(),
		"tell me about our billing", intent.IntentProductKnowledge)
	require.NoError(t, err)
	assert.Equal(t, []string{"FAQ_ANSWER", "PRODUCT_EXPLANATION"}, names)
}

func TestSelectContractsRejectsMissingField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chosen": ["FAQ_ANSWER"]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SelectContracts(context.Background(), "hmm", intent.IntentProductKnowledge)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLLMInvalidResponse)

	var serr *cerrors.StandardError
	require.ErrorAs(t, err, &serr)
	assert.False(t, cerrors.IsRetryable(serr), "schema violations never retry")
}
