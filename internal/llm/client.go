// Package llm is the HTTP client for the interpreter service. It implements
// the classifier's Interpreter contract and the engine's fallback contract
// selector.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"dealsense/internal/common/config"
	cerrors "dealsense/internal/common/errors"
	"dealsense/internal/common/logger"
	"dealsense/internal/common/metrics"
	"dealsense/internal/decision/intent"
)

var (
	ErrLLMTimeout         = errors.New("LLM_TIMEOUT")
	ErrLLMFailed          = errors.New("LLM_INTERPRETATION_FAILED")
	ErrLLMInvalidResponse = errors.New("LLM_RESPONSE_INVALID")
)

type Client struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
	client     *http.Client
	logger     logger.Logger
}

func NewClient(cfg config.LLMConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: log.With(map[string]interface{}{
			"component": "llm-client",
		}),
	}
}

// Interpret asks the LLM for a full interpretation of an unmatched message.
func (c *Client) Interpret(ctx context.Context, message string, tc *intent.ThreadContext) (*intent.Interpretation, error) {
	requestBody := map[string]interface{}{
		"message": message,
	}
	if tc != nil {
		requestBody["threadContext"] = tc
	}

	body, err := c.post(ctx, "/api/ai/interpret", requestBody, "interpret")
	if err != nil {
		return nil, err
	}
	if err := validateBody(interpretationValidator, body); err != nil {
		metrics.LLMCallsTotal.WithLabelValues("interpret", "invalid").Inc()
		return nil, cerrors.NewLLMResponseInvalidError(err.Error(), fmt.Errorf("%w: %v", ErrLLMInvalidResponse, err))
	}

	var interp intent.Interpretation
	if err := json.Unmarshal(body, &interp); err != nil {
		return nil, cerrors.NewLLMResponseInvalidError(fmt.Sprintf("decode error: %v", err), fmt.Errorf("%w: decode error: %v", ErrLLMInvalidResponse, err))
	}

	c.logger.Info("message interpreted", map[string]interface{}{
		"intent":     interp.Intent,
		"confidence": interp.Confidence,
		"ambiguous":  interp.IsAmbiguous,
	})
	return &interp, nil
}

// ValidateIntent asks the LLM to confirm or override a low-confidence
// deterministic guess.
func (c *Client) ValidateIntent(ctx context.Context, it intent.Intent, reason string, signals []string) (*intent.Validation, error) {
	requestBody := map[string]interface{}{
		"intent": string(it),
		"reason": reason,
	}
	if len(signals) > 0 {
		requestBody["matchedSignals"] = signals
	}

	body, err := c.post(ctx, "/api/ai/validate-intent", requestBody, "validate_intent")
	if err != nil {
		return nil, err
	}
	if err := validateBody(validationValidator, body); err != nil {
		metrics.LLMCallsTotal.WithLabelValues("validate_intent", "invalid").Inc()
		return nil, cerrors.NewLLMResponseInvalidError(err.Error(), fmt.Errorf("%w: %v", ErrLLMInvalidResponse, err))
	}

	var v intent.Validation
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, cerrors.NewLLMResponseInvalidError(fmt.Sprintf("decode error: %v", err), fmt.Errorf("%w: decode error: %v", ErrLLMInvalidResponse, err))
	}
	return &v, nil
}

// SelectContracts asks the LLM for contract names scoped to an already
// resolved intent.
func (c *Client) SelectContracts(ctx context.Context, message string, it intent.Intent) ([]string, error) {
	requestBody := map[string]interface{}{
		"message": message,
		"intent":  string(it),
	}

	body, err := c.post(ctx, "/api/ai/select-contracts", requestBody, "select_contracts")
	if err != nil {
		return nil, err
	}
	if err := validateBody(selectionValidator, body); err != nil {
		metrics.LLMCallsTotal.WithLabelValues("select_contracts", "invalid").Inc()
		return nil, cerrors.NewLLMResponseInvalidError(err.Error(), fmt.Errorf("%w: %v", ErrLLMInvalidResponse, err))
	}

	var resp struct {
		Contracts []string `json:"contracts"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, cerrors.NewLLMResponseInvalidError(fmt.Sprintf("decode error: %v", err), fmt.Errorf("%w: decode error: %v", ErrLLMInvalidResponse, err))
	}
	return resp.Contracts, nil
}

// post sends one JSON request with retries and exponential backoff. The
// request is rebuilt each attempt so the body is readable on every retry.
func (c *Client) post(ctx context.Context, path string, payload map[string]interface{}, kind string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	encoded, _ := json.Marshal(payload)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.LLMCallsTotal.WithLabelValues(kind, "timeout").Inc()
				return nil, cerrors.NewLLMTimeoutError(kind, ErrLLMTimeout)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
		if err != nil {
			return nil, cerrors.NewLLMInterpretationFailedError(fmt.Errorf("%w: %v", ErrLLMFailed, err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if ctx.Err() != nil ||
			errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			metrics.LLMCallsTotal.WithLabelValues(kind, "timeout").Inc()
			return nil, cerrors.NewLLMTimeoutError(kind, ErrLLMTimeout)
		}
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		metrics.LLMCallsTotal.WithLabelValues(kind, "success").Inc()
		return body, nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		metrics.LLMCallsTotal.WithLabelValues(kind, "timeout").Inc()
		return nil, cerrors.NewLLMTimeoutError(kind, ErrLLMTimeout)
	}
	metrics.LLMCallsTotal.WithLabelValues(kind, "error").Inc()
	return nil, cerrors.NewLLMInterpretationFailedError(fmt.Errorf("%w: %v", ErrLLMFailed, lastErr))
}
