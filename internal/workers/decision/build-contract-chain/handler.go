package buildcontractchain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"

	cerrors "dealsense/internal/common/errors"
	"dealsense/internal/decision/engine"
	"dealsense/internal/decision/intent"
)

const (
	TaskType = "build-contract-chain"
)

var (
	ErrInvalidInput  = errors.New("BUILD_CHAIN_INVALID_INPUT")
	ErrUnknownIntent = errors.New("BUILD_CHAIN_UNKNOWN_INTENT")
)

const inputSchema = `{
	"type": "object",
	"required": ["message", "intent"],
	"properties": {
		"message": {"type": "string", "minLength": 1},
		"intent": {"type": "string", "minLength": 1}
	}
}`

var inputValidator = gojsonschema.NewStringLoader(inputSchema)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	engine *engine.Engine
	logger Logger
}

func NewHandler(config *Config, eng *engine.Engine, log Logger) *Handler {
	return &Handler{
		config: config,
		engine: eng,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := parseInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	it, ok := intent.Parse(input.Intent)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, input.Intent)
	}

	built := h.engine.BuildChain(ctx, input.Message, it, input.Scope, input.ProposedContracts)

	h.logger.Info("contract chain built", map[string]interface{}{
		"intent":          input.Intent,
		"selectionMethod": string(built.SelectionMethod),
		"primaryContract": string(built.PrimaryContract),
		"chainLength":     len(built.Contracts),
	})

	return &Output{ContractChain: built}, nil
}

func parseInput(variables string) (*Input, error) {
	result, err := gojsonschema.Validate(inputValidator, gojsonschema.NewStringLoader(variables))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, result.Errors())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &input, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	errorCode := string(cerrors.CodeOf(err))
	if errors.Is(err, ErrInvalidInput) {
		errorCode = "BUILD_CHAIN_INVALID_INPUT"
	} else if errors.Is(err, ErrUnknownIntent) {
		errorCode = "BUILD_CHAIN_UNKNOWN_INTENT"
	}

	// Bad input and unknown intents fail the same way on every attempt,
	// so they burn no retries.
	var retries int32
	if cerrors.IsRetryable(err) && job.Retries > 0 {
		retries = job.Retries - 1
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
		"retries":   retries,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(errorCode + ": " + err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
