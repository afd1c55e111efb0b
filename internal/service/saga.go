package service

import (
	"context"
	"errors"
	"fmt"

	"socialmesh/internal/observability"
)

// OutcomeStatus tags the overall result of a multi-store write.
type OutcomeStatus string

const (
	// OutcomeCompleted means every step succeeded or was skipped.
	OutcomeCompleted OutcomeStatus = "completed"
	// OutcomePartial means the commit step succeeded and at least one
	// projection failed.
	OutcomePartial OutcomeStatus = "partial"
	// OutcomeFailed means the commit step failed and nothing after it ran.
	OutcomeFailed OutcomeStatus = "failed"
)

// StepStatus is the result of a single store call within a saga.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// Store labels used in step results, logs and metrics.
const (
	StoreRecord   = "record"
	StoreCache    = "cache"
	StoreRanking  = "ranking"
	StoreEventLog = "eventlog"
	StoreGraph    = "graph"
)

// StepResult records what happened to one step.
type StepResult struct {
	Step   string     `json:"step"`
	Store  string     `json:"store"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// Outcome is the tagged result of a saga. Steps lists every step that was
// attempted or skipped, in execution order.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Steps  []StepResult  `json:"steps"`
}

// FailedSteps returns the steps whose status is StepFailed.
func (o Outcome) FailedSteps() []StepResult {
	var failed []StepResult
	for _, s := range o.Steps {
		if s.Status == StepFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// StoreError wraps a failed adapter call.
type StoreError struct {
	Op    string
	Store string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s store: %v", e.Op, e.Store, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// skipError marks a step that ran but had nothing to do.
type skipError struct {
	reason string
}

func (e *skipError) Error() string { return e.reason }

func skip(reason string) error { return &skipError{reason: reason} }

// saga accumulates step results for one coordinator operation.
type saga struct {
	c     *Coordinator
	op    string
	steps []StepResult
}

func (c *Coordinator) newSaga(op string) *saga {
	return &saga{c: c, op: op}
}

// run executes one step and records its result. It returns a *StoreError
// when the step failed and nil when it succeeded or was skipped.
func (s *saga) run(ctx context.Context, store, step string, fn func(context.Context) error) error {
	err := s.c.call(ctx, store, step, fn)

	var skipped *skipError
	switch {
	case err == nil:
		s.steps = append(s.steps, StepResult{Step: step, Store: store, Status: StepOK})
		return nil
	case errors.As(err, &skipped):
		s.steps = append(s.steps, StepResult{Step: step, Store: store, Status: StepSkipped, Error: skipped.reason})
		return nil
	default:
		s.steps = append(s.steps, StepResult{Step: step, Store: store, Status: StepFailed, Error: err.Error()})
		s.c.logger.WarnContext(ctx, "saga step failed",
			"operation", s.op, "step", step, "store", store, "error", err)
		return &StoreError{Op: s.op, Store: store, Err: err}
	}
}

// finish tags the outcome. committed reports whether the commit step
// succeeded.
func (s *saga) finish(committed bool) Outcome {
	status := OutcomeCompleted
	switch {
	case !committed:
		status = OutcomeFailed
	case len(Outcome{Steps: s.steps}.FailedSteps()) > 0:
		status = OutcomePartial
	}
	observability.SagaOutcomes.WithLabelValues(s.op, string(status)).Inc()
	return Outcome{Status: status, Steps: s.steps}
}
