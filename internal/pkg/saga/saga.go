// Package saga runs multi-step mutations as an ordered list of forward
// actions, each paired with an undo. When a step fails, the steps that
// already succeeded are compensated in reverse order.
package saga

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"propertydesk/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

type Step struct {
	Name string
	Do   func(ctx context.Context) error
	// Undo may be nil for steps with nothing to revert (reads, notifications).
	Undo func(ctx context.Context) error
}

// Error describes a failed saga. Compensated lists the steps that were
// rolled back; CompensationErrs holds undo failures, which leave the data in
// a partially-updated state that an operator has to fix.
type Error struct {
	Saga             string
	FailedStep       string
	Cause            error
	Compensated      []string
	CompensationErrs map[string]error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: step %q failed: %v", e.Saga, e.FailedStep, e.Cause)
	if len(e.CompensationErrs) > 0 {
		names := make([]string, 0, len(e.CompensationErrs))
		for name := range e.CompensationErrs {
			names = append(names, name)
		}
		msg += fmt.Sprintf(" (compensation failed for: %s)", strings.Join(names, ", "))
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Consistent is true when every completed step was undone successfully.
func (e *Error) Consistent() bool { return len(e.CompensationErrs) == 0 }

// Details is a JSON-friendly summary for error responses.
func (e *Error) Details() map[string]any {
	failed := map[string]string{}
	for name, err := range e.CompensationErrs {
		failed[name] = err.Error()
	}
	return map[string]any{
		"saga":                e.Saga,
		"failed_step":         e.FailedStep,
		"compensated":         e.Compensated,
		"compensation_failed": failed,
		"consistent":          e.Consistent(),
	}
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

type Saga struct {
	name  string
	steps []Step
	log   logrus.FieldLogger
}

func New(name string, log logrus.FieldLogger) *Saga {
	return &Saga{name: name, log: logger.OrDiscard(log)}
}

func (s *Saga) Add(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Run executes the steps in order. Compensation runs with a context detached
// from cancellation so a caller going away does not leave the rollback half done.
func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.Do(ctx); err != nil {
			s.log.WithFields(logrus.Fields{"saga": s.name, "step": step.Name}).WithError(err).Warn("saga step failed, compensating")
			return s.compensate(context.WithoutCancel(ctx), i, err)
		}
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, failedAt int, cause error) error {
	serr := &Error{Saga: s.name, FailedStep: s.steps[failedAt].Name, Cause: cause}
	for i := failedAt - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(ctx); err != nil {
			if serr.CompensationErrs == nil {
				serr.CompensationErrs = map[string]error{}
			}
			serr.CompensationErrs[step.Name] = err
			s.log.WithFields(logrus.Fields{"saga": s.name, "step": step.Name}).WithError(err).Error("saga compensation failed")
			continue
		}
		serr.Compensated = append(serr.Compensated, step.Name)
	}
	return serr
}
