// Package feedback implements the course feedback form: field state, inline
// validation, completion progress and the submit/confirm/cancel workflow.
//
// An Engine holds exactly one live form. It performs no locking and must be
// driven by a single caller; every operation runs to completion synchronously.
package feedback

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned when a mutation names a field the form does not have
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidValue is returned when a value cannot be stored in the named field
	ErrInvalidValue = errors.New("invalid value")

	// ErrAwaitingConfirmation is returned for edits while the confirmation step is open
	ErrAwaitingConfirmation = errors.New("form is awaiting confirmation")

	// ErrNotReady is returned by Confirm when Submit has not accepted the form
	ErrNotReady = errors.New("form has not been submitted")
)

// Recorder receives finalized submissions.
type Recorder interface {
	Append(ctx context.Context, record FormState) error
}

// Option configures an Engine
type Option func(*Engine)

// WithSubmitListener registers fn to be called with every confirmed record
func WithSubmitListener(fn func(FormState)) Option {
	return func(e *Engine) {
		e.listeners = append(e.listeners, fn)
	}
}

// Engine owns one form instance and its submission lifecycle
type Engine struct {
	recorder  Recorder
	listeners []func(FormState)

	state    FormState
	errors   ErrorMap
	progress float64
	phase    Phase
}

// New creates an engine with a blank form
func New(recorder Recorder, opts ...Option) *Engine {
	e := &Engine{recorder: recorder}
	for _, opt := range opts {
		opt(e)
	}
	e.reset()
	return e
}

// State returns a copy of the current values
func (e *Engine) State() FormState {
	return e.state.Clone()
}

// Errors returns a copy of the current field errors
func (e *Engine) Errors() ErrorMap {
	return e.errors.Clone()
}

// Progress returns the share of required fields that are filled and valid, 0–100
func (e *Engine) Progress() float64 {
	return e.progress
}

// Phase returns the lifecycle position
func (e *Engine) Phase() Phase {
	return e.phase
}

// IsValid reports whether the form may be submitted
func (e *Engine) IsValid() bool {
	if len(e.errors) > 0 {
		return false
	}
	for _, f := range RequiredFields {
		if !isFilled(f, e.state) {
			return false
		}
	}
	return textLength(e.state.Comments) >= MinCommentsLength
}

// SetField stores value in field, revalidates that field and recomputes progress
func (e *Engine) SetField(field Field, value any) error {
	if e.phase != PhaseEditing {
		return ErrAwaitingConfirmation
	}
	next := e.state.Clone()
	if err := assign(&next, field, value); err != nil {
		return err
	}
	e.state = next

	if msg := Validate(field, e.state); msg != "" {
		e.errors[field] = msg
	} else {
		delete(e.errors, field)
	}
	e.recompute()
	return nil
}

// ToggleOption adds option to workedWell when included is true, or removes it otherwise
func (e *Engine) ToggleOption(option string, included bool) error {
	if !contains(WorkedWellOptions, option) {
		return invalidValue(FieldWorkedWell, "unknown option %q", option)
	}

	current := e.state.WorkedWell
	next := make([]string, 0, len(current)+1)
	if included {
		next = append(next, current...)
		if !contains(next, option) {
			next = append(next, option)
		}
	} else {
		for _, tag := range current {
			if tag != option {
				next = append(next, tag)
			}
		}
	}
	return e.SetField(FieldWorkedWell, next)
}

// Submit opens the confirmation step if the form is valid.
// It returns false and changes nothing when the form is invalid.
func (e *Engine) Submit() bool {
	if e.phase == PhaseReadyToConfirm {
		return true
	}
	if !e.IsValid() {
		return false
	}
	e.phase = PhaseReadyToConfirm
	return true
}

// Confirm records the submitted form and resets the engine for the next student.
// On a recorder error the engine stays in the confirmation step with its data intact.
func (e *Engine) Confirm(ctx context.Context) (FormState, error) {
	if e.phase != PhaseReadyToConfirm {
		return FormState{}, ErrNotReady
	}

	record := e.state.Clone()
	if e.recorder != nil {
		if err := e.recorder.Append(ctx, record); err != nil {
			return FormState{}, fmt.Errorf("failed to record submission: %w", err)
		}
	}

	for _, fn := range e.listeners {
		fn(record.Clone())
	}

	e.reset()
	return record, nil
}

// Cancel closes the confirmation step without touching the form data
func (e *Engine) Cancel() {
	e.phase = PhaseEditing
}

func (e *Engine) reset() {
	e.state = DefaultFormState()
	e.errors = make(ErrorMap)
	e.phase = PhaseEditing
	e.recompute()
}

// recompute is the only place progress is written. The default pace only
// counts once some other required field has been filled in, so a form whose
// state equals the defaults always reports 0.
func (e *Engine) recompute() {
	done, touched := 0, false
	for _, f := range RequiredFields {
		if !isFilled(f, e.state) {
			continue
		}
		if f != FieldPace {
			touched = true
		}
		if Validate(f, e.state) == "" {
			done++
		}
	}
	if !touched {
		done = 0
	}
	e.progress = float64(done) / float64(len(RequiredFields)) * 100
}
