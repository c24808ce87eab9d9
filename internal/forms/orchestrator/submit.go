package orchestrator

import (
	"context"
	"fmt"
	"time"

	"listings-console/internal/common/errors"
	"listings-console/internal/common/metrics"
	"listings-console/internal/forms/fieldpath"
	"listings-console/internal/forms/steps"
)

// Result is the outcome of a successful (or superseded) submit.
type Result struct {
	Entity map[string]interface{}
	// Stale marks a response that arrived after the form was reset or
	// closed; its result was discarded.
	Stale bool
}

// Submit sends the form to the platform API. It refuses to run unless every
// step is valid, rejects re-entrant calls while a submission is in flight,
// and reads its own payload snapshot at call time so later edits or draft
// saves cannot affect it.
//
// A successful submit closes the form phase but does not end the session
// that owns it; the caller still closes the session (and with it the
// open-session gauge) explicitly.
//
// On rejection, server-reported field errors are mapped back into the field
// error mapping; on transport failure the submission state is marked
// network-failed so the caller can offer a plain retry. Neither failure
// clears the draft. Control always returns to editing.
func (o *Orchestrator) Submit(ctx context.Context) (*Result, error) {
	o.mu.Lock()

	if o.phase == PhaseClosed || o.phase == PhaseOpening {
		o.mu.Unlock()
		return nil, errors.NewFormNotOpenError()
	}
	if o.phase == PhaseDraftPending {
		o.mu.Unlock()
		return nil, errors.NewDraftDecisionPendingError()
	}
	if o.state.IsSubmitting {
		o.mu.Unlock()
		return nil, errors.NewSubmitInProgressError()
	}
	if !o.stepsCtl.OverallValid() {
		o.mu.Unlock()
		return nil, errors.NewSubmitBlockedError(o.describeInvalidSteps())
	}

	payload := o.buildPayload()
	gen := o.generation
	mode := o.mode
	entityID := o.entityID
	entityType := o.def.EntityType
	formType := o.def.FormType

	o.state = SubmissionState{IsSubmitting: true}
	o.phase = PhaseSubmitting
	o.mu.Unlock()

	o.log.Info("Submitting form", map[string]interface{}{"entityType": entityType})
	start := time.Now()

	var entity map[string]interface{}
	var err error
	if mode == ModeEdit {
		entity, err = o.submitter.Update(ctx, entityType, entityID, payload)
	} else {
		entity, err = o.submitter.Create(ctx, entityType, payload)
	}

	metrics.FormSubmissionDuration.WithLabelValues(formType).Observe(time.Since(start).Seconds())

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		// The form was reset or closed while the call was in flight; the
		// response no longer belongs to anyone.
		o.log.Info("Discarding submit response for superseded form instance", nil)
		return &Result{Stale: true}, nil
	}

	o.state.IsSubmitting = false

	if err != nil {
		o.phase = PhaseEditing
		stdErr := errors.Convert(err, errors.ErrCodeUnexpectedReply, "Submission failed")

		if stdErr.Retryable {
			o.state.NetworkError = true
			metrics.FormSubmissionsTotal.WithLabelValues(formType, "network").Inc()
		} else {
			o.state.APIError = stdErr
			if fieldErrs := errors.FieldErrorsOf(stdErr); fieldErrs != nil {
				o.fieldErrs.Merge(fieldErrs)
			}
			metrics.FormSubmissionsTotal.WithLabelValues(formType, "rejected").Inc()
		}

		o.recordSubmission(ctx, entityType, entityID, mode, false, stdErr.Message)
		o.log.Warn("Submission failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"retryable": stdErr.Retryable,
		})
		return nil, stdErr
	}

	// Success: the draft has served its purpose. Advancing the generation
	// supersedes any debounced save still in flight, so it cannot rewrite
	// the slot after the clear below.
	o.generation++
	if o.mode == ModeAdd && o.drafts != nil {
		if o.debouncer != nil {
			o.debouncer.Cancel()
		}
		clearCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if clearErr := o.drafts.Clear(clearCtx); clearErr != nil {
			o.log.Warn("Failed to clear draft after submit", map[string]interface{}{
				"error": clearErr.Error(),
			})
		}
		cancel()
	}

	o.state = SubmissionState{}
	o.phase = PhaseClosed

	submittedID := entityID
	if submittedID == "" {
		submittedID = fieldpath.String(entity["id"])
	}
	o.recordSubmission(ctx, entityType, submittedID, mode, true, "submitted")

	metrics.FormSubmissionsTotal.WithLabelValues(formType, "success").Inc()
	o.log.Info("Submission succeeded", map[string]interface{}{"entityId": submittedID})

	return &Result{Entity: entity}, nil
}

// buildPayload assembles the wire payload from the value tree, stripping
// UI-only scaffolding fields. Caller holds o.mu.
func (o *Orchestrator) buildPayload() map[string]interface{} {
	payload := fieldpath.Copy(o.tree)
	for path, spec := range o.def.Schema.Fields {
		if spec.Scaffolding {
			fieldpath.Delete(payload, path)
		}
	}
	return payload
}

// describeInvalidSteps summarizes the steps blocking submission. Caller
// holds o.mu.
func (o *Orchestrator) describeInvalidSteps() string {
	detail := ""
	for i, step := range o.def.Steps {
		status := o.stepsCtl.StatusOf(i)
		if status == steps.StatusValid {
			continue
		}
		if detail != "" {
			detail += ", "
		}
		detail += fmt.Sprintf("%s: %s", step.ID, status)
	}
	return detail
}

func (o *Orchestrator) recordSubmission(ctx context.Context, entityType, entityID string, mode Mode, success bool, message string) {
	if o.recorder == nil {
		return
	}

	action := "create"
	if mode == ModeEdit {
		action = "update"
	}

	if err := o.recorder.RecordSubmission(ctx, entityType, entityID, action, success, message); err != nil {
		o.log.Warn("Journal write failed", map[string]interface{}{"error": err.Error()})
	}
}
