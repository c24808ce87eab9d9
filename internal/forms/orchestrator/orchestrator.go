// Package orchestrator owns the full form value tree for one open form:
// field updates, validation, derived-field recomputation, draft persistence,
// and submission to the platform API.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"listings-console/internal/common/errors"
	"listings-console/internal/common/logger"
	"listings-console/internal/common/metrics"
	"listings-console/internal/forms/derive"
	"listings-console/internal/forms/draft"
	"listings-console/internal/forms/fieldpath"
	"listings-console/internal/forms/schema"
	"listings-console/internal/forms/steps"
)

// Mode distinguishes creating a new entity from editing an existing record.
type Mode string

const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

// Phase is the per-form-open lifecycle state.
type Phase string

const (
	PhaseClosed       Phase = "closed"
	PhaseOpening      Phase = "opening"
	PhaseDraftPending Phase = "draftPending"
	PhaseEditing      Phase = "editing"
	PhaseSubmitting   Phase = "submitting"
)

// SubmissionState tracks the in-flight submit attempt and its outcome.
type SubmissionState struct {
	IsSubmitting bool
	APIError     *errors.StandardError
	NetworkError bool
}

// Definition bundles everything the orchestrator needs for one form type.
type Definition struct {
	FormType    string
	EntityType  string
	Schema      *schema.Schema
	Steps       []steps.Step
	Derivations []derive.Rule
}

// Submitter is the platform API boundary the orchestrator submits through.
type Submitter interface {
	Create(ctx context.Context, entityType string, payload map[string]interface{}) (map[string]interface{}, error)
	Update(ctx context.Context, entityType, id string, payload map[string]interface{}) (map[string]interface{}, error)
}

// Recorder receives a journal entry per submit attempt. Optional.
type Recorder interface {
	RecordSubmission(ctx context.Context, entityType, entityID, action string, success bool, message string) error
}

// Options configures a new Orchestrator.
type Options struct {
	Definition    Definition
	Mode          Mode
	Submitter     Submitter
	Drafts        *draft.Store // nil disables draft persistence
	DebounceDelay time.Duration
	Recorder      Recorder
	Logger        logger.Logger

	// EntityID and Record hydrate the form in edit mode.
	EntityID string
	Record   map[string]interface{}
}

// Orchestrator is the single writer for one open form instance.
type Orchestrator struct {
	mu sync.Mutex

	def       Definition
	mode      Mode
	phase     Phase
	tree      map[string]interface{}
	fieldErrs errors.FieldErrors
	stepsCtl  *steps.Controller
	state     SubmissionState

	drafts    *draft.Store
	debouncer *draft.Debouncer
	submitter Submitter
	recorder  Recorder
	log       logger.Logger

	entityID string
	record   map[string]interface{}

	// generation guards against applying a submit response after the form
	// was reset or closed mid-flight. Resets, closes, and successful
	// submits each advance it.
	generation uint64

	// draftGen is the generation current when the debounced draft save was
	// last scheduled. A save whose generation has been superseded is
	// dropped instead of written.
	draftGen uint64
}

func New(opts Options) (*Orchestrator, error) {
	if opts.Definition.Schema == nil {
		return nil, errors.NewUnknownFormTypeError(opts.Definition.FormType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeAdd
	}

	o := &Orchestrator{
		def:       opts.Definition,
		mode:      mode,
		phase:     PhaseClosed,
		tree:      map[string]interface{}{},
		fieldErrs: errors.FieldErrors{},
		drafts:    opts.Drafts,
		submitter: opts.Submitter,
		recorder:  opts.Recorder,
		log: log.WithFields(map[string]interface{}{
			"formType": opts.Definition.FormType,
			"mode":     string(mode),
		}),
		entityID: opts.EntityID,
		record:   opts.Record,
	}
	o.stepsCtl = steps.NewController(opts.Definition.Steps, inspector{o})

	if o.drafts != nil && mode == ModeAdd {
		delay := opts.DebounceDelay
		if delay <= 0 {
			delay = 1500 * time.Millisecond
		}
		o.debouncer = draft.NewDebouncer(delay, o.persistDraft)
	}

	return o, nil
}

// Open transitions the form out of closed: edit mode hydrates from the
// existing record; add mode starts fresh, or enters the draft-decision
// sub-state when a saved draft is found.
func (o *Orchestrator) Open(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseClosed {
		return nil
	}
	o.phase = PhaseOpening

	if o.mode == ModeEdit {
		o.tree = o.def.Schema.InitialTree()
		for path, value := range fieldpath.Flatten(o.record) {
			fieldpath.Set(o.tree, path, o.def.Schema.Coerce(path, value))
		}
		derive.All(o.def.Derivations, o.tree)
		o.phase = PhaseEditing
		o.log.Info("Form opened for edit", map[string]interface{}{"entityId": o.entityID})
		return nil
	}

	o.tree = o.def.Schema.InitialTree()

	if o.drafts != nil {
		exists, err := o.drafts.Exists(ctx)
		if err != nil {
			// A broken draft store must not block the form; open fresh.
			o.log.Warn("Draft lookup failed, opening fresh", map[string]interface{}{
				"error": err.Error(),
			})
		} else if exists {
			o.phase = PhaseDraftPending
			o.log.Info("Saved draft found, awaiting restore/discard decision", nil)
			return nil
		}
	}

	o.phase = PhaseEditing
	return nil
}

// Update writes a value at the dotted field path: coerce to the declared
// type, clear any stale error, revalidate, recompute derived fields, and
// schedule a debounced draft save in add mode. It is the only mutation
// entry point for the form value tree.
func (o *Orchestrator) Update(path string, value interface{}) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.phase {
	case PhaseDraftPending:
		return errors.NewDraftDecisionPendingError()
	case PhaseClosed, PhaseOpening:
		return errors.NewFormNotOpenError()
	}

	coerced := o.def.Schema.Coerce(path, value)
	fieldpath.Set(o.tree, path, coerced)

	// Optimistic clear: editing a field always clears its previous error,
	// including server-reported ones.
	o.fieldErrs.Clear(path)
	if msg := o.def.Schema.Validate(path, coerced, o.tree); msg != "" {
		o.fieldErrs.Set(path, msg)
	}

	derive.Apply(o.def.Derivations, o.tree, path)

	if o.mode == ModeAdd && o.debouncer != nil {
		o.draftGen = o.generation
		o.debouncer.Trigger(fieldpath.Copy(o.tree))
	}

	return nil
}

// persistDraft is the debounced save callback. It writes under o.mu so a
// fire that already copied its snapshot cannot land after a reset, close,
// or successful submit has cleared the slot: by the time the lock is
// acquired, those paths have advanced the generation and the save is
// dropped.
func (o *Orchestrator) persistDraft(snapshot map[string]interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.generation != o.draftGen || o.phase == PhaseClosed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := o.drafts.Save(ctx, snapshot); err != nil {
		o.log.Warn("Debounced draft save failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// RestoreDraft hydrates the form from the saved draft. Only meaningful in
// the draft-decision sub-state; afterwards it is a no-op.
func (o *Orchestrator) RestoreDraft(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseDraftPending {
		return nil
	}

	payload, err := o.drafts.Load(ctx)
	if err != nil {
		// Corrupt or unreadable slot: clear it and continue fresh rather
		// than trapping the user in the pending state.
		_ = o.drafts.Clear(ctx)
		o.tree = o.def.Schema.InitialTree()
		o.phase = PhaseEditing
		return err
	}

	o.tree = o.def.Schema.InitialTree()
	for path, value := range fieldpath.Flatten(payload.Data) {
		fieldpath.Set(o.tree, path, o.def.Schema.Coerce(path, value))
	}
	derive.All(o.def.Derivations, o.tree)
	o.phase = PhaseEditing

	metrics.DraftRestoresTotal.WithLabelValues(o.def.FormType, "restore").Inc()
	o.log.Info("Draft restored", map[string]interface{}{"savedAt": payload.SavedAt})
	return nil
}

// DiscardDraft clears the saved draft and starts from the declared initial
// values. Only meaningful in the draft-decision sub-state.
func (o *Orchestrator) DiscardDraft(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase != PhaseDraftPending {
		return nil
	}

	if err := o.drafts.Clear(ctx); err != nil {
		return err
	}

	o.tree = o.def.Schema.InitialTree()
	o.phase = PhaseEditing

	metrics.DraftRestoresTotal.WithLabelValues(o.def.FormType, "discard").Inc()
	o.log.Info("Draft discarded", nil)
	return nil
}

// DraftTimestamp returns the savedAt of the pending draft, for the
// restore/discard prompt.
func (o *Orchestrator) DraftTimestamp(ctx context.Context) (string, error) {
	if o.drafts == nil {
		return "", nil
	}
	return o.drafts.Timestamp(ctx)
}

// Reset replaces the form with its declared initial value tree and clears
// all errors and submission state. Any in-flight submit result is ignored.
// A pending restore/discard decision survives a reset: the saved draft
// stays in its slot and editing remains blocked until the user decides.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	o.tree = o.def.Schema.InitialTree()
	o.fieldErrs = errors.FieldErrors{}
	o.state = SubmissionState{}
	if o.debouncer != nil {
		o.debouncer.Cancel()
	}
	switch o.phase {
	case PhaseClosed, PhaseDraftPending:
		// closed stays closed; a draft decision stays pending
	default:
		o.phase = PhaseEditing
	}
}

// Close ends the form lifecycle. An in-flight submit keeps running but its
// result is ignored.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	if o.debouncer != nil {
		o.debouncer.Stop()
	}
	o.phase = PhaseClosed
}

// ---- Read accessors ----

// Value reads the current value at the dotted field path.
func (o *Orchestrator) Value(path string) (interface{}, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return fieldpath.Get(o.tree, path)
}

// Snapshot returns a deep copy of the form value tree.
func (o *Orchestrator) Snapshot() map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	return fieldpath.Copy(o.tree)
}

// FieldErrors returns a copy of the active field error mapping.
func (o *Orchestrator) FieldErrors() errors.FieldErrors {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := errors.FieldErrors{}
	out.Merge(o.fieldErrs)
	return out
}

// Warnings evaluates the schema's advisory rules over the live tree.
func (o *Orchestrator) Warnings() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.def.Schema.Warnings(o.tree)
}

// Phase returns the current lifecycle phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Mode returns the form mode.
func (o *Orchestrator) Mode() Mode {
	return o.mode
}

// FormType returns the definition's form type.
func (o *Orchestrator) FormType() string {
	return o.def.FormType
}

// State returns a copy of the submission state.
func (o *Orchestrator) State() SubmissionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// ---- Step navigation ----

func (o *Orchestrator) StepStatus(index int) steps.Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stepsCtl.StatusOf(index)
}

func (o *Orchestrator) OverallValid() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stepsCtl.OverallValid()
}

func (o *Orchestrator) StepIndex() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stepsCtl.Index()
}

func (o *Orchestrator) NextStep() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stepsCtl.Next()
}

func (o *Orchestrator) PrevStep() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stepsCtl.Prev()
}

func (o *Orchestrator) GoToStep(index int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stepsCtl.GoTo(index)
}

func (o *Orchestrator) Steps() []steps.Step {
	return o.def.Steps
}

// inspector adapts the orchestrator to steps.Inspector. It is only called
// with o.mu already held, through the step methods above.
type inspector struct {
	o *Orchestrator
}

func (i inspector) Value(path string) (interface{}, bool) {
	return fieldpath.Get(i.o.tree, path)
}

func (i inspector) IsDefault(path string) bool {
	value, _ := fieldpath.Get(i.o.tree, path)
	return i.o.def.Schema.IsDefault(path, value)
}

func (i inspector) ErrorAt(path string) string {
	// Server-reported errors stick until the field is next edited.
	if msg := i.o.fieldErrs[path]; msg != "" {
		return msg
	}
	value, _ := fieldpath.Get(i.o.tree, path)
	return i.o.def.Schema.Validate(path, value, i.o.tree)
}
