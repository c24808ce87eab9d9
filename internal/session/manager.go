// internal/session/manager.go
// Package session tracks the open form sessions of the console and exposes
// them over a thin JSON HTTP surface.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"listings-console/internal/common/errors"
	"listings-console/internal/common/logger"
	"listings-console/internal/common/metrics"
	"listings-console/internal/forms/draft"
	"listings-console/internal/forms/orchestrator"
)

// Fetcher loads an existing record for edit-mode sessions.
type Fetcher interface {
	Get(ctx context.Context, entityType, id string) (map[string]interface{}, error)
}

// ManagerOptions wires the manager's dependencies.
type ManagerOptions struct {
	Definitions   map[string]orchestrator.Definition
	KV            draft.KV // nil disables draft persistence
	DraftTTL      time.Duration
	DebounceDelay time.Duration
	Submitter     orchestrator.Submitter
	Fetcher       Fetcher
	Recorder      orchestrator.Recorder
	Logger        logger.Logger
}

// Manager owns the live orchestrator per open session, keyed by session id.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*orchestrator.Orchestrator

	defs     map[string]orchestrator.Definition
	kv       draft.KV
	draftTTL time.Duration
	debounce time.Duration

	submitter orchestrator.Submitter
	fetcher   Fetcher
	recorder  orchestrator.Recorder
	log       logger.Logger
}

func NewManager(opts ManagerOptions) *Manager {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Manager{
		sessions:  map[string]*orchestrator.Orchestrator{},
		defs:      opts.Definitions,
		kv:        opts.KV,
		draftTTL:  opts.DraftTTL,
		debounce:  opts.DebounceDelay,
		submitter: opts.Submitter,
		fetcher:   opts.Fetcher,
		recorder:  opts.Recorder,
		log:       log,
	}
}

// Open creates a session for the form type and opens its orchestrator. In
// edit mode the existing record is fetched first.
func (m *Manager) Open(ctx context.Context, formType string, mode orchestrator.Mode, entityID string) (string, *orchestrator.Orchestrator, error) {
	def, ok := m.defs[formType]
	if !ok {
		return "", nil, errors.NewUnknownFormTypeError(formType)
	}

	var record map[string]interface{}
	if mode == orchestrator.ModeEdit {
		if m.fetcher == nil {
			return "", nil, errors.NewEntityNotFoundError(def.EntityType, entityID)
		}
		fetched, err := m.fetcher.Get(ctx, def.EntityType, entityID)
		if err != nil {
			return "", nil, err
		}
		record = fetched
	}

	var drafts *draft.Store
	if m.kv != nil && mode == orchestrator.ModeAdd {
		drafts = draft.NewStore(m.kv, def.Schema, m.draftTTL, m.log)
	}

	o, err := orchestrator.New(orchestrator.Options{
		Definition:    def,
		Mode:          mode,
		Submitter:     m.submitter,
		Drafts:        drafts,
		DebounceDelay: m.debounce,
		Recorder:      m.recorder,
		Logger:        m.log,
		EntityID:      entityID,
		Record:        record,
	})
	if err != nil {
		return "", nil, err
	}
	if err := o.Open(ctx); err != nil {
		return "", nil, err
	}

	id := uuid.New().String()
	m.mu.Lock()
	m.sessions[id] = o
	m.mu.Unlock()

	metrics.OpenFormSessions.Inc()
	m.log.Info("Session opened", map[string]interface{}{
		"sessionId": id,
		"formType":  formType,
		"mode":      string(mode),
	})
	return id, o, nil
}

// Get resolves an open session by id.
func (m *Manager) Get(sessionID string) (*orchestrator.Orchestrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.sessions[sessionID]
	if !ok {
		return nil, errors.NewSessionNotFoundError(sessionID)
	}
	return o, nil
}

// Close ends a session and its orchestrator. Closing an unknown session is
// a typed error so double-closes surface in the client.
func (m *Manager) Close(sessionID string) error {
	m.mu.Lock()
	o, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return errors.NewSessionNotFoundError(sessionID)
	}

	o.Close()
	metrics.OpenFormSessions.Dec()
	m.log.Info("Session closed", map[string]interface{}{"sessionId": sessionID})
	return nil
}

// CloseAll ends every open session, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	open := m.sessions
	m.sessions = map[string]*orchestrator.Orchestrator{}
	m.mu.Unlock()

	for id, o := range open {
		o.Close()
		metrics.OpenFormSessions.Dec()
		m.log.Debug("Session closed on shutdown", map[string]interface{}{"sessionId": id})
	}
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
