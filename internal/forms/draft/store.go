// Package draft persists in-progress add-mode form snapshots to a keyed
// slot, one slot per form type.
package draft

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"listings-console/internal/common/errors"
	"listings-console/internal/common/logger"
	"listings-console/internal/common/metrics"
	"listings-console/internal/forms/fieldpath"
	"listings-console/internal/forms/schema"

	"github.com/xeipuuv/gojsonschema"
)

// ErrNotFound is returned by KV implementations when the slot is empty.
var ErrNotFound = stderrors.New("draft: not found")

// KV is the storage boundary. It is injected so concurrent form instances
// (and tests) don't collide on ambient module state; this package is the
// only one permitted to touch persistent storage for drafts.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Payload is the stored slot shape.
type Payload struct {
	Data    map[string]interface{} `json:"data"`
	SavedAt string                 `json:"savedAt"`
}

// payloadSchema structurally validates a loaded slot before hydration, so a
// corrupt or hand-edited payload cannot crash the form.
const payloadSchema = `{
	"type": "object",
	"required": ["data", "savedAt"],
	"properties": {
		"data": {"type": "object"},
		"savedAt": {"type": "string"}
	}
}`

// Store manages the single draft slot for one form type.
type Store struct {
	kv       KV
	formType string
	ttl      time.Duration
	schema   *schema.Schema
	log      logger.Logger
	now      func() time.Time
}

func NewStore(kv KV, formSchema *schema.Schema, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		kv:       kv,
		formType: formSchema.FormType,
		ttl:      ttl,
		schema:   formSchema,
		log:      log,
		now:      time.Now,
	}
}

func (s *Store) key() string {
	return "draft:" + s.formType
}

// Save writes the snapshot and a fresh timestamp to the slot, overwriting
// any previous draft. Image fields are stripped first; binary references are
// never persisted locally.
func (s *Store) Save(ctx context.Context, snapshot map[string]interface{}) error {
	data := fieldpath.Copy(snapshot)
	for path, spec := range s.schema.Fields {
		if spec.Image {
			fieldpath.Delete(data, path)
		}
	}

	payload := Payload{
		Data:    data,
		SavedAt: s.now().UTC().Format(time.RFC3339),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.NewDraftStoreFailedError(err)
	}

	if err := s.kv.Set(ctx, s.key(), string(raw), s.ttl); err != nil {
		s.log.Error("Draft save failed", map[string]interface{}{
			"formType": s.formType,
			"error":    err.Error(),
		})
		return errors.NewDraftStoreFailedError(err)
	}

	metrics.DraftSavesTotal.WithLabelValues(s.formType).Inc()
	s.log.Debug("Draft saved", map[string]interface{}{
		"formType": s.formType,
		"savedAt":  payload.SavedAt,
	})
	return nil
}

// Load returns the stored payload, or a DRAFT_NOT_FOUND error when the slot
// is empty, or a DRAFT_CORRUPT error when the payload fails structural
// validation.
func (s *Store) Load(ctx context.Context) (*Payload, error) {
	raw, err := s.kv.Get(ctx, s.key())
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return nil, errors.NewDraftNotFoundError(s.formType)
		}
		return nil, errors.NewDraftStoreFailedError(err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(payloadSchema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return nil, errors.NewDraftCorruptError(s.formType, err)
	}
	if !result.Valid() {
		detail := stderrors.New("payload does not match draft slot schema")
		if len(result.Errors()) > 0 {
			detail = stderrors.New(result.Errors()[0].String())
		}
		return nil, errors.NewDraftCorruptError(s.formType, detail)
	}

	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, errors.NewDraftCorruptError(s.formType, err)
	}
	return &payload, nil
}

// Clear deletes the slot.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Del(ctx, s.key()); err != nil {
		return errors.NewDraftStoreFailedError(err)
	}
	return nil
}

// Exists reports whether a draft is currently stored.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	ok, err := s.kv.Exists(ctx, s.key())
	if err != nil {
		return false, errors.NewDraftStoreFailedError(err)
	}
	return ok, nil
}

// Timestamp returns the savedAt of the stored draft, or "" when no draft
// exists.
func (s *Store) Timestamp(ctx context.Context) (string, error) {
	payload, err := s.Load(ctx)
	if err != nil {
		if stdErr, ok := err.(*errors.StandardError); ok && stdErr.Code == errors.ErrCodeDraftNotFound {
			return "", nil
		}
		return "", err
	}
	return payload.SavedAt, nil
}

// FormType returns the form type this store's slot is keyed by.
func (s *Store) FormType() string {
	return s.formType
}
