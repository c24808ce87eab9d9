package draft

import (
	"context"
	"testing"
	"time"

	"listings-console/internal/common/database"
	"listings-console/internal/common/errors"
	"listings-console/internal/common/logger"
	"listings-console/internal/forms/fieldpath"
	"listings-console/internal/forms/schema"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFormSchema() *schema.Schema {
	return &schema.Schema{
		FormType: "plot",
		Fields: map[string]schema.FieldSpec{
			"plotNumber": {Type: schema.TypeString, Label: "Plot number"},
			"size.sqft":  {Type: schema.TypeNumber, Label: "Size (sqft)"},
			"images":     {Type: schema.TypeStringArray, Label: "Images", Image: true},
		},
	}
}

func testSnapshot() map[string]interface{} {
	tree := map[string]interface{}{}
	fieldpath.Set(tree, "plotNumber", "P-204")
	fieldpath.Set(tree, "size.sqft", 75000.0)
	fieldpath.Set(tree, "images", []string{"blob:local-1"})
	return tree
}

func newRedisStore(t *testing.T) *Store {
	mr := miniredis.RunT(t)
	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(NewRedisKV(client), testFormSchema(), 0, logger.NewTestLogger(t))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	require.NoError(t, store.Save(ctx, testSnapshot()))

	payload, err := store.Load(ctx)
	require.NoError(t, err)

	got, ok := fieldpath.Get(payload.Data, "plotNumber")
	require.True(t, ok)
	assert.Equal(t, "P-204", got)

	got, ok = fieldpath.Get(payload.Data, "size.sqft")
	require.True(t, ok)
	assert.Equal(t, 75000.0, got)

	_, err = time.Parse(time.RFC3339, payload.SavedAt)
	assert.NoError(t, err)
}

func TestSaveStripsImageFields(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	require.NoError(t, store.Save(ctx, testSnapshot()))

	payload, err := store.Load(ctx)
	require.NoError(t, err)

	_, ok := fieldpath.Get(payload.Data, "images")
	assert.False(t, ok, "image fields must never be persisted")
}

func TestSaveOverwritesPreviousDraft(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	first := testSnapshot()
	require.NoError(t, store.Save(ctx, first))

	second := testSnapshot()
	fieldpath.Set(second, "plotNumber", "P-999")
	require.NoError(t, store.Save(ctx, second))

	payload, err := store.Load(ctx)
	require.NoError(t, err)

	got, _ := fieldpath.Get(payload.Data, "plotNumber")
	assert.Equal(t, "P-999", got)
}

func TestLoadMissingDraft(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	_, err := store.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeDraftNotFound), errors.CodeOf(err))
}

func TestLoadCorruptDraft(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv, testFormSchema(), 0, logger.NewNoOpLogger())

	require.NoError(t, kv.Set(ctx, "draft:plot", `{"savedAt": 12}`, 0))

	_, err := store.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeDraftCorrupt), errors.CodeOf(err))
}

func TestClearAndExists(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	ok, err := store.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, testSnapshot()))

	ok, err = store.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Clear(ctx))

	ok, err = store.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTimestamp(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV(), testFormSchema(), 0, logger.NewNoOpLogger())

	ts, err := store.Timestamp(ctx)
	require.NoError(t, err)
	assert.Empty(t, ts)

	require.NoError(t, store.Save(ctx, testSnapshot()))

	ts, err = store.Timestamp(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, ts)
}

func TestMemoryKVHonorsTTL(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	base := time.Now()
	kv.clock = func() time.Time { return base }

	require.NoError(t, kv.Set(ctx, "draft:plot", "x", time.Minute))

	ok, err := kv.Exists(ctx, "draft:plot")
	require.NoError(t, err)
	assert.True(t, ok)

	kv.clock = func() time.Time { return base.Add(2 * time.Minute) }

	ok, err = kv.Exists(ctx, "draft:plot")
	require.NoError(t, err)
	assert.False(t, ok)
}
