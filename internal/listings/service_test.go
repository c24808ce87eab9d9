package listings

import (
	"context"
	"sync"
	"testing"
	"time"

	"listings-console/internal/common/errors"
	"listings-console/internal/common/logger"
	"listings-console/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu          sync.Mutex
	listPages   []*platform.ListResult
	listCalls   int
	counts      map[string]int
	countsErr   error
	deleteErr   error
	deleteCalls int
	deleteBlock chan struct{}
	deleted     map[string]bool // id -> already inactive before this call
}

func (f *fakeAPI) List(_ context.Context, _ string, params platform.ListParams) (*platform.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	index := params.Page - 1
	if index < 0 || index >= len(f.listPages) {
		return &platform.ListResult{Items: []map[string]interface{}{}}, nil
	}
	return f.listPages[index], nil
}

func (f *fakeAPI) Counts(_ context.Context, _ string) (map[string]int, error) {
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	return f.counts, nil
}

func (f *fakeAPI) Delete(_ context.Context, _ string, id string) (*platform.DeleteResult, error) {
	f.mu.Lock()
	f.deleteCalls++
	block := f.deleteBlock
	if f.deleted == nil {
		f.deleted = map[string]bool{}
	}
	wasInactive := f.deleted[id]
	f.deleted[id] = true
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	if wasInactive {
		return &platform.DeleteResult{Permanent: true}, nil
	}
	return &platform.DeleteResult{
		Entity:    map[string]interface{}{"id": id, "isActive": false},
		Permanent: false,
	}, nil
}

func (f *fakeAPI) deleteCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteCalls
}

func newTestService(t *testing.T, api *fakeAPI) *Service {
	return NewService(api, logger.NewTestLogger(t))
}

func TestTabCountsUsesEndpointWhenPresent(t *testing.T) {
	api := &fakeAPI{counts: map[string]int{"total": 7, "active": 5}}
	svc := newTestService(t, api)

	counts, err := svc.TabCounts(context.Background(), "mall")
	require.NoError(t, err)
	assert.Equal(t, 7, counts["total"])
	assert.Equal(t, 0, api.listCalls, "no list sweep when the endpoint exists")
}

func TestTabCountsFallsBackToClientSideCounting(t *testing.T) {
	api := &fakeAPI{
		countsErr: errors.NewCountsNotFoundError("mall"),
		listPages: []*platform.ListResult{
			{
				Items: []map[string]interface{}{
					{"id": "m-1", "isActive": true},
					{"id": "m-2", "isActive": false},
				},
				Pagination: platform.Pagination{HasNextPage: true},
			},
			{
				Items: []map[string]interface{}{
					{"id": "m-3", "isActive": true},
				},
				Pagination: platform.Pagination{HasNextPage: false},
			},
		},
	}
	svc := newTestService(t, api)

	counts, err := svc.TabCounts(context.Background(), "mall")
	require.NoError(t, err)
	assert.Equal(t, 3, counts["total"])
	assert.Equal(t, 2, counts["active"])
	assert.Equal(t, 1, counts["inactive"])
	assert.Equal(t, 2, api.listCalls, "sweep follows pagination")
}

func TestTabCountsPropagatesOtherErrors(t *testing.T) {
	api := &fakeAPI{countsErr: errors.NewNetworkFailureError(assert.AnError)}
	svc := newTestService(t, api)

	_, err := svc.TabCounts(context.Background(), "mall")
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeNetworkFailure), errors.CodeOf(err))
	assert.Equal(t, 0, api.listCalls)
}

func TestDeleteTwoStageFlow(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api)
	ctx := context.Background()

	first, err := svc.Delete(ctx, "property", "p-1")
	require.NoError(t, err)
	assert.False(t, first.Permanent)
	assert.Equal(t, false, first.Entity["isActive"])

	second, err := svc.Delete(ctx, "property", "p-1")
	require.NoError(t, err)
	assert.True(t, second.Permanent)
}

func TestDeleteIgnoresRepeatedConfirms(t *testing.T) {
	api := &fakeAPI{deleteBlock: make(chan struct{})}
	svc := newTestService(t, api)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Delete(ctx, "property", "p-1")
	}()

	require.Eventually(t, func() bool {
		return svc.DeleteInProgress("property", "p-1")
	}, time.Second, time.Millisecond)

	// The double-fired confirm is rejected, not queued.
	_, err := svc.Delete(ctx, "property", "p-1")
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeDeleteInProgress), errors.CodeOf(err))

	// A different entity id is unaffected by the guard.
	assert.False(t, svc.DeleteInProgress("property", "p-2"))

	close(api.deleteBlock)
	<-done
	assert.Equal(t, 1, api.deleteCallCount())
	assert.False(t, svc.DeleteInProgress("property", "p-1"))
}

func TestDeleteGuardClearsOnFailure(t *testing.T) {
	api := &fakeAPI{deleteErr: errors.NewNetworkFailureError(assert.AnError)}
	svc := newTestService(t, api)
	ctx := context.Background()

	_, err := svc.Delete(ctx, "property", "p-1")
	require.Error(t, err)

	// The guard releases so the user can retry.
	assert.False(t, svc.DeleteInProgress("property", "p-1"))
}
