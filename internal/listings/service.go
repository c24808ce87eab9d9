// internal/listings/service.go
// Package listings backs the console's list views: paged fetches, tab
// badge counts, and the two-stage delete flow with its double-fire guard.
package listings

import (
	"context"
	"fmt"
	"sync"

	"listings-console/internal/common/errors"
	"listings-console/internal/common/logger"
	"listings-console/internal/common/metrics"
	"listings-console/internal/platform"
)

// API is the slice of the platform client the list views need.
type API interface {
	List(ctx context.Context, entityType string, params platform.ListParams) (*platform.ListResult, error)
	Counts(ctx context.Context, entityType string) (map[string]int, error)
	Delete(ctx context.Context, entityType, id string) (*platform.DeleteResult, error)
}

// countFallbackPageSize bounds the page size used when counting
// client-side because the counts endpoint is absent.
const countFallbackPageSize = 100

type Service struct {
	api API
	log logger.Logger

	mu       sync.Mutex
	deleting map[string]struct{}
}

func NewService(api API, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		api:      api,
		log:      log,
		deleting: map[string]struct{}{},
	}
}

// List fetches one page of entities.
func (s *Service) List(ctx context.Context, entityType string, params platform.ListParams) (*platform.ListResult, error) {
	return s.api.List(ctx, entityType, params)
}

// TabCounts returns the badge counters for an entity type. When the
// platform has no counts endpoint yet, it falls back to paging through the
// list and counting client-side.
func (s *Service) TabCounts(ctx context.Context, entityType string) (map[string]int, error) {
	counts, err := s.api.Counts(ctx, entityType)
	if err == nil {
		return counts, nil
	}
	if errors.CodeOf(err) != string(errors.ErrCodeCountsNotFound) {
		return nil, err
	}

	s.log.Info("Counts endpoint missing, counting client-side", map[string]interface{}{
		"entityType": entityType,
	})
	return s.countBySweep(ctx, entityType)
}

func (s *Service) countBySweep(ctx context.Context, entityType string) (map[string]int, error) {
	counts := map[string]int{"total": 0, "active": 0, "inactive": 0}

	page := 1
	for {
		result, err := s.api.List(ctx, entityType, platform.ListParams{Page: page, Limit: countFallbackPageSize})
		if err != nil {
			return nil, err
		}

		for _, item := range result.Items {
			counts["total"]++
			if active, _ := item["isActive"].(bool); active {
				counts["active"]++
			} else {
				counts["inactive"]++
			}
		}

		if !result.Pagination.HasNextPage {
			return counts, nil
		}
		page++
	}
}

// Delete runs one stage of the two-stage delete. While a deletion for a
// given entity id is outstanding, repeated calls are rejected rather than
// queued, so a confirm dialog cannot double-fire.
func (s *Service) Delete(ctx context.Context, entityType, id string) (*platform.DeleteResult, error) {
	key := entityType + "/" + id

	s.mu.Lock()
	if _, outstanding := s.deleting[key]; outstanding {
		s.mu.Unlock()
		return nil, errors.NewDeleteInProgressError(entityType, id)
	}
	s.deleting[key] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.deleting, key)
		s.mu.Unlock()
	}()

	result, err := s.api.Delete(ctx, entityType, id)
	if err != nil {
		s.log.Warn("Delete failed", map[string]interface{}{
			"entityType": entityType,
			"entityId":   id,
			"error":      err.Error(),
		})
		return nil, err
	}

	stage := "deactivate"
	if result.Permanent {
		stage = "permanent"
	}
	metrics.DeletionsTotal.WithLabelValues(entityType, stage).Inc()
	s.log.Info(fmt.Sprintf("Delete stage %q completed", stage), map[string]interface{}{
		"entityType": entityType,
		"entityId":   id,
	})
	return result, nil
}

// DeleteInProgress reports whether a deletion is outstanding for the id.
func (s *Service) DeleteInProgress(entityType, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, outstanding := s.deleting[entityType+"/"+id]
	return outstanding
}
