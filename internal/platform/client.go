// internal/platform/client.go
// Package platform implements the REST client for the listings platform
// API: one resource collection per entity type, a shared success/error
// envelope, and the two-stage delete contract.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"listings-console/internal/common/errors"
	commonhttp "listings-console/internal/common/http"
	"listings-console/internal/common/logger"
	"listings-console/internal/common/metrics"
)

// pluralPaths maps entity types to their REST collection segments.
var pluralPaths = map[string]string{
	"plot":     "plots",
	"mall":     "malls",
	"blog":     "blogs",
	"property": "properties",
	"building": "buildings",
}

func pluralPath(entityType string) string {
	if p, ok := pluralPaths[entityType]; ok {
		return p
	}
	return entityType + "s"
}

// Pagination is the list envelope's page descriptor.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// ListParams are the query parameters accepted by every list endpoint.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// ListResult is one page of entities plus its pagination descriptor.
type ListResult struct {
	Items      []map[string]interface{}
	Pagination Pagination
}

// DeleteResult reports which stage a delete call performed. Permanent is
// false when the call deactivated the entity and true when it removed it.
type DeleteResult struct {
	Entity    map[string]interface{}
	Permanent bool
}

type Client struct {
	baseURL    string
	httpClient *commonhttp.Client
	log        logger.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: commonhttp.NewClient(timeout, apiKey),
		log:        log,
	}
}

// Create posts a new entity and returns the created record.
func (c *Client) Create(ctx context.Context, entityType string, payload map[string]interface{}) (map[string]interface{}, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/"+pluralPath(entityType), payload)
	if err != nil {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "create", "network").Inc()
		return nil, err
	}
	entity, err := c.decodeEntity(entityType, status, body)
	metrics.PlatformRequestsTotal.WithLabelValues(entityType, "create", outcomeLabel(err)).Inc()
	return entity, err
}

// Update replaces an existing entity and returns the updated record.
func (c *Client) Update(ctx context.Context, entityType, id string, payload map[string]interface{}) (map[string]interface{}, error) {
	status, body, err := c.do(ctx, http.MethodPut, "/"+pluralPath(entityType)+"/"+id, payload)
	if err != nil {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "update", "network").Inc()
		return nil, err
	}
	if status == http.StatusNotFound {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "update", "not_found").Inc()
		return nil, errors.NewEntityNotFoundError(entityType, id)
	}
	entity, err := c.decodeEntity(entityType, status, body)
	metrics.PlatformRequestsTotal.WithLabelValues(entityType, "update", outcomeLabel(err)).Inc()
	return entity, err
}

// Get fetches one entity by id.
func (c *Client) Get(ctx context.Context, entityType, id string) (map[string]interface{}, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/"+pluralPath(entityType)+"/"+id, nil)
	if err != nil {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "get", "network").Inc()
		return nil, err
	}
	if status == http.StatusNotFound {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "get", "not_found").Inc()
		return nil, errors.NewEntityNotFoundError(entityType, id)
	}
	entity, err := c.decodeEntity(entityType, status, body)
	metrics.PlatformRequestsTotal.WithLabelValues(entityType, "get", outcomeLabel(err)).Inc()
	return entity, err
}

// Delete runs one stage of the two-stage delete contract: an active entity
// is deactivated and returned, an already-inactive entity is removed for
// good.
func (c *Client) Delete(ctx context.Context, entityType, id string) (*DeleteResult, error) {
	status, body, err := c.do(ctx, http.MethodDelete, "/"+pluralPath(entityType)+"/"+id, nil)
	if err != nil {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "delete", "network").Inc()
		return nil, err
	}
	if status == http.StatusNotFound {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "delete", "not_found").Inc()
		return nil, errors.NewEntityNotFoundError(entityType, id)
	}

	raw, err := decodeEnvelope(status, body)
	if err != nil {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "delete", outcomeLabel(err)).Inc()
		return nil, err
	}

	result := &DeleteResult{Permanent: true}
	if entity, ok := raw[entityType].(map[string]interface{}); ok {
		result.Entity = entity
		result.Permanent = false
	}
	metrics.PlatformRequestsTotal.WithLabelValues(entityType, "delete", "success").Inc()
	return result, nil
}

// List fetches one page of entities.
func (c *Client) List(ctx context.Context, entityType string, params ListParams) (*ListResult, error) {
	path := "/" + pluralPath(entityType)
	if query := params.encode(); query != "" {
		path += "?" + query
	}

	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "list", "network").Inc()
		return nil, err
	}

	if _, err := decodeEnvelope(status, body); err != nil {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "list", outcomeLabel(err)).Inc()
		return nil, err
	}

	var page struct {
		Items      []map[string]interface{} `json:"items"`
		Pagination Pagination               `json:"pagination"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "list", "unexpected").Inc()
		return nil, errors.NewUnexpectedReplyError(err)
	}

	metrics.PlatformRequestsTotal.WithLabelValues(entityType, "list", "success").Inc()
	return &ListResult{Items: page.Items, Pagination: page.Pagination}, nil
}

// Counts fetches the tab badge counters. The endpoint is optional on the
// platform side; a 404 is reported as a typed error so callers can fall
// back to counting client-side.
func (c *Client) Counts(ctx context.Context, entityType string) (map[string]int, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/"+pluralPath(entityType)+"/counts", nil)
	if err != nil {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "counts", "network").Inc()
		return nil, err
	}
	if status == http.StatusNotFound {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "counts", "not_found").Inc()
		return nil, errors.NewCountsNotFoundError(entityType)
	}

	if _, err := decodeEnvelope(status, body); err != nil {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "counts", outcomeLabel(err)).Inc()
		return nil, err
	}

	var reply struct {
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		metrics.PlatformRequestsTotal.WithLabelValues(entityType, "counts", "unexpected").Inc()
		return nil, errors.NewUnexpectedReplyError(err)
	}

	metrics.PlatformRequestsTotal.WithLabelValues(entityType, "counts", "success").Inc()
	return reply.Counts, nil
}

func (p ListParams) encode() string {
	values := url.Values{}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		values.Set("search", p.Search)
	}
	for key, value := range p.Filters {
		values.Set(key, value)
	}
	return values.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, payload map[string]interface{}) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.DoJSON(ctx, req)
	if err != nil {
		c.log.Warn("Platform request failed", map[string]interface{}{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return 0, nil, errors.NewNetworkFailureError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.NewNetworkFailureError(err)
	}
	return resp.StatusCode, body, nil
}

// decodeEnvelope parses the shared response envelope and converts a
// rejection into its typed error.
func decodeEnvelope(status int, body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.NewUnexpectedReplyError(fmt.Errorf("status %d: %w", status, err))
	}

	success, _ := raw["success"].(bool)
	if !success || status >= http.StatusBadRequest {
		message, _ := raw["message"].(string)
		if message == "" {
			message = fmt.Sprintf("request rejected with status %d", status)
		}
		return nil, errors.NewServerRejectedError(message, fieldErrorsFromWire(raw["errors"]))
	}
	return raw, nil
}

func (c *Client) decodeEntity(entityType string, status int, body []byte) (map[string]interface{}, error) {
	raw, err := decodeEnvelope(status, body)
	if err != nil {
		return nil, err
	}
	entity, ok := raw[entityType].(map[string]interface{})
	if !ok {
		return nil, errors.NewUnexpectedReplyError(fmt.Errorf("reply missing %q object", entityType))
	}
	return entity, nil
}

// fieldErrorsFromWire flattens the wire shape {fieldPath: [messages]} into
// one message per field.
func fieldErrorsFromWire(value interface{}) errors.FieldErrors {
	out := errors.FieldErrors{}
	wire, ok := value.(map[string]interface{})
	if !ok {
		return out
	}
	for path, messages := range wire {
		switch typed := messages.(type) {
		case []interface{}:
			parts := make([]string, 0, len(typed))
			for _, m := range typed {
				if s, ok := m.(string); ok && s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				out.Set(path, strings.Join(parts, "; "))
			}
		case string:
			if typed != "" {
				out.Set(path, typed)
			}
		}
	}
	return out
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	switch errors.CodeOf(err) {
	case string(errors.ErrCodeNetworkFailure):
		return "network"
	case string(errors.ErrCodeUnexpectedReply):
		return "unexpected"
	default:
		return "rejected"
	}
}
