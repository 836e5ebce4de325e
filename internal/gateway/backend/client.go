package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
)

const maxErrorBody = 4 << 10

// StatusError is a non-2xx backend answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend status %d", e.Code)
	}
	return fmt.Sprintf("backend status %d: %s", e.Code, e.Body)
}

// Client talks to the REST system of record.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient creates a Client for baseURL. timeout bounds each HTTP exchange.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

// FetchShipment returns the shipment with its current status.
func (c *Client) FetchShipment(ctx context.Context, id string) (domain.Shipment, error) {
	var dto shipmentDTO
	if err := c.do(ctx, http.MethodGet, c.path(nil, "shipments", id), nil, &dto); err != nil {
		return domain.Shipment{}, err
	}
	sh, err := dto.toDomain()
	if err != nil {
		return domain.Shipment{}, apperr.Transport(err, "decode shipment")
	}
	if sh.ID == "" {
		sh.ID = id
	}
	return sh, nil
}

// PersistStatusTransition writes a single status change.
func (c *Client) PersistStatusTransition(ctx context.Context, id string, status domain.ShipmentStatus) error {
	return c.do(ctx, http.MethodPost, c.path(nil, "shipments", id, "status"), statusRequest{Status: string(status)}, nil)
}

// PersistBulkStatusTransition writes one status for many shipments in a single call.
func (c *Client) PersistBulkStatusTransition(ctx context.Context, ids []string, status domain.ShipmentStatus) error {
	return c.do(ctx, http.MethodPost, c.path(nil, "shipments", "status", "bulk"),
		bulkStatusRequest{IDs: ids, Status: string(status)}, nil)
}

// PersistAssignment assigns an agent to a shipment.
func (c *Client) PersistAssignment(ctx context.Context, id, agentID string) error {
	return c.do(ctx, http.MethodPost, c.path(nil, "shipments", id, "assign"), assignRequest{AgentID: agentID}, nil)
}

// FetchDeactivationWindow returns the window of an account.
func (c *Client) FetchDeactivationWindow(ctx context.Context, kind domain.EntityKind, id string) (domain.DeactivationWindow, error) {
	var dto windowDTO
	if err := c.do(ctx, http.MethodGet, c.path(nil, "deactivations", string(kind), id), nil, &dto); err != nil {
		return domain.DeactivationWindow{}, err
	}
	return dto.toDomain(kind, id), nil
}

// PersistDeactivationWindow writes the window; Unset bounds are sent as nulls.
func (c *Client) PersistDeactivationWindow(ctx context.Context, w domain.DeactivationWindow) error {
	return c.do(ctx, http.MethodPut, c.path(nil, "deactivations", string(w.EntityKind), w.EntityID), windowToDTO(w), nil)
}

// FetchNotifications lists the viewer's notifications.
func (c *Client) FetchNotifications(ctx context.Context, viewer domain.Viewer) ([]domain.Notification, error) {
	var dtos []notificationDTO
	if err := c.do(ctx, http.MethodGet, c.path(viewerQuery(viewer), "notifications"), nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// PersistNotification stores a notification for the viewer.
func (c *Client) PersistNotification(ctx context.Context, viewer domain.Viewer, n domain.Notification) error {
	return c.do(ctx, http.MethodPost, c.path(viewerQuery(viewer), "notifications"), notificationToDTO(n), nil)
}

// PersistMarkAsRead marks one notification as read.
func (c *Client) PersistMarkAsRead(ctx context.Context, viewer domain.Viewer, id string) error {
	return c.do(ctx, http.MethodPost, c.path(viewerQuery(viewer), "notifications", id, "read"), nil, nil)
}

// PersistMarkAllAsRead marks every notification of the viewer as read.
func (c *Client) PersistMarkAllAsRead(ctx context.Context, viewer domain.Viewer) error {
	return c.do(ctx, http.MethodPost, c.path(viewerQuery(viewer), "notifications", "read-all"), nil, nil)
}

// PersistClearAll deletes the viewer's notifications.
func (c *Client) PersistClearAll(ctx context.Context, viewer domain.Viewer) error {
	return c.do(ctx, http.MethodDelete, c.path(viewerQuery(viewer), "notifications"), nil, nil)
}

// FetchNewOrdersCount returns the number of shipments in status new.
func (c *Client) FetchNewOrdersCount(ctx context.Context) (int, error) {
	var dto countDTO
	if err := c.do(ctx, http.MethodGet, c.path(nil, "orders", "new", "count"), nil, &dto); err != nil {
		return 0, err
	}
	return dto.Count, nil
}

// FetchTodayOrdersCount returns today's shipments visible to the viewer.
func (c *Client) FetchTodayOrdersCount(ctx context.Context, viewer domain.Viewer) (int, error) {
	var dto countDTO
	if err := c.do(ctx, http.MethodGet, c.path(viewerQuery(viewer), "orders", "today", "count"), nil, &dto); err != nil {
		return 0, err
	}
	return dto.Count, nil
}

func viewerQuery(v domain.Viewer) url.Values {
	return url.Values{"viewer_id": {v.ID}, "role": {string(v.Role)}}
}

func (c *Client) path(q url.Values, segments ...string) string {
	u := *c.base
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.Path = c.base.Path + "/" + strings.Join(segments, "/")
	u.RawPath = c.base.EscapedPath() + "/" + strings.Join(escaped, "/")
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do performs one exchange. 404 maps to NotFound, every other failure to Transport.
func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Transport(err, method+" "+req.URL.Path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		if resp.StatusCode == http.StatusNotFound {
			return apperr.NotFound(fmt.Sprintf("%s not found", req.URL.Path))
		}
		return apperr.Transport(se, method+" "+req.URL.Path)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Transport(err, "decode response")
	}
	return nil
}
