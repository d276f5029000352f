// Package crm is the Basic-auth JSON client against the external
// system-of-record. Calls are plain request/response with no retry;
// every failure is final per attempt and carries the upstream body as
// detail.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

func NewClient(baseURL, username, password string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		username: username,
		password: password,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) LeadEndpoint(id string) string     { return c.baseURL + "/admin/crm/leads/" + id }
func (c *Client) CustomerEndpoint(id string) string { return c.baseURL + "/admin/customers/customer/" + id }

func (c *Client) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.UpstreamError{Op: method + " " + url, Detail: err.Error()}
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, url)
	}
	if resp.StatusCode >= 300 {
		return &domain.UpstreamError{
			Op:     method + " " + url,
			Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &domain.UpstreamError{Op: method + " " + url, Detail: "malformed response body"}
		}
	}
	return nil
}

// DetectKind probes a customer-shaped fetch first and falls back to a
// lead lookup; unknown is a valid answer and callers then attempt both
// update endpoints.
func (c *Client) DetectKind(ctx context.Context, id string) string {
	var raw map[string]any
	if err := c.do(ctx, http.MethodGet, c.CustomerEndpoint(id), nil, &raw); err == nil && len(raw) > 0 {
		return ports.EntityCustomer
	}
	if err := c.do(ctx, http.MethodGet, c.LeadEndpoint(id), nil, &raw); err == nil && len(raw) > 0 {
		return ports.EntityLead
	}
	return ports.EntityUnknown
}

func (c *Client) GetProfile(ctx context.Context, id string) (ports.Profile, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodGet, c.CustomerEndpoint(id), nil, &raw); err == nil && len(raw) > 0 {
		return normalizeRecord(unwrapRecord(raw), ports.EntityCustomer), nil
	}
	raw = nil
	if err := c.do(ctx, http.MethodGet, c.LeadEndpoint(id), nil, &raw); err != nil {
		return ports.Profile{}, err
	}
	if len(raw) == 0 {
		return ports.Profile{}, domain.ErrNotFound
	}
	return normalizeRecord(unwrapRecord(raw), ports.EntityLead), nil
}

// ResolvePhone hunts the record itself and then its contacts for any
// field that normalizes to a valid mobile number.
func (c *Client) ResolvePhone(ctx context.Context, id string) (string, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodGet, c.CustomerEndpoint(id), nil, &raw); err == nil {
		if phone := phoneFromRecord(unwrapRecord(raw)); phone != "" {
			return phone, nil
		}
	}
	var contacts []map[string]any
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/admin/customers/"+id+"/contacts", nil, &contacts); err == nil {
		for _, contact := range contacts {
			if phone := phoneFromRecord(contact); phone != "" {
				return phone, nil
			}
		}
	}
	raw = nil
	if err := c.do(ctx, http.MethodGet, c.LeadEndpoint(id), nil, &raw); err == nil {
		if phone := phoneFromRecord(unwrapRecord(raw)); phone != "" {
			return phone, nil
		}
	}
	return "", nil
}

func (c *Client) ListLeads(ctx context.Context) ([]ports.Profile, error) {
	var rows []map[string]any
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/admin/crm/leads", nil, &rows); err != nil {
		return nil, err
	}
	items := make([]ports.Profile, 0, len(rows))
	for _, row := range rows {
		items = append(items, normalizeRecord(row, ports.EntityLead))
	}
	return items, nil
}

func (c *Client) CreateLead(ctx context.Context, payload map[string]any) (string, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/admin/crm/leads", payload, &out); err != nil {
		return "", err
	}
	return stringField(unwrapRecord(out), idKeys), nil
}

func (c *Client) UpdateLead(ctx context.Context, id string, payload map[string]any) error {
	return c.do(ctx, http.MethodPut, c.LeadEndpoint(id), payload, nil)
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, payload map[string]any) error {
	return c.do(ctx, http.MethodPut, c.CustomerEndpoint(id), payload, nil)
}

func (c *Client) UploadDocument(ctx context.Context, id, name, url string) error {
	return c.do(ctx, http.MethodPost, c.baseURL+"/admin/crm/documents", map[string]any{
		"entity_id": id,
		"name":      name,
		"url":       url,
	}, nil)
}

// Some deployments wrap single records as {"data": {...}} or
// {"customer": {...}}; unwrap one level before normalizing.
func unwrapRecord(raw map[string]any) map[string]any {
	for _, key := range []string{"data", "customer", "lead"} {
		if inner, ok := raw[key].(map[string]any); ok {
			return inner
		}
	}
	return raw
}
