// Package messaging dispatches templated WhatsApp messages through the
// business messaging API. Sends are single-shot; a failed dispatch is
// surfaced to the caller, never retried here.
package messaging

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
)

type WhatsAppSender struct {
	endpoint string
	token    string
	language string
	http     *http.Client
}

func NewWhatsAppSender(endpoint, token, language string, timeout time.Duration) *WhatsAppSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if language == "" {
		language = "en"
	}
	return &WhatsAppSender{
		endpoint: strings.TrimSpace(endpoint),
		token:    token,
		language: language,
		http:     &http.Client{Timeout: timeout},
	}
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (s *WhatsAppSender) SendTemplate(ctx context.Context, to, template string, params []string) error {
	parameters := make([]templateParameter, 0, len(params))
	for _, p := range params {
		parameters = append(parameters, templateParameter{Type: "text", Text: p})
	}
	payload := map[string]any{
		"to": to,
		"template": map[string]any{
			"name":       template,
			"language":   map[string]string{"code": s.language},
			"components": []templateComponent{{Type: "body", Parameters: parameters}},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.http.Do(req)
	if err != nil {
		return &domain.UpstreamError{Op: "send template message", Detail: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.UpstreamError{
			Op:     "send template message",
			Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	return nil
}
