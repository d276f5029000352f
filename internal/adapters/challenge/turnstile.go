// Package challenge validates bot-challenge tokens with the
// third-party provider. Verification failure is a soft signal: callers
// degrade to an unsecured continuation rather than blocking.
package challenge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Verifier struct {
	endpoint string
	secret   string
	http     *http.Client
}

func NewVerifier(endpoint, secret string, timeout time.Duration) *Verifier {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Verifier{endpoint: endpoint, secret: secret, http: &http.Client{Timeout: timeout}}
}

func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	form.Set("remoteip", remoteIP)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var out struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	return out.Success, nil
}
