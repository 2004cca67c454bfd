package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"video-service/internal/auth"
)

// Noop is the resolver used when no membership provider is configured:
// every user resolves to "no group".
type Noop struct{}

func (Noop) GroupForUser(ctx context.Context, userID string) (string, error) {
	return "", nil
}

// ClaimResolver takes the membership group from the verified token's
// membership_level claim, avoiding a network hop when the auth service
// already embeds it.
type ClaimResolver struct{}

func (ClaimResolver) GroupForUser(ctx context.Context, userID string) (string, error) {
	if id, ok := auth.FromContext(ctx); ok && id.UserID == userID {
		return id.MembershipLevel, nil
	}
	return "", nil
}

// HTTPResolver asks an external membership service for the user's current
// group. Transient failures are retried with exponential backoff; callers
// treat any residual error as "no group".
type HTTPResolver struct {
	base   string
	http   *http.Client
	maxTry time.Duration
}

func NewHTTPResolver(baseURL string, timeout, retryMaxElapsed time.Duration) *HTTPResolver {
	tr := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		MaxIdleConns:    16,
		IdleConnTimeout: 60 * time.Second,
	}
	return &HTTPResolver{
		base:   baseURL,
		http:   &http.Client{Transport: tr, Timeout: timeout},
		maxTry: retryMaxElapsed,
	}
}

type membershipResponse struct {
	GroupID string `json:"group_id"`
	LevelID string `json:"level_id"`
}

func (r *HTTPResolver) GroupForUser(ctx context.Context, userID string) (string, error) {
	url := fmt.Sprintf("%s/users/%s/membership", r.base, userID)

	var group string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := r.http.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			// user has no membership
			group = ""
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("membership service: %s", resp.Status)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("membership service: %s", resp.Status))
		}

		var body membershipResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return backoff.Permanent(err)
		}
		group = body.GroupID
		if group == "" {
			group = body.LevelID
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = r.maxTry
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}
	return group, nil
}
