package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// GenerateDatabaseCredential mints a short-lived Postgres access token
// for a Lakebase database instance. When no instance name is given the
// workspace access token itself is used as the database password, which
// is what the platform accepts for default instances.
//
// The returned token expires server-side (roughly an hour); callers
// must re-mint on a schedule.
func (c *Client) GenerateDatabaseCredential(ctx context.Context, instanceName string) (string, error) {
	if instanceName == "" {
		return c.accessToken(ctx, "")
	}

	token, err := c.accessToken(ctx, "")
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{
		"request_id":     uuid.NewString(),
		"instance_names": []string{instanceName},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/2.0/database/credentials", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: generate database credential: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: generate database credential: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode database credential: %v", ErrUnavailable, err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("%w: database credential response carried no token", ErrUnavailable)
	}
	return body.Token, nil
}
