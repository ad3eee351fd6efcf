package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/providers"
	"github.com/crossroads-hq/crossroads-backend/pkg/config"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// AdminAdapter implements IdentityProvider against the hosted identity
// provider's admin REST API. All calls are scoped to the configured user pool.
type AdminAdapter struct {
	baseURL    string
	apiKey     string
	userPoolID string
	client     *http.Client
}

// NewAdminAdapter creates a new identity admin adapter
func NewAdminAdapter(cfg *config.IdentityConfig) providers.IdentityProvider {
	return &AdminAdapter{
		baseURL:    cfg.AdminAPIURL,
		apiKey:     cfg.APIKey,
		userPoolID: cfg.UserPoolID,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type groupMembershipRequest struct {
	UserPoolID string `json:"user_pool_id"`
	Username   string `json:"username"`
	GroupName  string `json:"group_name"`
}

// AddUserToGroup adds a user to a group
func (a *AdminAdapter) AddUserToGroup(ctx context.Context, username, groupName string) error {
	return a.postMembership(ctx, "/admin/groups/add-user", username, groupName)
}

// RemoveUserFromGroup removes a user from a group
func (a *AdminAdapter) RemoveUserFromGroup(ctx context.Context, username, groupName string) error {
	return a.postMembership(ctx, "/admin/groups/remove-user", username, groupName)
}

// ListGroupsForUser returns the groups a user belongs to
func (a *AdminAdapter) ListGroupsForUser(ctx context.Context, username string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/admin/users/%s/groups?user_pool_id=%s",
		a.baseURL, url.PathEscape(username), url.QueryEscape(a.userPoolID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	a.addHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("identity provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError(fmt.Sprintf("identity admin api error: status %d", resp.StatusCode), nil)
	}

	var result struct {
		Groups []string `json:"groups"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.NewExternalError("failed to decode identity response", err)
	}

	return result.Groups, nil
}

func (a *AdminAdapter) postMembership(ctx context.Context, path, username, groupName string) error {
	payload, err := json.Marshal(groupMembershipRequest{
		UserPoolID: a.userPoolID,
		Username:   username,
		GroupName:  groupName,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	a.addHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return apperrors.NewExternalError("identity provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apperrors.NewExternalError(fmt.Sprintf("identity admin api error: status %d", resp.StatusCode), nil)
	}

	return nil
}

func (a *AdminAdapter) addHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
}
