package identity

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/arieljmnz/quiniela-backend/internal/domain/user"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
	"github.com/arieljmnz/quiniela-backend/internal/usecase"
)

// UserDirectory resolves the verified account to a local user so the
// principal carries the stored role.
type UserDirectory interface {
	GetByID(ctx context.Context, userID string) (user.User, bool, error)
	GetByEmail(ctx context.Context, email string) (user.User, bool, error)
}

// Client verifies bearer tokens against the identity service's introspection
// endpoint.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	directory     UserDirectory
	logger        *logging.Logger
}

func NewClient(httpClient *http.Client, introspectURL string, directory UserDirectory, logger *logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		httpClient:    httpClient,
		introspectURL: strings.TrimSpace(introspectURL),
		directory:     directory,
		logger:        logger,
	}
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("request introspection: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("read introspect response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "identity introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("identity introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}
	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, fmt.Errorf("invalid introspect response: user_id is empty")
	}

	return c.resolvePrincipal(ctx, decoded.UserID, decoded.Email)
}

// resolvePrincipal enriches the verified account with the stored role. An
// account without a local user record still gets a plain user principal.
func (c *Client) resolvePrincipal(ctx context.Context, userID, email string) (user.Principal, error) {
	principal := user.Principal{UserID: userID, Email: email, Role: user.RoleUser}
	if c.directory == nil {
		return principal, nil
	}

	u, found, err := c.directory.GetByID(ctx, userID)
	if err != nil {
		return user.Principal{}, fmt.Errorf("resolve user %s: %w", userID, err)
	}
	if !found && email != "" {
		u, found, err = c.directory.GetByEmail(ctx, email)
		if err != nil {
			return user.Principal{}, fmt.Errorf("resolve user by email: %w", err)
		}
	}
	if found {
		principal.UserID = u.ID
		principal.Role = u.Role
		if principal.Email == "" {
			principal.Email = u.Email
		}
	}
	return principal, nil
}
