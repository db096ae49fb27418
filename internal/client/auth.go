package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthService drives the credential endpoints and keeps the slot in sync.
type AuthService struct {
	client *Client
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*User, error) {
	var user User
	err := s.client.do(ctx, http.MethodPost, "/api/register", credentialsRequest{username, password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token and stores it in the slot.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	err := s.client.do(ctx, http.MethodPost, "/api/login", credentialsRequest{username, password}, &result)
	if err != nil {
		return nil, err
	}
	if err := s.client.creds.SetToken(ctx, result.Token); err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}
	return &result, nil
}

// Logout revokes the stored token on the server and empties the slot.
// The slot is cleared even when the token was already rejected.
func (s *AuthService) Logout(ctx context.Context) error {
	token, err := s.client.creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to read credential: %w", err)
	}
	if token == "" {
		return nil
	}

	apiErr := s.client.do(ctx, http.MethodPost, "/api/logout", nil, nil)
	if err := s.client.creds.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	if apiErr != nil && !IsUnauthorized(apiErr) {
		return apiErr
	}
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := s.client.do(ctx, http.MethodGet, "/api/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
