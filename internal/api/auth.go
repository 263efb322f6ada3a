package api

import (
	"context"

	"fitcoach-client/internal/domain"
)

// AuthService wraps the unauthenticated auth endpoints. None of these
// calls carries a bearer header; a successful login or Apple callback
// hands its token to the session layer, it never stores anything
// itself.
type AuthService struct {
	client *Client
}

func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the issued credential plus the identity it belongs to.
type LoginResult struct {
	Token string            `json:"token"`
	User  domain.UserRecord `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := s.client.Post(ctx, "auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, &result, WithoutAuth())
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// Register creates an account. The server issues no token here; the
// caller logs in afterwards.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.UserRecord, error) {
	var user domain.UserRecord
	err := s.client.Post(ctx, "auth/register", registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	}, &user, WithoutAuth())
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.client.Post(ctx, "auth/forgot-password", forgotPasswordRequest{
		Email: email,
	}, nil, WithoutAuth())
}

type applePrecheckRequest struct {
	IdentityToken string `json:"identityToken"`
}

type applePrecheckResponse struct {
	UserExists bool `json:"user_exists"`
}

// ApplePrecheck reports whether the Apple identity already has an
// account, so the caller knows whether to ask for a role first.
func (s *AuthService) ApplePrecheck(ctx context.Context, identityToken string) (bool, error) {
	var resp applePrecheckResponse
	err := s.client.Post(ctx, "auth/apple/precheck", applePrecheckRequest{
		IdentityToken: identityToken,
	}, &resp, WithoutAuth())
	if err != nil {
		return false, err
	}
	return resp.UserExists, nil
}

type appleCallbackRequest struct {
	IdentityToken string      `json:"identityToken"`
	FirstName     string      `json:"firstName,omitempty"`
	LastName      string      `json:"lastName,omitempty"`
	Role          domain.Role `json:"role"`
}

// AppleCallbackResult carries the issued session plus whether the
// account was created by this call.
type AppleCallbackResult struct {
	Token     string            `json:"token"`
	User      domain.UserRecord `json:"user"`
	IsNewUser bool              `json:"isNewUser"`
}

func (s *AuthService) AppleCallback(ctx context.Context, identityToken, firstName, lastName string, role domain.Role) (*AppleCallbackResult, error) {
	var result AppleCallbackResult
	err := s.client.Post(ctx, "auth/apple/callback", appleCallbackRequest{
		IdentityToken: identityToken,
		FirstName:     firstName,
		LastName:      lastName,
		Role:          role,
	}, &result, WithoutAuth())
	if err != nil {
		return nil, err
	}
	return &result, nil
}
