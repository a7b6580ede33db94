package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"admin-console-go/internal/apiclient"
	"admin-console-go/internal/config"
	"admin-console-go/internal/credential"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrPasswordChangeRequired is matched by *PasswordChangeRequiredError.
	ErrPasswordChangeRequired = errors.New("password change required before sign-in")
	ErrMissingAccessToken     = errors.New("sign-in response has no access token")
	ErrResetTarget            = errors.New("reset requires a token or an email")
)

// PasswordChangeRequiredError is returned by SignIn when the account must
// set a new password first. ResetToken feeds ResetPassword.
type PasswordChangeRequiredError struct {
	Email      string
	ResetToken string
}

func (e *PasswordChangeRequiredError) Error() string { return ErrPasswordChangeRequired.Error() }

func (e *PasswordChangeRequiredError) Is(target error) bool { return target == ErrPasswordChangeRequired }

// AuthService covers sign-in, sign-out and the password flows.
type AuthService struct {
	api       API
	session   apiclient.Session
	endpoints config.Endpoints
}

// SignIn authenticates and stores the returned session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*credential.AuthUser, error) {
	env, err := s.api.Post(ctx, s.endpoints.SignIn,
		map[string]string{"email": email, "password": password},
		apiclient.WithoutAuth())
	if err != nil {
		return nil, err
	}

	if env.StatusCode() == http.StatusCreated && env.Get("canChangePassword").Bool() {
		return nil, &PasswordChangeRequiredError{Email: email, ResetToken: env.Get("resetToken").String()}
	}

	accessToken := apiclient.AccessTokenExtractor.From(env.Raw())
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	refreshToken := apiclient.RefreshTokenExtractor.From(env.Raw())

	var user *credential.AuthUser
	for _, path := range []string{"user", "data.user"} {
		if r := env.Get(path); r.IsObject() {
			user = &credential.AuthUser{}
			if err := env.DecodePath(path, user); err != nil {
				return nil, fmt.Errorf("decode signed-in user: %w", err)
			}
			break
		}
	}

	if err := s.session.SetCredentials(ctx, credential.Update{
		User:         user,
		AccessToken:  &accessToken,
		RefreshToken: &refreshToken,
	}); err != nil {
		log.WithError(err).Warn("session established but not persisted")
	}
	return user, nil
}

// Logout tells the server best-effort, then always clears the local session.
func (s *AuthService) Logout(ctx context.Context) error {
	if _, err := s.api.Post(ctx, s.endpoints.Logout, nil, apiclient.WithoutAuthRetry()); err != nil {
		log.WithError(err).Debug("server-side logout failed")
	}
	return s.session.Clear(ctx)
}

// ForgotPassword asks the server to email a one-time code.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return s.postMessage(ctx, s.endpoints.ForgotPassword, map[string]string{"email": email})
}

// ResendOTP asks for another one-time code.
func (s *AuthService) ResendOTP(ctx context.Context, email string) (string, error) {
	return s.postMessage(ctx, s.endpoints.ResendOTP, map[string]string{"email": email})
}

// VerifyOTP checks the emailed code and returns the reset token, if the
// server issues one.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	env, err := s.api.Post(ctx, s.endpoints.VerifyOTP,
		map[string]string{"email": email, "otp": otp},
		apiclient.WithoutAuth())
	if err != nil {
		return "", err
	}
	return apiclient.TokenExtractor{"resetToken", "data.resetToken", "token", "data.token"}.From(env.Raw()), nil
}

// ResetPasswordRequest identifies the account by reset token or by email.
type ResetPasswordRequest struct {
	Token       string
	Email       string
	NewPassword string
}

// ResetPassword sets a new password without an active session.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	var body map[string]string
	switch {
	case strings.TrimSpace(req.Token) != "":
		body = map[string]string{"token": req.Token, "newPassword": req.NewPassword}
	case strings.TrimSpace(req.Email) != "":
		body = map[string]string{"email": req.Email, "newPassword": req.NewPassword}
	default:
		return ErrResetTarget
	}
	_, err := s.api.Post(ctx, s.endpoints.ResetPassword, body, apiclient.WithoutAuth())
	return err
}

// UpdatePassword changes the signed-in admin's password.
func (s *AuthService) UpdatePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := s.api.Post(ctx, s.endpoints.UpdatePassword,
		map[string]string{"oldPassword": oldPassword, "newPassword": newPassword})
	return err
}

// Upload sends a file as multipart form data and returns the URL the server
// reports for it.
func (s *AuthService) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	form := apiclient.NewFormData().AddFile("file", filename, contentType, data)
	env, err := s.api.Post(ctx, s.endpoints.Upload, form)
	if err != nil {
		return "", err
	}
	return apiclient.TokenExtractor{"url", "data.url", "data.location", "location"}.From(env.Raw()), nil
}

func (s *AuthService) postMessage(ctx context.Context, endpoint string, body any) (string, error) {
	env, err := s.api.Post(ctx, endpoint, body, apiclient.WithoutAuth())
	if err != nil {
		return "", err
	}
	return env.Message(), nil
}
