package usecase

import (
	"context"
	"fmt"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type passkeyVerifier interface {
	Verify(supplied string) bool
}

type tokenManager interface {
	Issue() (string, error)
	Validate(token string) error
}

// AuthUseCase gates the administrative operations behind the shared passkey.
type AuthUseCase struct {
	verifier passkeyVerifier
	tokens   tokenManager
}

func NewAuthUseCase(verifier passkeyVerifier, tokens tokenManager) *AuthUseCase {
	return &AuthUseCase{
		verifier: verifier,
		tokens:   tokens,
	}
}

// VerifyPasskey checks passkey and returns a session token on success.
func (uc *AuthUseCase) VerifyPasskey(_ context.Context, passkey string) (string, error) {
	const op = "usecase.AuthUseCase.VerifyPasskey"

	if passkey == "" {
		return "", fmt.Errorf("%s: %w", op, entity.NewValidationError("passkey", "passkey is required"))
	}

	if !uc.verifier.Verify(passkey) {
		return "", fmt.Errorf("%s: %w", op, entity.ErrUnauthorized)
	}

	token, err := uc.tokens.Issue()
	if err != nil {
		return "", fmt.Errorf("%s: failed to issue token: %w", op, err)
	}

	return token, nil
}

// Authorize accepts a session token previously returned by VerifyPasskey.
func (uc *AuthUseCase) Authorize(_ context.Context, token string) error {
	const op = "usecase.AuthUseCase.Authorize"

	if token == "" {
		return fmt.Errorf("%s: %w", op, entity.ErrUnauthorized)
	}

	if err := uc.tokens.Validate(token); err != nil {
		return fmt.Errorf("%s: %w: %w", op, entity.ErrUnauthorized, err)
	}

	return nil
}
