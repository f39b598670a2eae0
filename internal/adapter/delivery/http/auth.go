package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const bearerPrefix = "Bearer "

type authHandler struct {
	useCase  authUseCase
	validate *validator.Validate
}

func newAuthHandler(useCase authUseCase, validate *validator.Validate) *authHandler {
	return &authHandler{
		useCase:  useCase,
		validate: validate,
	}
}

func (h *authHandler) verifyPasskey(w http.ResponseWriter, r *http.Request) {
	var req verifyPasskeyRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	token, err := h.useCase.VerifyPasskey(r.Context(), req.Passkey)
	if err != nil {
		if errors.Is(err, entity.ErrUnauthorized) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, invalidPasskeyResponse)
			return
		}

		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, verifyPasskeyResponse{
		Success: true,
		Token:   token,
	})
}

// requireToken rejects requests without a valid "Authorization: Bearer" token.
func (h *authHandler) requireToken(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, bearerPrefix)
		token = strings.TrimSpace(token)

		if !ok || token == "" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, unauthorizedResponse)
			return
		}

		if err := h.useCase.Authorize(r.Context(), token); err != nil {
			if !errors.Is(err, entity.ErrUnauthorized) {
				renderError(w, r, err)
				return
			}

			httplog.LogEntrySetField(r.Context(), "auth_err", slog.StringValue(err.Error()))

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, unauthorizedResponse)
			return
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
