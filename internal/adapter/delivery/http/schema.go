package http

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type shortenRequest struct {
	URL        string `json:"url" validate:"required"`
	CustomPath string `json:"customPath" validate:"omitempty,max=255"`
}

type shortenResponse struct {
	ShortURL   string `json:"shortUrl"`
	CustomPath string `json:"customPath,omitempty"`
}

// toShortenResponse builds the public short link for url under baseURL.
func toShortenResponse(baseURL string, url *entity.URL) shortenResponse {
	resp := shortenResponse{
		ShortURL: baseURL + "/" + url.ShortIdentifier(),
	}
	if url.CustomAlias != nil {
		resp.CustomPath = *url.CustomAlias
	}
	return resp
}

type verifyPasskeyRequest struct {
	Passkey string `json:"passkey" validate:"required"`
}

type verifyPasskeyResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type initDBResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// urlResponse mirrors the stored row.
type urlResponse struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	CustomPath  *string   `json:"custom_path"`
	CreatedAt   time.Time `json:"created_at"`
	Visits      int64     `json:"visits"`
}

func toURLResponse(url *entity.URL) urlResponse {
	return urlResponse{
		ID:          url.ID,
		OriginalURL: url.OriginalURL,
		CustomPath:  url.CustomAlias,
		CreatedAt:   url.CreatedAt,
		Visits:      url.Visits,
	}
}

type urlListResponse struct {
	URLs []urlResponse `json:"urls"`
}

func toURLListResponse(urls []entity.URL) urlListResponse {
	resp := urlListResponse{
		URLs: make([]urlResponse, 0, len(urls)),
	}
	for i := range urls {
		resp.URLs = append(resp.URLs, toURLResponse(&urls[i]))
	}
	return resp
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string            `json:"error"`
	Details []validationError `json:"details,omitempty"`
}

var (
	emptyRequestBodyResponse = errorResponse{
		Error: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Error: "invalid request body",
	}

	invalidIDResponse = errorResponse{
		Error: "invalid url id",
	}

	urlNotFoundResponse = errorResponse{
		Error: "url not found",
	}

	aliasExistsResponse = errorResponse{
		Error: "custom path is already in use",
	}

	unauthorizedResponse = errorResponse{
		Error: "unauthorized",
	}

	invalidPasskeyResponse = errorResponse{
		Error: "invalid passkey",
	}

	serverErrorResponse = errorResponse{
		Error: "server error occurred",
	}
)

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "max":
		return "value is too long"
	default:
		return "invalid value"
	}
}

func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

// validationErrorResponse handles both request struct validation failures and
// domain validation errors returned by the use cases.
func validationErrorResponse(err error) errorResponse {
	var vErr *entity.ValidationError
	if errors.As(err, &vErr) {
		return errorResponse{
			Error: vErr.Reason,
			Details: []validationError{
				{Field: vErr.Field, Message: vErr.Reason},
			},
		}
	}

	return errorResponse{
		Error:   "validation error",
		Details: getValidationErrors(err),
	}
}
