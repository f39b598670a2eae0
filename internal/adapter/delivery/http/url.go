package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	baseURL  string
	homePath string
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate, baseURL, homePath string) *urlHandler {
	return &urlHandler{
		useCase:  useCase,
		validate: validate,
		baseURL:  baseURL,
		homePath: homePath,
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if !decodeRequest(w, r, h.validate, &req) {
		return
	}

	url, err := h.useCase.ShortenURL(r.Context(), req.URL, req.CustomPath)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toShortenResponse(h.baseURL, url))
}

// redirect sends the client to the original URL. Any failure sends it to
// the home page instead of an error page; unexpected errors are logged.
func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	url, err := h.useCase.ResolveIdentifier(r.Context(), identifier)
	if err != nil {
		if !errors.Is(err, entity.ErrURLNotFound) {
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		}

		http.Redirect(w, r, h.homePath, http.StatusFound)
		return
	}

	http.Redirect(w, r, url.OriginalURL, http.StatusFound)
}

func (h *urlHandler) listURLs(w http.ResponseWriter, r *http.Request) {
	urls, err := h.useCase.ListURLs(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLListResponse(urls))
}

func (h *urlHandler) getURLStats(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	url, err := h.useCase.GetURLStats(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLResponse(url))
}

func (h *urlHandler) deleteURL(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.useCase.DeleteURL(r.Context(), id); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *urlHandler) initDB(w http.ResponseWriter, r *http.Request) {
	applied, err := h.useCase.InitSchema(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	msg := "database is up to date"
	if applied {
		msg = "database initialized"
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, initDBResponse{
		Success: true,
		Message: msg,
	})
}

func urlID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id <= 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidIDResponse)
		return 0, false
	}
	return id, true
}
