package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const (
	urlField        = "url"
	maxURLLength    = 2048
	defaultScheme   = "https://"
	urlValidateTags = "url"
)

type urlRepository interface {
	Save(ctx context.Context, originalURL string, alias *string) (*entity.URL, error)
	RetrieveAndIncrementByID(ctx context.Context, id int64) (*entity.URL, error)
	RetrieveAndIncrementByAlias(ctx context.Context, alias string) (*entity.URL, error)
	RetrieveByID(ctx context.Context, id int64) (*entity.URL, error)
	List(ctx context.Context) ([]entity.URL, error)
	Remove(ctx context.Context, id int64) error
}

type schemaMigrator interface {
	Migrate(ctx context.Context) (bool, error)
}

type URLUseCase struct {
	urlRepo     urlRepository
	migrator    schemaMigrator
	aliasPolicy AliasPolicy
	validate    *validator.Validate
}

func NewURLUseCase(urlRepo urlRepository, migrator schemaMigrator, aliasPolicy AliasPolicy) *URLUseCase {
	return &URLUseCase{
		urlRepo:     urlRepo,
		migrator:    migrator,
		aliasPolicy: aliasPolicy,
		validate:    validator.New(),
	}
}

// ShortenURL allocates a new mapping for originalURL. The URL is trimmed and
// given an https:// scheme when it has none; alias is optional and checked
// against the alias policy. Nothing is written when validation fails.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL, alias string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	normalized, err := uc.normalizeURL(originalURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var aliasArg *string
	if alias != "" {
		if err := uc.aliasPolicy.Validate(alias); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		aliasArg = &alias
	}

	url, err := uc.urlRepo.Save(ctx, normalized, aliasArg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	return url, nil
}

func (uc *URLUseCase) normalizeURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" {
		return "", entity.NewValidationError(urlField, "empty URL")
	}

	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = defaultScheme + u
	}

	if len(u) > maxURLLength {
		return "", entity.NewValidationError(urlField,
			fmt.Sprintf("URL must not exceed %d characters", maxURLLength))
	}

	if err := uc.validate.Var(u, urlValidateTags); err != nil {
		return "", entity.NewValidationError(urlField, "invalid URL")
	}

	return u, nil
}

// ResolveIdentifier counts a visit and returns the mapping for identifier.
// Digits-only identifiers are looked up by ID, everything else by alias.
// Identifiers that cannot match anything yield entity.ErrURLNotFound without
// touching the store.
func (uc *URLUseCase) ResolveIdentifier(ctx context.Context, identifier string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveIdentifier"

	if isNumeric(identifier) {
		url, err := uc.resolveByID(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return url, nil
	}

	if !uc.aliasPolicy.IsCandidate(identifier) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	url, err := uc.urlRepo.RetrieveAndIncrementByAlias(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve alias: %w", op, err)
	}

	return url, nil
}

func (uc *URLUseCase) resolveByID(ctx context.Context, identifier string) (*entity.URL, error) {
	// IDs are int4 in the store; anything outside 1..MaxInt32 cannot be an ID.
	id, err := strconv.ParseInt(identifier, 10, 32)
	if err != nil || id <= 0 {
		err = entity.ErrURLNotFound
	} else {
		var url *entity.URL
		url, err = uc.urlRepo.RetrieveAndIncrementByID(ctx, id)
		if err == nil {
			return url, nil
		}
	}

	// Numeric aliases are only reachable when the policy admits them.
	if uc.aliasPolicy.AllowNumeric && errors.Is(err, entity.ErrURLNotFound) {
		url, err := uc.urlRepo.RetrieveAndIncrementByAlias(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve numeric alias: %w", err)
		}
		return url, nil
	}

	return nil, fmt.Errorf("failed to resolve id: %w", err)
}

// ListURLs returns every stored mapping, newest first.
func (uc *URLUseCase) ListURLs(ctx context.Context) ([]entity.URL, error) {
	const op = "usecase.URLUseCase.ListURLs"

	urls, err := uc.urlRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	return urls, nil
}

// GetURLStats returns the mapping without counting a visit.
func (uc *URLUseCase) GetURLStats(ctx context.Context, id int64) (*entity.URL, error) {
	const op = "usecase.URLUseCase.GetURLStats"

	url, err := uc.urlRepo.RetrieveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return url, nil
}

// DeleteURL irreversibly removes the mapping with the given ID.
func (uc *URLUseCase) DeleteURL(ctx context.Context, id int64) error {
	const op = "usecase.URLUseCase.DeleteURL"

	if err := uc.urlRepo.Remove(ctx, id); err != nil {
		return fmt.Errorf("%s: failed to delete url: %w", op, err)
	}

	return nil
}

// InitSchema creates or upgrades the storage schema. It is idempotent.
func (uc *URLUseCase) InitSchema(ctx context.Context) (bool, error) {
	const op = "usecase.URLUseCase.InitSchema"

	applied, err := uc.migrator.Migrate(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: failed to initialize schema: %w", op, err)
	}

	return applied, nil
}
