package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

// urlColumns lists the selected columns explicitly so that rows created by
// older schema revisions (nullable created_at/visits) still scan.
const urlColumns = `id, original_url, custom_path, created_at, COALESCE(visits, 0) AS visits`

type urlDB struct {
	ID          int64          `db:"id"`
	OriginalURL string         `db:"original_url"`
	CustomPath  sql.NullString `db:"custom_path"`
	CreatedAt   sql.NullTime   `db:"created_at"`
	Visits      int64          `db:"visits"`
}

func (u *urlDB) toEntity() *entity.URL {
	url := &entity.URL{
		ID:          u.ID,
		OriginalURL: u.OriginalURL,
		Visits:      u.Visits,
		CreatedAt:   u.CreatedAt.Time,
	}

	if u.CustomPath.Valid {
		alias := u.CustomPath.String
		url.CustomAlias = &alias
	}

	return url
}

func toNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// URLRepository stores URL mappings in the shortened_urls table. Every call
// is bounded by the configured query timeout.
type URLRepository struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

func NewURLRepository(db *sqlx.DB, queryTimeout time.Duration) *URLRepository {
	return &URLRepository{
		db:           db,
		queryTimeout: queryTimeout,
	}
}

func (r *URLRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

// Save inserts a new mapping. Alias uniqueness is enforced by the table's
// unique constraint, so concurrent inserts of the same alias resolve here.
func (r *URLRepository) Save(ctx context.Context, originalURL string, alias *string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.Save"
	const query = `INSERT INTO shortened_urls (original_url, custom_path) VALUES ($1, $2) RETURNING ` + urlColumns

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, originalURL, toNullString(alias)); err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrAliasExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into shortened_urls table: %w", op, err)
	}

	return url.toEntity(), nil
}

// RetrieveAndIncrementByID counts a visit and returns the mapping in one statement.
func (r *URLRepository) RetrieveAndIncrementByID(ctx context.Context, id int64) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveAndIncrementByID"
	const query = `UPDATE shortened_urls SET visits = COALESCE(visits, 0) + 1 WHERE id = $1 RETURNING ` + urlColumns

	return r.getOne(ctx, op, "failed to get and update shortened_urls table row", query, id)
}

// RetrieveAndIncrementByAlias counts a visit and returns the mapping in one statement.
func (r *URLRepository) RetrieveAndIncrementByAlias(ctx context.Context, alias string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveAndIncrementByAlias"
	const query = `UPDATE shortened_urls SET visits = COALESCE(visits, 0) + 1 WHERE custom_path = $1 RETURNING ` + urlColumns

	return r.getOne(ctx, op, "failed to get and update shortened_urls table row", query, alias)
}

func (r *URLRepository) RetrieveByID(ctx context.Context, id int64) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveByID"
	const query = `SELECT ` + urlColumns + ` FROM shortened_urls WHERE id = $1`

	return r.getOne(ctx, op, "failed to get row from shortened_urls table", query, id)
}

func (r *URLRepository) getOne(ctx context.Context, op, failure, query string, arg any) (*entity.URL, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: %s: %w", op, failure, err)
	}

	return url.toEntity(), nil
}

// List returns every mapping, newest first.
func (r *URLRepository) List(ctx context.Context) ([]entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.List"
	const query = `SELECT ` + urlColumns + ` FROM shortened_urls ORDER BY created_at DESC NULLS LAST, id DESC`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rows []urlDB

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select from shortened_urls table: %w", op, err)
	}

	urls := make([]entity.URL, 0, len(rows))
	for i := range rows {
		urls = append(urls, *rows[i].toEntity())
	}

	return urls, nil
}

func (r *URLRepository) Remove(ctx context.Context, id int64) error {
	const op = "adapter.repository.postgres.URLRepository.Remove"
	const query = `DELETE FROM shortened_urls WHERE id = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to delete from shortened_urls table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return nil
}
