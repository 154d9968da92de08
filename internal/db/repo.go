package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// table describes a content collection: writable columns are bound by name
// from the row struct's db tags.
type table struct {
	name     string
	writable []string
	orderBy  string
}

func (t table) columns() []string {
	cols := append([]string{"id"}, t.writable...)
	return append(cols, "created_at")
}

var (
	eventsTable = table{
		name:     "events",
		writable: []string{"title", "kind", "event_date", "event_time", "when_text", "note"},
		orderBy:  "created_at, id",
	}
	programsTable = table{
		name:     "programs",
		writable: []string{"title", "grades", "description", "days", "time", "note"},
		orderBy:  "created_at, id",
	}
	contactsTable = table{
		name:     "contacts",
		writable: []string{"role", "name", "email", "phone"},
		orderBy:  "created_at, id",
	}
	galleryTable = table{
		name:     "gallery",
		writable: []string{"title", "image_url"},
		orderBy:  "created_at, id",
	}
	footerLinksTable = table{
		name:     "footer_links",
		writable: []string{"label", "url", "sort_order"},
		orderBy:  "sort_order, created_at, id",
	}
)

type pgRepo[T any, P record[T]] struct {
	db *sqlx.DB
	t  table
}

func newPgRepo[T any, P record[T]](dbx *sqlx.DB, t table) *pgRepo[T, P] {
	return &pgRepo[T, P]{db: dbx, t: t}
}

func (r *pgRepo[T, P]) List(ctx context.Context) ([]T, error) {
	query, args, err := psql.Select(r.t.columns()...).From(r.t.name).OrderBy(r.t.orderBy).ToSql()
	if err != nil {
		return nil, err
	}
	rows := []T{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		log.Error().Err(err).Str("table", r.t.name).Msg("failed to list rows")
		return nil, err
	}
	return rows, nil
}

func (r *pgRepo[T, P]) Get(ctx context.Context, id string) (T, error) {
	var row T
	query, args, err := psql.Select(r.t.columns()...).From(r.t.name).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return row, err
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return row, ErrNotFound
		}
		log.Error().Err(err).Str("table", r.t.name).Str("id", id).Msg("failed to get row")
		return row, err
	}
	return row, nil
}

func (r *pgRepo[T, P]) Create(ctx context.Context, row T) (T, error) {
	P(&row).Identify(uuid.NewString(), time.Now().UTC())

	cols := r.t.columns()
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s) RETURNING %s",
		r.t.name, strings.Join(cols, ", "), strings.Join(cols, ", :"), strings.Join(cols, ", "))
	return r.namedOne(ctx, query, row, "failed to create row")
}

func (r *pgRepo[T, P]) Update(ctx context.Context, row T) (T, error) {
	set := make([]string, len(r.t.writable))
	for i, c := range r.t.writable {
		set[i] = c + " = :" + c
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id RETURNING %s",
		r.t.name, strings.Join(set, ", "), strings.Join(r.t.columns(), ", "))
	return r.namedOne(ctx, query, row, "failed to update row")
}

func (r *pgRepo[T, P]) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete(r.t.name).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if isInvalidID(err) {
		return ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("table", r.t.name).Str("id", id).Msg("failed to delete row")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// namedOne runs a named statement that returns exactly one row.
func (r *pgRepo[T, P]) namedOne(ctx context.Context, query string, arg T, failMsg string) (T, error) {
	var out T
	rows, err := r.db.NamedQueryContext(ctx, query, arg)
	if err != nil {
		if isInvalidID(err) {
			return out, ErrNotFound
		}
		log.Error().Err(err).Str("table", r.t.name).Msg(failMsg)
		return out, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return out, err
		}
		return out, ErrNotFound
	}
	if err := rows.StructScan(&out); err != nil {
		return out, fmt.Errorf("failed to scan %s row: %w", r.t.name, err)
	}
	return out, nil
}
