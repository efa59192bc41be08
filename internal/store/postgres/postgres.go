package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mellihq/melli-ads/internal/model"
	"github.com/mellihq/melli-ads/internal/search"
	"github.com/mellihq/melli-ads/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

// New opens a connection, ensures the schema and returns a ready store.
func New(ctx context.Context, dsn string) (store.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	s := &pgStore{db: db}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

type pgStore struct{ db *sql.DB }

func (s *pgStore) Advertisements() store.Advertisements { return &advertisements{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the advertisements table when it does not exist yet.
func (s *pgStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS advertisements (
            id            TEXT PRIMARY KEY,
            title         TEXT NOT NULL,
            description   TEXT NOT NULL,
            content       TEXT NOT NULL,
            category      TEXT,
            location      TEXT,
            price         NUMERIC(10,2),
            contact_email TEXT,
            contact_phone TEXT,
            tags          JSONB,
            is_active     BOOLEAN NOT NULL DEFAULT TRUE,
            expires_at    TIMESTAMPTZ,
            created_at    TIMESTAMPTZ NOT NULL,
            updated_at    TIMESTAMPTZ NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_ads_category_active ON advertisements (category, is_active);
        CREATE INDEX IF NOT EXISTS idx_ads_location_active ON advertisements (location, is_active);
        CREATE INDEX IF NOT EXISTS idx_ads_expires_at ON advertisements (expires_at);
    `)
	return err
}

const adColumns = `id, title, description, content, category, location, price,
        contact_email, contact_phone, tags, is_active, expires_at, created_at, updated_at`

type advertisements struct{ db *sql.DB }

func (a *advertisements) Create(ctx context.Context, ad *model.Advertisement) (*model.Advertisement, error) {
	out := *ad
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	out.CreatedAt = now
	out.UpdatedAt = now

	tags, err := marshalTags(out.Tags)
	if err != nil {
		return nil, err
	}
	_, err = a.db.ExecContext(ctx, `
        INSERT INTO advertisements (`+adColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
    `, out.ID, out.Title, out.Description, out.Content, out.Category, out.Location,
		out.Price, out.ContactEmail, out.ContactPhone, tags, out.IsActive,
		out.ExpiresAt, out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *advertisements) GetByID(ctx context.Context, id string) (*model.Advertisement, error) {
	row := a.db.QueryRowContext(ctx, `SELECT `+adColumns+` FROM advertisements WHERE id=$1`, id)
	ad, err := scanAd(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return ad, err
}

func (a *advertisements) Update(ctx context.Context, id string, upd model.AdvertisementUpdate) (*model.Advertisement, error) {
	set := []string{}
	args := []interface{}{}
	n := 0
	add := func(col string, v interface{}) {
		n++
		set = append(set, fmt.Sprintf("%s=$%d", col, n))
		args = append(args, v)
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Content != nil {
		add("content", *upd.Content)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.ContactEmail != nil {
		add("contact_email", *upd.ContactEmail)
	}
	if upd.ContactPhone != nil {
		add("contact_phone", *upd.ContactPhone)
	}
	if upd.Tags != nil {
		tags, err := marshalTags(upd.Tags)
		if err != nil {
			return nil, err
		}
		add("tags", tags)
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}
	if upd.ExpiresAt != nil {
		add("expires_at", *upd.ExpiresAt)
	}
	add("updated_at", time.Now().UTC())

	n++
	args = append(args, id)
	row := a.db.QueryRowContext(ctx, fmt.Sprintf(
		`UPDATE advertisements SET %s WHERE id=$%d RETURNING `+adColumns,
		strings.Join(set, ", "), n), args...)
	ad, err := scanAd(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return ad, err
}

func (a *advertisements) Delete(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM advertisements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (a *advertisements) Query(ctx context.Context, q store.Query) ([]*model.Advertisement, int, error) {
	where, args := whereClause(q.Filters)

	var total int
	row := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM advertisements`+where, args...)
	if err := row.Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	sel := fmt.Sprintf(`SELECT `+adColumns+` FROM advertisements%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		where, q.Sort.Field, sortDirection(q.Sort.Order), n+1, n+2)
	rows, err := a.db.QueryContext(ctx, sel, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	ads, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return ads, total, nil
}

func (a *advertisements) All(ctx context.Context, filters []search.Predicate, limit int) ([]*model.Advertisement, error) {
	where, args := whereClause(filters)
	sel := fmt.Sprintf(`SELECT `+adColumns+` FROM advertisements%s ORDER BY created_at ASC LIMIT $%d`,
		where, len(args)+1)
	rows, err := a.db.QueryContext(ctx, sel, append(args, limit)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collect(rows)
}

func (a *advertisements) DistinctMatches(ctx context.Context, field, term string, limit int) ([]string, error) {
	if !store.SuggestFields[field] {
		return nil, fmt.Errorf("field %q not allowed for suggestions", field)
	}
	where, args := whereClause([]search.Predicate{{Op: search.OpEligible}})
	n := len(args)
	sel := fmt.Sprintf(`SELECT DISTINCT %s FROM advertisements%s AND %s IS NOT NULL AND %s ILIKE '%%' || $%d || '%%' LIMIT $%d`,
		field, where, field, field, n+1, n+2)
	rows, err := a.db.QueryContext(ctx, sel, append(args, term, limit)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out, rows.Err()
}

// whereClause renders predicate descriptors into a WHERE fragment with $n
// placeholders. Field names come from the builder's allow-lists, never from
// raw request input.
func whereClause(filters []search.Predicate) (string, []interface{}) {
	if len(filters) == 0 {
		return "", nil
	}
	clauses := []string{}
	args := []interface{}{}
	for _, f := range filters {
		switch f.Op {
		case search.OpEligible:
			args = append(args, time.Now().UTC())
			clauses = append(clauses, fmt.Sprintf(
				"(is_active = TRUE AND (expires_at IS NULL OR expires_at > $%d))", len(args)))
		case search.OpEq:
			args = append(args, f.Value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", f.Field, len(args)))
		case search.OpContains:
			args = append(args, f.Value)
			clauses = append(clauses, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", f.Field, len(args)))
		case search.OpGte:
			args = append(args, f.Value)
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", f.Field, len(args)))
		case search.OpLte:
			args = append(args, f.Value)
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", f.Field, len(args)))
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func sortDirection(o model.SortOrder) string {
	if o == model.SortAsc {
		return "ASC"
	}
	return "DESC"
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanAd(row rowScanner) (*model.Advertisement, error) {
	var ad model.Advertisement
	var tags []byte
	if err := row.Scan(&ad.ID, &ad.Title, &ad.Description, &ad.Content,
		&ad.Category, &ad.Location, &ad.Price, &ad.ContactEmail, &ad.ContactPhone,
		&tags, &ad.IsActive, &ad.ExpiresAt, &ad.CreatedAt, &ad.UpdatedAt); err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &ad.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", ad.ID, err)
		}
	}
	return &ad, nil
}

func collect(rows *sql.Rows) ([]*model.Advertisement, error) {
	var out []*model.Advertisement
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ad)
	}
	return out, rows.Err()
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}
