package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"vehicle-scraper/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS listings (
	id BIGSERIAL PRIMARY KEY,
	date TEXT NOT NULL DEFAULT '',
	make TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	mileage TEXT NOT NULL DEFAULT '',
	overview_price TEXT NOT NULL DEFAULT '',
	detail_price TEXT NOT NULL DEFAULT '',
	engine_cc TEXT NOT NULL DEFAULT '',
	yom TEXT NOT NULL DEFAULT '',
	post_make TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT '',
	gear TEXT NOT NULL DEFAULT '',
	fuel_type TEXT NOT NULL DEFAULT '',
	post_url TEXT NOT NULL UNIQUE,
	image_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_listings_make_type ON listings(make, type);
`

// Postgres is the listing store. post_url is the natural key; inserts
// ignore keys that already exist.
type Postgres struct {
	pool *pgxpool.Pool
	log  *logrus.Entry
}

func NewPostgres(ctx context.Context, dsn string, log *logrus.Entry) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	log.Info("Connected to PostgreSQL")
	return &Postgres{pool: pool, log: log}, nil
}

func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
		p.log.Info("Database connection closed")
	}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return &StorageError{Op: "ensure schema", Err: err}
	}
	return nil
}

func (p *Postgres) ListKnownKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := p.pool.Query(ctx, `SELECT post_url FROM listings WHERE post_url <> ''`)
	if err != nil {
		return nil, &StorageError{Op: "list keys", Err: err}
	}

	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, &StorageError{Op: "list keys", Err: err}
	}

	known := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		known[url] = struct{}{}
	}
	return known, nil
}

var insertSQL = fmt.Sprintf(
	`INSERT INTO listings (%s) VALUES (%s) ON CONFLICT (post_url) DO NOTHING`,
	strings.Join(models.Columns, ", "),
	placeholders(len(models.Columns)),
)

// InsertBatch inserts the listings in one transaction and returns how many
// rows were new. Listings without a post URL are skipped. On error nothing
// is committed and the count is zero.
func (p *Postgres) InsertBatch(ctx context.Context, listings []models.Listing) (int, error) {
	batch := &pgx.Batch{}
	for _, l := range listings {
		if strings.TrimSpace(l.PostURL) == "" {
			continue
		}
		batch.Queue(insertSQL, rowArgs(l)...)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, &StorageError{Op: "insert batch", Err: err}
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, &StorageError{Op: "insert batch", Err: fmt.Errorf("row %d: %w", i, err)}
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, &StorageError{Op: "insert batch", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &StorageError{Op: "insert batch", Err: err}
	}

	p.log.WithFields(logrus.Fields{"attempted": len(listings), "inserted": inserted}).Debug("Inserted batch")
	return inserted, nil
}

// FetchAll returns every stored listing, oldest first.
func (p *Postgres) FetchAll(ctx context.Context) ([]models.Listing, error) {
	rows, err := p.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM listings ORDER BY created_at, id`,
		strings.Join(models.Columns, ", "),
	))
	if err != nil {
		return nil, &StorageError{Op: "fetch all", Err: err}
	}

	listings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Listing, error) {
		var l models.Listing
		err := row.Scan(
			&l.Date, &l.Make, &l.Type, &l.Title, &l.Location, &l.Mileage,
			&l.OverviewPrice, &l.DetailPrice, &l.EngineCC, &l.YOM,
			&l.PostMake, &l.Model, &l.Gear, &l.FuelType, &l.PostURL, &l.ImageURL,
		)
		return l, err
	})
	if err != nil {
		return nil, &StorageError{Op: "fetch all", Err: err}
	}
	return listings, nil
}

func rowArgs(l models.Listing) []any {
	row := l.Row()
	args := make([]any, len(row))
	for i, v := range row {
		args[i] = strings.TrimSpace(v)
	}
	return args
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ph, ", ")
}
