package mockdb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taledb/taledb-go/pkg/taledb/errors"
	"github.com/taledb/taledb-go/pkg/taledb/values"
)

// NewPostgresStore connects to postgres and makes sure the documents table
// exists. Used when the mock should keep its documents across restarts.
func NewPostgresStore(ctx context.Context, connStr string) (DocumentStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	err = pool.Ping(ctx)
	if err != nil {
		return nil, err
	}

	ddl := `CREATE TABLE IF NOT EXISTS documents (
		ref TEXT NOT NULL PRIMARY KEY,
		class TEXT NOT NULL,
		body JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS documents_class_idx ON documents (class, ref);`

	_, err = pool.Exec(ctx, ddl)
	if err != nil {
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &pgStore{pool: pool}, nil
}

type pgStore struct {
	pool *pgxpool.Pool
}

func (s *pgStore) Put(ctx context.Context, ref values.Ref, data map[string]any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}

	sql := `INSERT INTO documents (ref, class, body) VALUES ($1, $2, $3)
		ON CONFLICT (ref) DO UPDATE SET body = EXCLUDED.body;`

	_, err = s.pool.Exec(ctx, sql, ref.Value(), ref.Class().Value(), body)
	return err
}

func (s *pgStore) Get(ctx context.Context, ref values.Ref) (map[string]any, error) {
	var body []byte

	err := s.pool.QueryRow(ctx, `SELECT body FROM documents WHERE ref = $1;`, ref.Value()).Scan(&body)
	if err == pgx.ErrNoRows {
		return nil, errors.NewNotFoundError("document not found: " + ref.Value())
	}
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	err = json.Unmarshal(body, &data)

	return data, err
}

func (s *pgStore) Delete(ctx context.Context, ref values.Ref) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE ref = $1;`, ref.Value())
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("document not found: " + ref.Value())
	}

	return nil
}

func (s *pgStore) List(ctx context.Context, class values.Ref, after string, limit int) ([]values.Ref, error) {
	sql := `SELECT ref FROM documents WHERE class = $1 AND ref > $2 ORDER BY ref LIMIT $3;`

	rows, err := s.pool.Query(ctx, sql, class.Value(), after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]values.Ref, 0, limit)

	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			return nil, err
		}
		refs = append(refs, values.NewRef(key))
	}

	return refs, rows.Err()
}
