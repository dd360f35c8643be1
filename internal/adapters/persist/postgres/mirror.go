package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"pet-studio/internal/domain/store"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables para MVP (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// mirror persiste key → JSON en una tabla local_state:
//
//	CREATE TABLE local_state (
//	  key        text PRIMARY KEY,
//	  value      jsonb NOT NULL,
//	  updated_at timestamptz NOT NULL DEFAULT now()
//	);
//
// Sirve para compartir el estado entre instancias (p.ej. varias tabs contra el
// mismo backend de dev); las escrituras igual se serializan en el Store.
type mirror struct {
	db *sql.DB
}

func NewMirror(db *sql.DB) store.Mirror {
	return &mirror{db: db}
}

func (m *mirror) Put(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = m.db.ExecContext(context.Background(), `
		INSERT INTO local_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, b)
	return err
}

func (m *mirror) Get(key string, out any) (bool, error) {
	var b []byte
	err := m.db.QueryRowContext(context.Background(), `
		SELECT value FROM local_state WHERE key = $1
	`, key).Scan(&b)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mirror) Delete(key string) error {
	_, err := m.db.ExecContext(context.Background(), `
		DELETE FROM local_state WHERE key = $1
	`, key)
	return err
}
