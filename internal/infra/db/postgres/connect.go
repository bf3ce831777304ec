package postgres

import (
    "context"
    "database/sql"
    "time"

    _ "github.com/lib/pq"
)

// Connect buka koneksi Postgres (lib/pq) dan ping
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
    db, err := sql.Open("postgres", dsn)
    if err != nil {
        return nil, err
    }
    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(10)
    db.SetConnMaxLifetime(30 * time.Minute)

    ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx2); err != nil {
        _ = db.Close()
        return nil, err
    }
    return db, nil
}
