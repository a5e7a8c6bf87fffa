package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/samber/lo"
)

// Источника с таким ID нет
var ErrSourceNotFound = errors.New("source not found")

// Хранилище источников (лент)
type SourcePostgresStorage struct {
	db *sqlx.DB
}

func NewSourcePostgresStorage(db *sqlx.DB) *SourcePostgresStorage {
	return &SourcePostgresStorage{db: db}
}

// Все источники, старые первыми
func (s *SourcePostgresStorage) Sources(ctx context.Context) ([]model.Source, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var sources []dbSource
	if err := conn.SelectContext(ctx, &sources, `SELECT id, name, feed_url, kind, created_at FROM sources ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select sources: %w", err)
	}

	return lo.Map(sources, func(source dbSource, _ int) model.Source {
		return model.Source(source)
	}), nil
}

func (s *SourcePostgresStorage) SourceByID(ctx context.Context, id int64) (*model.Source, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var source dbSource
	err = conn.GetContext(ctx, &source, `SELECT id, name, feed_url, kind, created_at FROM sources WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select source %d: %w", id, err)
	}

	return (*model.Source)(&source), nil
}

// Добавляем источник и возвращаем его ID
func (s *SourcePostgresStorage) Add(ctx context.Context, source model.Source) (int64, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if source.Kind == "" {
		source.Kind = model.SourceKindRSS
	}
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now().UTC()
	}

	var id int64
	if err := conn.QueryRowxContext(
		ctx,
		`INSERT INTO sources (name, feed_url, kind, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		source.Name,
		source.FeedURL,
		source.Kind,
		source.CreatedAt,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert source: %w", err)
	}

	return id, nil
}

// Удаляем источник. Статьи ленты остаются в БД.
func (s *SourcePostgresStorage) Delete(ctx context.Context, id int64) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete source %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSourceNotFound
	}

	return nil
}

type dbSource struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	FeedURL   string    `db:"feed_url"`
	Kind      string    `db:"kind"`
	CreatedAt time.Time `db:"created_at"`
}
