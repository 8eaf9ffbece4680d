package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"phrasebook/internal/util"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) AddCategory(ctx context.Context, userID, name, emoji string) (string, error) {
	id := util.NewID("cat")
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, emoji)
		VALUES ($1, $2, $3, $4)
	`, id, userID, name, emoji)
	if err != nil {
		return "", fmt.Errorf("insert category: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Categories(ctx context.Context, userID string) iter.Seq2[Category, error] {
	return func(yield func(Category, error) bool) {
		rows, err := s.db.QueryContext(ctx, `SELECT id, name, emoji FROM categories WHERE user_id=$1`, userID)
		if err != nil {
			yield(Category{}, fmt.Errorf("list categories: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var c Category
			if err := rows.Scan(&c.ID, &c.Name, &c.Emoji); err != nil {
				yield(Category{}, fmt.Errorf("scan category: %w", err))
				return
			}
			if !yield(c, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Category{}, fmt.Errorf("list categories: %w", err))
		}
	}
}

func (s *PostgresStore) AddPhrase(ctx context.Context, userID, categoryID, text string) (string, error) {
	id := util.NewID("phr")
	// The category must belong to the user; otherwise nothing is inserted.
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO phrases (id, category_id, user_id, text)
		SELECT $1::text, c.id, c.user_id, $4::text
		FROM categories c
		WHERE c.id = $2 AND c.user_id = $3
	`, id, categoryID, userID, text)
	if err != nil {
		return "", fmt.Errorf("insert phrase: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("insert phrase: %w", err)
	}
	if affected == 0 {
		return "", ErrNotFound
	}
	return id, nil
}

func (s *PostgresStore) Phrases(ctx context.Context, userID, categoryID string) iter.Seq2[Phrase, error] {
	return func(yield func(Phrase, error) bool) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, text FROM phrases WHERE user_id=$1 AND category_id=$2
		`, userID, categoryID)
		if err != nil {
			yield(Phrase{}, fmt.Errorf("list phrases: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var p Phrase
			if err := rows.Scan(&p.ID, &p.Text); err != nil {
				yield(Phrase{}, fmt.Errorf("scan phrase: %w", err))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Phrase{}, fmt.Errorf("list phrases: %w", err))
		}
	}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
