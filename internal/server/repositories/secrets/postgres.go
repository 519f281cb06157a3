package secrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/dbx"
	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, secret *models.Secret) (*models.Secret, error) {
	query :=
		`INSERT INTO secrets (id, user_id, key, value, iv, auth_tag)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		secret.ID, secret.UserID, secret.Key, secret.Value, secret.IV, secret.AuthTag).Scan(&secret.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorDuplicateKey
		}
		return nil, fmt.Errorf("%w: db error: %w", common.ErrorBackend, err)
	}

	return secret, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, key string) (*models.Secret, error) {
	query :=
		`SELECT id, user_id, key, value, iv, auth_tag, created_at FROM secrets
		 WHERE user_id = $1 AND key = $2
		 `

	s := &models.Secret{}
	err := r.db.QueryRowContext(ctx, query, userID, key).
		Scan(&s.ID, &s.UserID, &s.Key, &s.Value, &s.IV, &s.AuthTag, &s.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: db error: %w", common.ErrorBackend, err)
	}

	return s, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Secret, error) {
	query :=
		`SELECT id, user_id, key, value, iv, auth_tag, created_at FROM secrets
		 WHERE user_id = $1
		 ORDER BY created_at, key
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrorBackend, err)
	}
	defer rows.Close()

	result := make([]*models.Secret, 0)
	for rows.Next() {
		s := &models.Secret{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Key, &s.Value, &s.IV, &s.AuthTag, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: db error: %w", common.ErrorBackend, err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrorBackend, err)
	}

	return result, nil
}
