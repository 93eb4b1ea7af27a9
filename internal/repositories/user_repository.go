package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-system/internal/workflow"
)

// UserRepositoryInterface — справочник пользователей. Ведение пользователей
// (создание, пароли, сессии) живет во внешнем сервисе; здесь нужен только
// поиск получателей уведомлений по роли.
type UserRepositoryInterface interface {
	FindIDsByRole(ctx context.Context, role workflow.Role) ([]uint64, error)
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepositoryInterface {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindIDsByRole(ctx context.Context, role workflow.Role) ([]uint64, error) {
	query, args, err := psql.Select("id").
		From("users").
		Where(sq.Eq{"role": string(role)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("сборка SQL (users by role): %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("выборка пользователей по роли: %w", err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
