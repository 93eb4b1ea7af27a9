package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-system/internal/entities"
	"rental-system/internal/workflow"
	apperrors "rental-system/pkg/errors"
)

type OrderRepositoryInterface interface {
	CreateOrder(ctx context.Context, creatorID uint64, number, patientName string) (uint64, error)
	FindOrder(ctx context.Context, id uint64) (*entities.Order, error)
	UpdateStatus(ctx context.Context, id uint64, from, to workflow.OrderStatus) error
	GetOrders(ctx context.Context, limit, offset uint64) ([]entities.Order, uint64, error)
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *OrderRepository) CreateOrder(ctx context.Context, creatorID uint64, number, patientName string) (uint64, error) {
	query, args, err := psql.Insert("orders").
		Columns("number", "status", "patient_name", "creator_id").
		Values(number, workflow.StatusCreated, patientName, creatorID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("сборка SQL (create order): %w", err)
	}

	var id uint64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("создание заявки: %w", err)
	}
	return id, nil
}

func (r *OrderRepository) FindOrder(ctx context.Context, id uint64) (*entities.Order, error) {
	query, args, err := psql.Select("id", "number", "status", "patient_name", "creator_id", "created_at", "updated_at", "completed_at").
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("сборка SQL (find order): %w", err)
	}

	var o entities.Order
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&o.ID, &o.Number, &o.Status, &o.PatientName, &o.CreatorID, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("поиск заявки: %w", err)
	}
	return &o, nil
}

// UpdateStatus меняет статус с оптимистичной проверкой: WHERE status = from
// гарантирует, что параллельный переход не перезапишется молча.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint64, from, to workflow.OrderStatus) error {
	builder := psql.Update("orders").
		Set("status", to).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "status": from})
	if to == workflow.StatusCompleted {
		builder = builder.Set("completed_at", time.Now())
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("сборка SQL (update status): %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("смена статуса заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) GetOrders(ctx context.Context, limit, offset uint64) ([]entities.Order, uint64, error) {
	query, args, err := psql.Select("id", "number", "status", "patient_name", "creator_id", "created_at", "updated_at", "completed_at").
		From("orders").
		OrderBy("id").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("сборка SQL (get orders): %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("выборка заявок: %w", err)
	}
	defer rows.Close()

	var orders []entities.Order
	for rows.Next() {
		var o entities.Order
		if err := rows.Scan(&o.ID, &o.Number, &o.Status, &o.PatientName, &o.CreatorID, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt); err != nil {
			return nil, 0, fmt.Errorf("чтение заявки: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total uint64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&total); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
