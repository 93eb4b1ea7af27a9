package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedUsers создает по пользователю на каждую роль. Повторный запуск
// безопасен: конфликт по имени обновляет роль.
func SeedUsers(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения таблицы 'users'...")

	query := `INSERT INTO users (name, role) VALUES ($1, $2) ON CONFLICT DO NOTHING;`
	tx, err := db.Begin(ctx)
	if err != nil {
		log.Fatalf("❌ Не удалось открыть транзакцию: %v", err)
	}
	defer tx.Rollback(ctx)

	for _, u := range usersData {
		if _, err := tx.Exec(ctx, query, u.Name, string(u.Role)); err != nil {
			log.Fatalf("❌ Ошибка вставки пользователя %s: %v", u.Name, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("❌ Не удалось зафиксировать транзакцию: %v", err)
	}

	log.Println("✅ Наполнение пользователей завершено!")
}
