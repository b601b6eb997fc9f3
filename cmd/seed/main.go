// Seeds a development database with investors and transactions covering the
// interesting compliance states.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"estateguard/internal/domain"
	"estateguard/internal/repository/postgres"
	"estateguard/pkg/config"
	"estateguard/pkg/errors"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	userRepo := postgres.NewUserRepository(db)
	txRepo := postgres.NewTransactionRepository(db)

	seedUsers := []struct {
		email     string
		firstName string
		lastName  string
		status    domain.KYCStatus
		volumes   []int64
	}{
		{"alice.tan@example.com", "Alice", "Tan", domain.KYCStatusApproved, []int64{12000, 8000}},
		{"bruno.keller@example.com", "Bruno", "Keller", domain.KYCStatusPending, []int64{60000}},
		{"carmen.diaz@example.com", "Carmen", "Diaz", domain.KYCStatusRejected, []int64{45000, 70000}},
		{"dmitri.volkov@example.com", "Dmitri", "Volkov", domain.KYCStatusPending, nil},
	}

	for _, s := range seedUsers {
		now := time.Now().UTC()
		user := &domain.User{
			ID:        uuid.New(),
			Email:     s.email,
			FirstName: s.firstName,
			LastName:  s.lastName,
			KYCStatus: s.status,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, errors.ErrUserAlreadyExists) {
				log.Printf("skipping %s, already seeded", s.email)
				continue
			}
			log.Fatalf("Failed to seed user %s: %v", s.email, err)
		}

		for i, amount := range s.volumes {
			tx := &domain.Transaction{
				ID:        uuid.New(),
				UserID:    user.ID,
				Amount:    decimal.NewFromInt(amount),
				Status:    domain.TransactionStatusCompleted,
				CreatedAt: now.Add(-time.Duration(i+1) * 24 * time.Hour),
			}
			if err := txRepo.Create(ctx, tx); err != nil {
				log.Fatalf("Failed to seed transaction for %s: %v", s.email, err)
			}
		}

		log.Printf("seeded %s (%s) with %d transactions", s.email, s.status, len(s.volumes))
	}

	log.Println("Seed complete")
}
