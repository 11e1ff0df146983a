package devapi

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// DefaultSeedPassword is the password of every seeded account
const DefaultSeedPassword = "boxoffice"

// Seed fills an empty database with demo accounts, concerts and orders.
// A database that already has users is left alone.
func Seed(db *gorm.DB, password string, log zerolog.Logger) error {
	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		log.Debug().Int64("users", count).Msg("Database already seeded")
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := []*User{
			{Username: "alice", Email: "alice@example.com", DisplayName: "Alice Liddell", PasswordHash: hash, Roles: "user"},
			{Username: "bob", Email: "bob@example.com", PasswordHash: hash, Roles: "user"},
			{Username: "root", Email: "root@example.com", DisplayName: "Box Office Admin", PasswordHash: hash, Roles: "user,admin"},
		}
		if err := tx.Create(users).Error; err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}

		start := time.Now().UTC().Truncate(24 * time.Hour).Add(7*24*time.Hour + 20*time.Hour)
		concerts := []*Concert{
			{
				Name:   "Night Shift",
				Artist: "The Ushers",
				Venue:  "Main Hall",
				Performances: []Performance{
					{StartsAt: start},
					{StartsAt: start.Add(24 * time.Hour)},
				},
			},
			{
				Name:         "Overture",
				Artist:       "City Chamber Orchestra",
				Venue:        "Recital Room",
				Performances: []Performance{{StartsAt: start.Add(3 * 24 * time.Hour)}},
			},
		}
		if err := tx.Create(concerts).Error; err != nil {
			return fmt.Errorf("failed to create concerts: %w", err)
		}

		performance := concerts[0].Performances[0].ID
		order := &Order{
			UserID:     users[0].ID,
			Status:     "paid",
			TotalCents: 9000,
			Tickets: []Ticket{
				{PerformanceID: performance, Code: "NS-0001", TicketType: "standard", PriceCents: 4500},
				{PerformanceID: performance, Code: "NS-0002", TicketType: "standard", PriceCents: 4500},
			},
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create orders: %w", err)
		}

		log.Info().Int("users", len(users)).Int("concerts", len(concerts)).Msg("Seeded development database")
		return nil
	})
}
