package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// starterMeals is shown on a fresh development database so the listing
// page is not empty. Production databases are never seeded.
var starterMeals = []CreateMealParams{
	{
		Title:        "Juicy Cheese Burger",
		Slug:         "juicy-cheese-burger",
		Summary:      "A mouth-watering burger with a juicy beef patty and melted cheese, served in a soft bun.",
		Instructions: "1. Prepare the patty. 2. Cook on high heat for 2-3 minutes each side. 3. Assemble with cheese and toppings.",
		Creator:      "John Doe",
		CreatorEmail: "johndoe@example.com",
		Image:        "/images/burger.jpg",
	},
	{
		Title:        "Spicy Curry",
		Slug:         "spicy-curry",
		Summary:      "A rich and spicy curry, infused with exotic spices and creamy coconut milk.",
		Instructions: "1. Chop vegetables. 2. Sauté with curry paste. 3. Simmer in coconut milk until tender.",
		Creator:      "Max Schwarz",
		CreatorEmail: "max@example.com",
		Image:        "/images/curry.jpg",
	},
	{
		Title:        "Homemade Dumplings",
		Slug:         "homemade-dumplings",
		Summary:      "Tender dumplings filled with savory meat and vegetables, steamed to perfection.",
		Instructions: "1. Prepare the dough. 2. Fill with meat and vegetables. 3. Steam for 10 minutes.",
		Creator:      "Emily Chen",
		CreatorEmail: "emilychen@example.com",
		Image:        "/images/dumplings.jpg",
	},
}

// SeedIfEmpty inserts starter meals when the meals table has no rows.
func SeedIfEmpty(ctx context.Context, db *sql.DB) error {
	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM meals").Scan(&count); err != nil {
		return fmt.Errorf("counting meals: %w", err)
	}
	if count > 0 {
		return nil
	}

	queries := New(db)
	now := time.Now()
	for _, m := range starterMeals {
		m.CreatedAt = now
		m.UpdatedAt = now
		if _, err := queries.CreateMeal(ctx, m); err != nil {
			return fmt.Errorf("seeding meal %q: %w", m.Slug, err)
		}
	}

	slog.Info("seeded starter meals", "count", len(starterMeals))
	return nil
}
