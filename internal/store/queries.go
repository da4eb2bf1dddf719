package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/GyGaByyyTe/nextlevel-food/internal/model"
)

// Queries wraps a database handle with the application's prepared
// statements. All methods are safe for concurrent use.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance for the given database.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// IsUniqueViolation reports whether err is a SQLite uniqueness
// constraint failure. Both sqlite drivers used in this project emit the
// same message text.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

const mealColumns = "id, title, slug, summary, instructions, creator, creator_email, image, created_at, updated_at"

func scanMeal(row interface{ Scan(...any) error }) (model.Meal, error) {
	var m model.Meal
	err := row.Scan(&m.ID, &m.Title, &m.Slug, &m.Summary, &m.Instructions,
		&m.Creator, &m.CreatorEmail, &m.Image, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// ListMeals returns all meals in storage order.
func (q *Queries) ListMeals(ctx context.Context) ([]model.Meal, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+mealColumns+" FROM meals")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var meals []model.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

// GetMealBySlug returns the meal with the given slug.
// Returns sql.ErrNoRows if the slug is absent.
func (q *Queries) GetMealBySlug(ctx context.Context, slug string) (model.Meal, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+mealColumns+" FROM meals WHERE slug = ?", slug)
	return scanMeal(row)
}

// CreateMealParams holds the column values for a meal insert.
type CreateMealParams struct {
	Title        string
	Slug         string
	Summary      string
	Instructions string
	Creator      string
	CreatorEmail string
	Image        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateMeal inserts a meal row and returns the stored record.
func (q *Queries) CreateMeal(ctx context.Context, p CreateMealParams) (model.Meal, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO meals (title, slug, summary, instructions, creator, creator_email, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Slug, p.Summary, p.Instructions, p.Creator, p.CreatorEmail, p.Image, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return model.Meal{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Meal{}, err
	}
	return model.Meal{
		ID:           id,
		Title:        p.Title,
		Slug:         p.Slug,
		Summary:      p.Summary,
		Instructions: p.Instructions,
		Creator:      p.Creator,
		CreatorEmail: p.CreatorEmail,
		Image:        p.Image,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}, nil
}

// UpdateMealParams holds the mutable columns of a meal. Slug and
// creator_email are intentionally absent: they are immutable.
type UpdateMealParams struct {
	Title        string
	Summary      string
	Instructions string
	Creator      string
	Image        string
	UpdatedAt    time.Time
}

// UpdateMealBySlug updates the mutable fields of a meal.
// Returns sql.ErrNoRows if the slug is absent.
func (q *Queries) UpdateMealBySlug(ctx context.Context, slug string, p UpdateMealParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE meals
		SET title = ?, summary = ?, instructions = ?, creator = ?, image = ?, updated_at = ?
		WHERE slug = ?`,
		p.Title, p.Summary, p.Instructions, p.Creator, p.Image, p.UpdatedAt, slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteMealBySlug removes a meal row.
// Returns sql.ErrNoRows if the slug is absent.
func (q *Queries) DeleteMealBySlug(ctx context.Context, slug string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM meals WHERE slug = ?", slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListImageRefs returns the image references of all meals. Used by the
// orphaned-image sweeper.
func (q *Queries) ListImageRefs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT image FROM meals")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

const userColumns = "id, email, name, is_admin, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetUserByID returns the user with the given id.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetUserByEmail returns the user with the given email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// ListAdmins returns all users with the admin flag set.
func (q *Queries) ListAdmins(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users WHERE is_admin = 1")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpsertUser inserts a user on first sign-in or refreshes the name on
// later sign-ins. The admin flag is never touched here.
func (q *Queries) UpsertUser(ctx context.Context, email, name string) (model.User, error) {
	now := time.Now()
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (email, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`,
		email, name, now, now)
	if err != nil {
		return model.User{}, err
	}
	return q.GetUserByEmail(ctx, email)
}

// SetUserAdmin sets or clears the admin flag. Only reachable from the
// out-of-band CLI tooling, never from request handlers.
func (q *Queries) SetUserAdmin(ctx context.Context, email string, isAdmin bool) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE users SET is_admin = ?, updated_at = ? WHERE email = ?",
		isAdmin, time.Now(), email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateEventParams holds the column values for an event log insert.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts an event log entry.
func (q *Queries) CreateEvent(ctx context.Context, p CreateEventParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO events (level, category, message, user_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Level, p.Category, p.Message, p.UserID, p.Metadata, p.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
