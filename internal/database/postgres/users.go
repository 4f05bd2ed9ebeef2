package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/models"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	FirstName    string    `bun:"first_name"`
	LastName     string    `bun:"last_name"`
	Email        string    `bun:"email"`
	Contact      string    `bun:"contact"`
	Organization string    `bun:"organization"`
	Address      string    `bun:"address"`
	Image        string    `bun:"image"`
	CreatedAt    time.Time `bun:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at"`
}

type userRepo struct {
	db bun.IDB
}

var _ database.UserRepository = (*userRepo)(nil)

// Create inserts a new user into the database
func (r *userRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	row := &userRow{
		ID:           uuid.New(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Contact:      u.Contact,
		Organization: u.Organization,
		Address:      u.Address,
		Image:        u.Image,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		return nil, translate(err, "create user")
	}

	return mapUserRowToModel(row), nil
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	row := new(userRow)
	if err := r.db.NewSelect().Model(row).Where("id = ?", uid).Scan(ctx); err != nil {
		return nil, translate(err, "get user by id")
	}

	return mapUserRowToModel(row), nil
}

// GetByEmail retrieves a user by email
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := new(userRow)
	if err := r.db.NewSelect().Model(row).Where("email = ?", email).Scan(ctx); err != nil {
		return nil, translate(err, "get user by email")
	}

	return mapUserRowToModel(row), nil
}

func (r *userRepo) UpdateName(ctx context.Context, id, firstName, lastName string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := r.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("first_name = ?", firstName).
		Set("last_name = ?", lastName).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", uid).
		Exec(ctx)
	if err != nil {
		return translate(err, "update user name")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrNotFound
	}

	return nil
}

// mapUserRowToModel converts database model to domain model
func mapUserRowToModel(row *userRow) *models.User {
	return &models.User{
		ID:           row.ID.String(),
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Email:        row.Email,
		Contact:      row.Contact,
		Organization: row.Organization,
		Address:      row.Address,
		Image:        row.Image,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
