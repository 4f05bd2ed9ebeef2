package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/models"
)

type accountRow struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID                uuid.UUID `bun:"id,pk,type:uuid"`
	UserID            uuid.UUID `bun:"user_id,type:uuid"`
	Type              string    `bun:"type"`
	Provider          string    `bun:"provider"`
	ProviderAccountID string    `bun:"provider_account_id"`
	Name              string    `bun:"name"`
	PasswordHash      *string   `bun:"password_hash"`
	CreatedAt         time.Time `bun:"created_at"`
	UpdatedAt         time.Time `bun:"updated_at"`
}

type accountRepo struct {
	db bun.IDB
}

var _ database.AccountRepository = (*accountRepo)(nil)

func (r *accountRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	userID, err := parseID(a.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	row := &accountRow{
		ID:                uuid.New(),
		UserID:            userID,
		Type:              a.Type,
		Provider:          a.Provider,
		ProviderAccountID: a.ProviderAccountID,
		Name:              a.Name,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if a.PasswordHash != "" {
		row.PasswordHash = &a.PasswordHash
	}

	if _, err := r.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		return nil, translate(err, "create account")
	}

	return mapAccountRowToModel(row), nil
}

func (r *accountRepo) GetByProvider(ctx context.Context, provider, providerAccountID string) (*models.Account, error) {
	row := new(accountRow)
	err := r.db.NewSelect().
		Model(row).
		Where("provider = ?", provider).
		Where("provider_account_id = ?", providerAccountID).
		Scan(ctx)
	if err != nil {
		return nil, translate(err, "get account by provider")
	}
	return mapAccountRowToModel(row), nil
}

func (r *accountRepo) GetByUserAndProvider(ctx context.Context, userID, provider, providerAccountID string) (*models.Account, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	row := new(accountRow)
	err = r.db.NewSelect().
		Model(row).
		Where("user_id = ?", uid).
		Where("provider = ?", provider).
		Where("provider_account_id = ?", providerAccountID).
		Scan(ctx)
	if err != nil {
		return nil, translate(err, "get account by user and provider")
	}
	return mapAccountRowToModel(row), nil
}

func (r *accountRepo) GetByProviderAccountID(ctx context.Context, providerAccountID string) (*models.Account, error) {
	row := new(accountRow)
	err := r.db.NewSelect().
		Model(row).
		Where("provider_account_id = ?", providerAccountID).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err, "get account by provider account id")
	}
	return mapAccountRowToModel(row), nil
}

func mapAccountRowToModel(row *accountRow) *models.Account {
	a := &models.Account{
		ID:                row.ID.String(),
		UserID:            row.UserID.String(),
		Type:              row.Type,
		Provider:          row.Provider,
		ProviderAccountID: row.ProviderAccountID,
		Name:              row.Name,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if row.PasswordHash != nil {
		a.PasswordHash = *row.PasswordHash
	}
	return a
}
