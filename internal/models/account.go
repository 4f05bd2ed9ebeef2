package models

import "time"

// ProviderCredentials is the provider name of email+password accounts.
const ProviderCredentials = "credentials"

const (
	AccountTypeCredentials = "credentials"
	AccountTypeOAuth       = "oauth"
)

// Account links a User to one login method.
type Account struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Type              string    `json:"type"`
	Provider          string    `json:"provider"`
	ProviderAccountID string    `json:"providerAccountId"`
	Name              string    `json:"name,omitempty"`
	PasswordHash      string    `json:"-"` // only set for credentials accounts
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
