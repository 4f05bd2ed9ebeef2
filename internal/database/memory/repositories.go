package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/models"
)

type userRepo struct {
	tx *binding
}

func (r *userRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	var out models.User
	err := r.tx.do("users.create", func(st *state) error {
		for _, existing := range st.users {
			if existing.Email == u.Email {
				return database.ErrDuplicate
			}
		}
		out = *u
		out.ID = uuid.NewString()
		now := time.Now().UTC()
		out.CreatedAt, out.UpdatedAt = now, now
		st.users[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var out models.User
	err := r.tx.do("users.getbyid", func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return database.ErrNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var out models.User
	err := r.tx.do("users.getbyemail", func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				out = u
				return nil
			}
		}
		return database.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) UpdateName(ctx context.Context, id, firstName, lastName string) error {
	return r.tx.do("users.updatename", func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return database.ErrNotFound
		}
		u.FirstName, u.LastName = firstName, lastName
		u.UpdatedAt = time.Now().UTC()
		st.users[id] = u
		return nil
	})
}

type accountRepo struct {
	tx *binding
}

func (r *accountRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	var out models.Account
	err := r.tx.do("accounts.create", func(st *state) error {
		if _, ok := st.users[a.UserID]; !ok {
			return database.ErrNotFound
		}
		for _, existing := range st.accounts {
			if existing.Provider == a.Provider && existing.ProviderAccountID == a.ProviderAccountID {
				return database.ErrDuplicate
			}
		}
		out = *a
		out.ID = uuid.NewString()
		now := time.Now().UTC()
		out.CreatedAt, out.UpdatedAt = now, now
		st.accounts[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *accountRepo) find(op string, match func(models.Account) bool) (*models.Account, error) {
	var out models.Account
	err := r.tx.do(op, func(st *state) error {
		for _, a := range st.accounts {
			if match(a) {
				out = a
				return nil
			}
		}
		return database.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *accountRepo) GetByProvider(ctx context.Context, provider, providerAccountID string) (*models.Account, error) {
	return r.find("accounts.getbyprovider", func(a models.Account) bool {
		return a.Provider == provider && a.ProviderAccountID == providerAccountID
	})
}

func (r *accountRepo) GetByUserAndProvider(ctx context.Context, userID, provider, providerAccountID string) (*models.Account, error) {
	return r.find("accounts.getbyuserandprovider", func(a models.Account) bool {
		return a.UserID == userID && a.Provider == provider && a.ProviderAccountID == providerAccountID
	})
}

func (r *accountRepo) GetByProviderAccountID(ctx context.Context, providerAccountID string) (*models.Account, error) {
	return r.find("accounts.getbyprovideraccountid", func(a models.Account) bool {
		return a.ProviderAccountID == providerAccountID
	})
}

type paymentRepo struct {
	tx *binding
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	var out models.Payment
	err := r.tx.do("payments.create", func(st *state) error {
		if _, ok := st.payments[p.OrderID]; ok {
			return database.ErrDuplicate
		}
		out = *p
		out.ID = uuid.NewString()
		if out.CreatedAt.IsZero() {
			out.CreatedAt = time.Now().UTC()
		}
		st.payments[out.OrderID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *paymentRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var out models.Payment
	err := r.tx.do("payments.getbyorderid", func(st *state) error {
		p, ok := st.payments[orderID]
		if !ok {
			return database.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *paymentRepo) MarkVerified(ctx context.Context, orderID, paymentID, signature string, paidAt time.Time) (*models.Payment, error) {
	var out models.Payment
	err := r.tx.do("payments.markverified", func(st *state) error {
		p, ok := st.payments[orderID]
		if !ok || p.Verified {
			return database.ErrNotFound
		}
		p.PaymentID = paymentID
		p.Signature = signature
		p.Status = models.PaymentStatusCompleted
		p.Verified = true
		paid := paidAt
		p.PaidAt = &paid
		st.payments[orderID] = p
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *paymentRepo) LatestVerifiedByEmail(ctx context.Context, email string) (*models.Payment, error) {
	var out models.Payment
	err := r.tx.do("payments.latestverifiedbyemail", func(st *state) error {
		var matches []models.Payment
		for _, p := range st.payments {
			if p.Email == email && p.Verified {
				matches = append(matches, p)
			}
		}
		if len(matches) == 0 {
			return database.ErrNotFound
		}
		sort.Slice(matches, func(i, j int) bool {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		})
		out = matches[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *paymentRepo) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.tx.do("payments.deleteunverifiedbefore", func(st *state) error {
		for id, p := range st.payments {
			if !p.Verified && p.CreatedAt.Before(cutoff) {
				delete(st.payments, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
