package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tareas-web/appserver/internal/store"
	"github.com/tareas-web/appserver/types"
	"golang.org/x/crypto/bcrypt"
)

// AccountService encapsulates registration and authentication.
type AccountService struct {
	db *sql.DB
}

func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{db: db}
}

// Register creates an account with a bcrypt-derived credential hash.
// The username pre-check and the insert run in one transaction; the
// schema-level unique constraint backstops the race between them.
func (s *AccountService) Register(ctx context.Context, username, password string) (types.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return types.Account{}, invalidField("username")
	}
	if password == "" {
		return types.Account{}, invalidField("password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.Account{}, fmt.Errorf("hashing password: %w", err)
	}

	var account types.Account
	err = store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		repo := store.NewAccountRepository(tx)

		if _, err := repo.GetByUsername(ctx, username); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		created, err := repo.Create(ctx, types.Account{
			Username:     username,
			PasswordHash: string(hashed),
		})
		if err != nil {
			if store.IsUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		account = created
		return nil
	})
	if err != nil {
		return types.Account{}, err
	}
	return account, nil
}

// Authenticate verifies a username/password pair. Unknown usernames
// and wrong passwords fail the same way.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (types.Account, error) {
	repo := store.NewAccountRepository(s.db)

	account, err := repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Account{}, ErrInvalidCredentials
		}
		return types.Account{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return types.Account{}, ErrInvalidCredentials
	}
	return account, nil
}
