package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tareas-web/appserver/types"
)

// AccountRepository handles persistence for accounts.
type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int) (types.Account, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM accounts
		WHERE id = $1`
	var account types.Account
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Account{}, ErrNotFound
		}
		return types.Account{}, err
	}
	return account, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (types.Account, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM accounts
		WHERE username = $1`
	var account types.Account
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Account{}, ErrNotFound
		}
		return types.Account{}, err
	}
	return account, nil
}

func (r *AccountRepository) Create(ctx context.Context, account types.Account) (types.Account, error) {
	account.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO accounts (username, password_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.Username,
		account.PasswordHash,
		account.CreatedAt,
	).Scan(&account.ID); err != nil {
		return types.Account{}, err
	}
	return account, nil
}

// CountAll reports the total number of accounts.
func (r *AccountRepository) CountAll(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM accounts`
	var total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
