package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"waterline/internal/utils"
	"waterline/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountTableName = "waterline.accounts"

var accountColumns = utils.StructTagValues(types.Account{})

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Account(ctx context.Context, accountID string) (*types.Account, error) {
	return r.one(ctx, sq.Eq{"id": accountID})
}

func (r *AccountRepository) AccountByIDNumber(ctx context.Context, idNumber string) (*types.Account, error) {
	return r.one(ctx, sq.Eq{"id_number": idNumber})
}

func (r *AccountRepository) AccountByResetToken(ctx context.Context, token string) (*types.Account, error) {
	if token == "" {
		return nil, types.ErrAccountNotFound
	}
	return r.one(ctx, sq.Eq{"password_reset_token": token})
}

func (r *AccountRepository) one(ctx context.Context, pred sq.Eq) (*types.Account, error) {
	query, args, err := psql().
		Select(accountColumns...).
		From(accountTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account query: %w", err)
	}

	var account types.Account
	err = pgxscan.Get(ctx, r.pool, &account, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	return &account, nil
}

// IDNumberExists reports whether an account already holds the ID number.
// This is an advisory pre-check; the unique constraint remains the
// race-safety guarantee.
func (r *AccountRepository) IDNumberExists(ctx context.Context, idNumber string) (bool, error) {
	return r.exists(ctx, sq.Eq{"id_number": idNumber})
}

// EmailExists reports whether an account other than excludeAccountID
// already holds the email. Pass an empty excludeAccountID for
// registration checks.
func (r *AccountRepository) EmailExists(ctx context.Context, email, excludeAccountID string) (bool, error) {
	pred := sq.And{sq.Eq{"email": email}}
	if excludeAccountID != "" {
		pred = append(pred, sq.NotEq{"id": excludeAccountID})
	}
	return r.exists(ctx, pred)
}

func (r *AccountRepository) exists(ctx context.Context, pred sq.Sqlizer) (bool, error) {
	query, args, err := psql().
		Select("1").
		From(accountTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate account exists query: %w", err)
	}

	var one int
	err = pgxscan.Get(ctx, r.pool, &one, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}

	return true, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *types.Account) error {
	now := time.Now()
	if account.ID == "" {
		account.ID = utils.NanoID()
	}
	account.CreatedAt = now
	account.UpdatedAt = now

	query, args, err := psql().
		Insert(accountTableName).
		SetMap(utils.StructToMap(account)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create account query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		switch constraint := uniqueViolation(err); {
		case strings.Contains(constraint, "id_number"):
			return types.ErrDuplicateIDNumber
		case strings.Contains(constraint, "email"):
			return types.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// UpdateProfile persists the self-service editable fields. The ID number
// is deliberately not part of the update set.
func (r *AccountRepository) UpdateProfile(ctx context.Context, accountID string, account *types.Account) error {
	query, args, err := psql().
		Update(accountTableName).
		Set("first_name", account.FirstName).
		Set("last_name", account.LastName).
		Set("phone_number", account.PhoneNumber).
		Set("address", account.Address).
		Set("email", account.Email).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update profile query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if strings.Contains(uniqueViolation(err), "email") {
			return types.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update account profile: %w", err)
	}

	return nil
}

func (r *AccountRepository) SetResetToken(ctx context.Context, accountID, token string) error {
	query, args, err := psql().
		Update(accountTableName).
		Set("password_reset_token", nullable(token)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set reset token query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to set reset token")
}

// ResetPassword stores the new password hash and clears the reset token in
// one statement, keeping the token single-use.
func (r *AccountRepository) ResetPassword(ctx context.Context, accountID, passwordHash string) error {
	query, args, err := psql().
		Update(accountTableName).
		Set("password_hash", passwordHash).
		Set("password_reset_token", nil).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate reset password query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to reset password")
}

func (r *AccountRepository) SetActive(ctx context.Context, accountID string, active bool) error {
	return r.setFlag(ctx, accountID, "is_active", active)
}

func (r *AccountRepository) SetStaff(ctx context.Context, accountID string, staff bool) error {
	return r.setFlag(ctx, accountID, "is_staff", staff)
}

func (r *AccountRepository) setFlag(ctx context.Context, accountID, column string, value bool) error {
	query, args, err := psql().
		Update(accountTableName).
		Set(column, value).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate account flag query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update account flag")
}

// StaffAccounts lists active staff, the assignable set for incidents.
func (r *AccountRepository) StaffAccounts(ctx context.Context) ([]*types.Account, error) {
	query, args, err := psql().
		Select(accountColumns...).
		From(accountTableName).
		Where(sq.Eq{"is_staff": true, "is_active": true}).
		OrderBy("id_number").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate staff accounts query: %w", err)
	}

	accounts := make([]*types.Account, 0)
	if err := pgxscan.Select(ctx, r.pool, &accounts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch staff accounts: %w", err)
	}

	return accounts, nil
}

// Accounts lists accounts for the administrative surface.
func (r *AccountRepository) Accounts(ctx context.Context, filter types.AccountFilter) ([]*types.Account, error) {
	builder := psql().
		Select(accountColumns...).
		From(accountTableName).
		OrderBy("id_number")

	if filter.Staff != nil {
		builder = builder.Where(sq.Eq{"is_staff": *filter.Staff})
	}
	if filter.Active != nil {
		builder = builder.Where(sq.Eq{"is_active": *filter.Active})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"id_number": like},
			sq.ILike{"first_name": like},
			sq.ILike{"last_name": like},
			sq.ILike{"email": like},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate accounts query: %w", err)
	}

	accounts := make([]*types.Account, 0)
	if err := pgxscan.Select(ctx, r.pool, &accounts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	return accounts, nil
}
