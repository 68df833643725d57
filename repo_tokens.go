package user

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tokens is the storage surface for single-use codes
type Tokens interface {
	repository.Repository[*Token]

	Issue(ctx context.Context, ttype TokenType, userID uuid.UUID, ttl time.Duration) (*Token, error)
	IssueTx(ctx context.Context, tx bun.IDB, ttype TokenType, userID uuid.UUID, ttl time.Duration) (*Token, error)
	FindByCode(ctx context.Context, code string, ttype TokenType, userID uuid.UUID) (*Token, error)
	FindByCodeTx(ctx context.Context, tx bun.IDB, code string, ttype TokenType, userID uuid.UUID) (*Token, error)
	Consume(ctx context.Context, token *Token) error
	ConsumeTx(ctx context.Context, tx bun.IDB, token *Token) error
	PurgeForUser(ctx context.Context, userID uuid.UUID) error
	PurgeForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
}

type tokens struct {
	repository.Repository[*Token]
	db  *bun.DB
	now func() time.Time
}

var (
	_ Tokens                        = (*tokens)(nil)
	_ repository.Repository[*Token] = (*tokens)(nil)
	_ TokenStore                    = (*tokens)(nil)
)

type TokensOption func(*tokens)

// WithTokensClock injects a custom clock (useful for tests)
func WithTokensClock(clock func() time.Time) TokensOption {
	return func(t *tokens) {
		if clock != nil {
			t.now = clock
		}
	}
}

func NewTokensRepository(db *bun.DB, opts ...TokensOption) Tokens {
	repo := repository.NewRepository[*Token](db, repository.ModelHandlers[*Token]{
		NewRecord: func() *Token { return &Token{} },
		GetID: func(t *Token) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Token, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "code"
		},
	})

	repoTokens := &tokens{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoTokens)
		}
	}

	return repoTokens
}

// Issue mints a new single-use code with a stored expiry
func (a *tokens) Issue(ctx context.Context, ttype TokenType, userID uuid.UUID, ttl time.Duration) (*Token, error) {
	return a.IssueTx(ctx, a.db, ttype, userID, ttl)
}

func (a *tokens) IssueTx(ctx context.Context, tx bun.IDB, ttype TokenType, userID uuid.UUID, ttl time.Duration) (*Token, error) {
	token := &Token{
		ID:        uuid.New(),
		Code:      RandomString(32),
		Type:      ttype,
		UserID:    userID,
		ExpiresAt: a.now().Add(ttl),
	}
	return a.Repository.CreateTx(ctx, tx, token)
}

func (a *tokens) FindByCode(ctx context.Context, code string, ttype TokenType, userID uuid.UUID) (*Token, error) {
	return a.FindByCodeTx(ctx, a.db, code, ttype, userID)
}

func (a *tokens) FindByCodeTx(ctx context.Context, tx bun.IDB, code string, ttype TokenType, userID uuid.UUID) (*Token, error) {
	record := &Token{}
	err := tx.NewSelect().Model(record).
		Where("?TableAlias.code = ?", code).
		Where("?TableAlias.type = ?", ttype).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"type":    ttype,
				"user_id": userID.String(),
			})
		}
		return nil, err
	}

	return record, nil
}

// Consume deletes the token so the code cannot be redeemed twice. Concurrent
// redemptions race on the delete; the loser comes back not-found.
func (a *tokens) Consume(ctx context.Context, token *Token) error {
	return a.ConsumeTx(ctx, a.db, token)
}

func (a *tokens) ConsumeTx(ctx context.Context, tx bun.IDB, token *Token) error {
	res, err := tx.NewDelete().Model(token).WherePK().Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{
			"id": token.ID.String(),
		})
	}

	return nil
}

// PurgeForUser invalidates every outstanding code owned by a user
func (a *tokens) PurgeForUser(ctx context.Context, userID uuid.UUID) error {
	return a.PurgeForUserTx(ctx, a.db, userID)
}

func (a *tokens) PurgeForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().Model((*Token)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	return err
}
