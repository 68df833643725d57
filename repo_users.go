package user

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the storage surface for user records
type Users interface {
	repository.Repository[*User]

	FindActiveByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindActiveByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	FindActiveByEmail(ctx context.Context, email string) (*User, error)
	FindActiveByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	FindByValidResetToken(ctx context.Context, token string, expire time.Duration) (*User, error)

	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)
	Save(ctx context.Context, record *User) (*User, error)
	SaveTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)

	ListUsers(ctx context.Context, params ListParams) ([]*User, int, error)
}

// ListParams wires query parameters through to the user listing; no business
// logic lives here.
type ListParams struct {
	Page     int
	PerPage  int
	Email    string
	Username string
	Status   UserStatus
	OrderBy  string
	Desc     bool
}

const defaultPerPage = 25

var listOrderColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"email":      "email",
	"username":   "username",
}

type users struct {
	repository.Repository[*User]
	db  *bun.DB
	now func() time.Time
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
	_ UserStore                    = (*users)(nil)
)

type UsersOption func(*users)

// WithUsersClock injects a custom clock (useful for tests)
func WithUsersClock(clock func() time.Time) UsersOption {
	return func(u *users) {
		if clock != nil {
			u.now = clock
		}
	}
}

func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	repoUsers := &users{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoUsers)
		}
	}

	return repoUsers
}

func (a *users) FindActiveByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.FindActiveByIDTx(ctx, a.db, id)
}

func (a *users) FindActiveByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	return a.findActiveOne(ctx, tx, "?TableAlias.id = ?", id, map[string]any{"id": id.String()})
}

func (a *users) FindActiveByEmail(ctx context.Context, email string) (*User, error) {
	return a.FindActiveByEmailTx(ctx, a.db, email)
}

func (a *users) FindActiveByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	email = strings.TrimSpace(email)
	return a.findActiveOne(ctx, tx, "?TableAlias.email = ?", email, map[string]any{"email": email})
}

// FindByValidResetToken validates the token's suffix-encoded expiry before
// touching storage. An expired, malformed, or unknown token all come back as
// the same not-found failure.
func (a *users) FindByValidResetToken(ctx context.Context, token string, expire time.Duration) (*User, error) {
	if !IsPasswordResetTokenValid(token, expire) {
		return nil, repository.NewRecordNotFound()
	}
	return a.findActiveOne(ctx, a.db, "?TableAlias.password_reset_token = ?", token, nil)
}

func (a *users) findActiveOne(ctx context.Context, tx bun.IDB, where string, value any, meta map[string]any) (*User, error) {
	record := &User{}
	err := tx.NewSelect().Model(record).
		Where(where, value).
		Where("?TableAlias.status = ?", StatusActive).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().WithMetadata(meta)
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	a.prepareDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

// Save persists an already-identified record, touching its updated timestamp
func (a *users) Save(ctx context.Context, record *User) (*User, error) {
	return a.SaveTx(ctx, a.db, record)
}

func (a *users) SaveTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	record.Touch(a.now())
	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(record.ID.String()))
}

// ListUsers is the paged finder; the embedded repository keeps its own
// criteria-based List.
func (a *users) ListUsers(ctx context.Context, params ListParams) ([]*User, int, error) {
	records := []*User{}

	q := a.db.NewSelect().Model(&records)

	if params.Email != "" {
		q.Where("?TableAlias.email = ?", strings.TrimSpace(params.Email))
	}
	if params.Username != "" {
		q.Where("?TableAlias.username = ?", strings.TrimSpace(params.Username))
	}
	if params.Status != "" {
		q.Where("?TableAlias.status = ?", params.Status)
	}

	order := "created_at"
	if col, ok := listOrderColumns[params.OrderBy]; ok {
		order = col
	}
	if params.Desc {
		order += " DESC"
	}
	q.Order(order)

	perPage := params.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	q.Limit(perPage)
	if params.Page > 1 {
		q.Offset((params.Page - 1) * perPage)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (a *users) prepareDefaults(record *User) {
	if record == nil {
		return
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.AuthKey == "" {
		record.GenerateAuthKey()
	}
}
