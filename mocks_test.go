package user_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	user "github.com/userkit/go-user"
)

// memUserStore is an in-memory user.UserStore
type memUserStore struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*user.User
	createErr error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{records: map[uuid.UUID]*user.User{}}
}

func (s *memUserStore) FindActiveByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.records[id]; ok && record.IsActive() {
		return record, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memUserStore) FindActiveByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.TrimSpace(email)
	for _, record := range s.records {
		if record.Email == email && record.IsActive() {
			return record, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memUserStore) FindByValidResetToken(ctx context.Context, token string, expire time.Duration) (*user.User, error) {
	if !user.IsPasswordResetTokenValid(token, expire) {
		return nil, repository.NewRecordNotFound()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.PasswordResetToken == token && record.IsActive() {
			return record, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memUserStore) Create(ctx context.Context, record *user.User, criteria ...repository.InsertCriteria) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return nil, s.createErr
	}

	record.EnsureStatus()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.AuthKey == "" {
		record.GenerateAuthKey()
	}

	s.records[record.ID] = record
	return record, nil
}

func (s *memUserStore) Save(ctx context.Context, record *user.User) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; !ok {
		return nil, repository.NewRecordNotFound()
	}

	s.records[record.ID] = record
	return record, nil
}

func (s *memUserStore) ListUsers(ctx context.Context, params user.ListParams) ([]*user.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*user.User{}
	for _, record := range s.records {
		if params.Email != "" && record.Email != params.Email {
			continue
		}
		if params.Status != "" && record.Status != params.Status {
			continue
		}
		out = append(out, record)
	}
	return out, len(out), nil
}

// memTokenStore is an in-memory user.TokenStore
type memTokenStore struct {
	mu      sync.Mutex
	seq     int
	records map[string]*user.Token
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{records: map[string]*user.Token{}}
}

func (s *memTokenStore) Issue(ctx context.Context, ttype user.TokenType, userID uuid.UUID, ttl time.Duration) (*user.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	token := &user.Token{
		ID:        uuid.New(),
		Code:      fmt.Sprintf("code-%d", s.seq),
		Type:      ttype,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	s.records[token.Code] = token
	return token, nil
}

func (s *memTokenStore) FindByCode(ctx context.Context, code string, ttype user.TokenType, userID uuid.UUID) (*user.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.records[code]
	if !ok || token.Type != ttype || token.UserID != userID {
		return nil, repository.NewRecordNotFound()
	}
	return token, nil
}

func (s *memTokenStore) Consume(ctx context.Context, token *user.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[token.Code]; !ok {
		return repository.NewRecordNotFound()
	}
	delete(s.records, token.Code)
	return nil
}

func (s *memTokenStore) PurgeForUser(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for code, token := range s.records {
		if token.UserID == userID {
			delete(s.records, code)
		}
	}
	return nil
}

func (s *memTokenStore) outstanding(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, token := range s.records {
		if token.UserID == userID {
			n++
		}
	}
	return n
}

func (s *memTokenStore) expireAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, token := range s.records {
		token.ExpiresAt = time.Now().Add(-time.Minute)
	}
}

// recordingSessionHost captures Login calls
type recordingSessionHost struct {
	logins []user.Identity
	err    error
}

func (s *recordingSessionHost) Login(ctx context.Context, identity user.Identity) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.logins = append(s.logins, identity)
	return "session-token", nil
}

// recordingNotifier captures notification calls
type recordingNotifier struct {
	confirmations []*user.Token
	resets        []string
	err           error
}

func (n *recordingNotifier) SendConfirmation(ctx context.Context, u *user.User, token *user.Token) error {
	if n.err != nil {
		return n.err
	}
	n.confirmations = append(n.confirmations, token)
	return nil
}

func (n *recordingNotifier) SendPasswordReset(ctx context.Context, u *user.User, resetToken string) error {
	if n.err != nil {
		return n.err
	}
	n.resets = append(n.resets, resetToken)
	return nil
}
