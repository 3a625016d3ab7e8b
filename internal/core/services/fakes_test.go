package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[user.Username]; ok {
		return domain.ErrDuplicateUsername
	}
	u := *user
	r.users[user.Username] = &u
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) SetAdmin(_ context.Context, username string, admin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsAdmin = admin
	return nil
}

// fakeHasher records how many comparisons ran.
type fakeHasher struct {
	mu       sync.Mutex
	compares int
}

var errFakeMismatch = errors.New("mismatch")

func (h *fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (h *fakeHasher) Compare(password, encoded string) error {
	h.mu.Lock()
	h.compares++
	h.mu.Unlock()
	if encoded != "hashed:"+password {
		return errFakeMismatch
	}
	return nil
}

type fakeTokens struct {
	ttl     time.Duration
	expired map[string]bool
}

func (f *fakeTokens) Issue(userID uuid.UUID, username string) (*domain.Token, error) {
	return &domain.Token{
		AccessToken: "tok|" + userID.String() + "|" + uuid.NewString(),
		TokenType:   "bearer",
		ExpiresIn:   int64(f.ttl / time.Second),
		ExpiresAt:   time.Now().Add(f.ttl),
	}, nil
}

func (f *fakeTokens) Verify(raw string) (*domain.TokenClaims, error) {
	if f.expired[raw] {
		return nil, domain.ErrTokenExpired
	}
	parts := strings.Split(raw, "|")
	if len(parts) != 3 || parts[0] != "tok" {
		return nil, domain.ErrTokenInvalid
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.TokenClaims{ID: parts[2], UserID: id, ExpiresAt: time.Now().Add(f.ttl)}, nil
}

type fakeDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func (d *fakeDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = map[string]time.Time{}
	}
	d.revoked[tokenID] = until
	return nil
}

func (d *fakeDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[tokenID]
	return ok, nil
}

type fakePollRepo struct {
	saved     []*domain.Poll
	listCalls [][2]int
	listed    []*domain.Poll
	err       error
}

func (r *fakePollRepo) Save(_ context.Context, poll *domain.Poll) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, poll)
	return nil
}

func (r *fakePollRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Poll, error) {
	for _, p := range r.saved {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrPollNotFound
}

func (r *fakePollRepo) List(_ context.Context, limit, offset int) ([]*domain.Poll, error) {
	r.listCalls = append(r.listCalls, [2]int{limit, offset})
	return r.listed, r.err
}

func (r *fakePollRepo) Delete(_ context.Context, pollID, requesterID uuid.UUID) error {
	return r.err
}

type fakeVoteRepo struct {
	upserted []*domain.Vote
	err      error
}

func (r *fakeVoteRepo) Upsert(_ context.Context, vote *domain.Vote) error {
	if r.err != nil {
		return r.err
	}
	vote.CreatedAt = time.Now()
	vote.UpdatedAt = vote.CreatedAt
	r.upserted = append(r.upserted, vote)
	return nil
}

func (r *fakeVoteRepo) Delete(_ context.Context, pollID, userID uuid.UUID) error {
	return r.err
}

func (r *fakeVoteRepo) GetByUser(_ context.Context, pollID, userID uuid.UUID) (*domain.Vote, error) {
	for _, v := range r.upserted {
		if v.PollID == pollID && v.UserID == userID {
			return v, nil
		}
	}
	return nil, domain.ErrVoteNotFound
}

type fakeResultRepo struct {
	results *domain.PollResults
	err     error
}

func (r *fakeResultRepo) GetResults(_ context.Context, pollID uuid.UUID) (*domain.PollResults, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.results, nil
}
