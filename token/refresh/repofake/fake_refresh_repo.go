package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/studyhub/studyhub-auth/internal/autherrors"
	"github.com/studyhub/studyhub-auth/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshRepo)(nil)

// FakeRefreshRepo is an in-memory refresh.Repo for tests and local
// runs. The mutex makes Replace atomic, matching the contract the
// postgres implementation satisfies with an upsert.
type FakeRefreshRepo struct {
	byMember map[int64]*refresh.Record
	byToken  map[string]int64
	nowFunc  func() time.Time
	lock     sync.RWMutex
}

func NewFakeRefreshRepo() *FakeRefreshRepo {
	return &FakeRefreshRepo{
		byMember: make(map[int64]*refresh.Record),
		byToken:  make(map[string]int64),
		nowFunc:  time.Now,
	}
}

func (r *FakeRefreshRepo) FindByToken(_ context.Context, token string) (*refresh.Record, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	memberID, ok := r.byToken[token]
	if !ok {
		return nil, autherrors.ErrRefreshTokenNotFound
	}
	record := *r.byMember[memberID]
	return &record, nil
}

func (r *FakeRefreshRepo) HasActive(_ context.Context, memberID int64) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	_, ok := r.byMember[memberID]
	return ok, nil
}

func (r *FakeRefreshRepo) Replace(_ context.Context, memberID int64, newToken string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if existing, ok := r.byMember[memberID]; ok {
		delete(r.byToken, existing.Token)
	}
	record := &refresh.Record{
		MemberID:  memberID,
		Token:     newToken,
		CreatedAt: r.nowFunc(),
	}
	r.byMember[memberID] = record
	r.byToken[newToken] = memberID
	return nil
}

func (r *FakeRefreshRepo) Delete(_ context.Context, record *refresh.Record) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.byMember[record.MemberID]
	if !ok {
		return autherrors.ErrRefreshTokenNotFound
	}
	delete(r.byToken, stored.Token)
	delete(r.byMember, record.MemberID)
	return nil
}
