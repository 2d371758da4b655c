package repofake

import (
	"context"
	"sync"
	"time"

	"github.com/studyhub/studyhub-auth/internal/autherrors"
	"github.com/studyhub/studyhub-auth/members"
)

var _ members.Repo = (*FakeMemberRepo)(nil)

type FakeMemberRepo struct {
	byID     map[int64]*members.Member
	emailIDs map[string]int64
	oauthIDs map[string]int64
	nextID   int64
	lock     sync.RWMutex
}

func NewFakeMemberRepo() *FakeMemberRepo {
	return &FakeMemberRepo{
		byID:     make(map[int64]*members.Member),
		emailIDs: make(map[string]int64),
		oauthIDs: make(map[string]int64),
		nextID:   1,
	}
}

func (mr *FakeMemberRepo) Create(_ context.Context, member *members.Member) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	if member.ID == 0 {
		member.ID = mr.nextID
		mr.nextID++
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	mr.byID[member.ID] = member
	mr.emailIDs[member.Email] = member.ID
	if member.OAuthSubject != "" {
		mr.oauthIDs[member.OAuthSubject] = member.ID
	}
	return nil
}

func (mr *FakeMemberRepo) GetByID(_ context.Context, id int64) (*members.Member, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	member, ok := mr.byID[id]
	if !ok {
		return nil, autherrors.ErrMemberNotFound
	}
	return member, nil
}

func (mr *FakeMemberRepo) GetByEmail(_ context.Context, email string) (*members.Member, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	id, ok := mr.emailIDs[email]
	if !ok {
		return nil, autherrors.ErrMemberNotFound
	}
	return mr.byID[id], nil
}

func (mr *FakeMemberRepo) GetByOAuthSubject(_ context.Context, subject string) (*members.Member, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	id, ok := mr.oauthIDs[subject]
	if !ok {
		return nil, autherrors.ErrMemberNotFound
	}
	return mr.byID[id], nil
}

func (mr *FakeMemberRepo) SetPhoneNumber(_ context.Context, id int64, phoneNumber string) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	member, ok := mr.byID[id]
	if !ok {
		return autherrors.ErrMemberNotFound
	}
	member.PhoneNumber = phoneNumber
	member.PhoneVerified = true
	return nil
}
