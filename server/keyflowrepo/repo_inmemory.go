package keyflowrepo

import (
	"errors"
	"sync"
	"time"
)

const flowTTL = 10 * time.Minute

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface. Entries older than flowTTL are treated as gone; a key
// pair lives for one verification flow only.
type InMemoryRepo struct {
	mu     sync.RWMutex
	states map[string]*KeyFlowState
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]*KeyFlowState),
	}
}

func (r *InMemoryRepo) Upsert(flowID string, state *KeyFlowState) error {
	if flowID == "" {
		return errors.New("flow id cannot be empty")
	}
	if state == nil {
		return errors.New("state cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[flowID] = &KeyFlowState{
		MemberID:   state.MemberID,
		PrivateKey: state.PrivateKey,
		CreatedAt:  state.CreatedAt,
	}
	return nil
}

func (r *InMemoryRepo) Get(flowID string) (*KeyFlowState, error) {
	if flowID == "" {
		return nil, errors.New("flow id cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.states[flowID]
	if !exists || time.Since(state.CreatedAt) > flowTTL {
		return nil, errors.New("flow not found")
	}
	return &KeyFlowState{
		MemberID:   state.MemberID,
		PrivateKey: state.PrivateKey,
		CreatedAt:  state.CreatedAt,
	}, nil
}

func (r *InMemoryRepo) Delete(flowID string) error {
	if flowID == "" {
		return errors.New("flow id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, flowID)
	return nil
}
