// Package keyflowrepo stores the server-side half of an in-flight
// phone-verification key exchange: the private key is never sent to
// the client, so it has to be held between the key handout and the
// ciphertext submission.
package keyflowrepo

import "time"

type KeyFlowState struct {
	MemberID   int64
	PrivateKey string // base64 DER
	CreatedAt  time.Time
}

type Repo interface {
	Upsert(flowID string, state *KeyFlowState) error
	Get(flowID string) (*KeyFlowState, error)
	Delete(flowID string) error
}
