package payloads

import "github.com/google/uuid"

// EnrollmentCommittedEvent is published after a cart commitment succeeds.
// EnrollmentIDs covers both newly inserted and upgraded rows.
type EnrollmentCommittedEvent struct {
	CartID        uuid.UUID   `json:"cartId"`
	AccountID     uuid.UUID   `json:"accountId"`
	EnrollmentIDs []uuid.UUID `json:"enrollmentIds"`
	UpgradedCount int         `json:"upgradedCount"`
	InsertedCount int         `json:"insertedCount"`
}
