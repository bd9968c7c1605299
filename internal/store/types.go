package store

import (
	"time"

	"request-approval-backend/internal/model"
)

// RequestFilter narrows a request listing. Nil fields are ignored.
// Results are always ordered by creation time, newest first.
type RequestFilter struct {
	ID           *int64
	Status       *model.RequestStatus
	IsApproved   *bool
	CreatedAtGte *time.Time
	CreatedAtLte *time.Time
}

// RequestPatch carries the fields an admin may change on a request.
// Nil fields are left untouched. ClearApproval resets IsApproved to
// its pending (NULL) state.
type RequestPatch struct {
	Status        *model.RequestStatus
	IsApproved    *bool
	ClearApproval bool
	Reason        *string
}

// Empty reports whether the patch would change nothing.
func (p RequestPatch) Empty() bool {
	return p.Status == nil && p.IsApproved == nil && !p.ClearApproval && p.Reason == nil
}
