// Package approval implements the pending→approved workflow shared by
// assignment records and salary deductions. The gate is pure: callers load
// the record, pass its approval state plus the acting user, and persist the
// returned state.
package approval

import (
	"time"

	"armory-backend/internal/constants"
	"armory-backend/internal/pkg/apperr"

	"github.com/google/uuid"
)

// State is the approval sub-record of an approvable record.
type State struct {
	IsApproved      bool
	ApprovedBy      *uuid.UUID
	ApprovalDate    *time.Time
	ApprovalComment *string
}

// ApproveParams identify the actor and the capability the resource type
// demands. The role always travels with the call; it is never read from
// ambient state.
type ApproveParams struct {
	Actor      uuid.UUID
	ActorRole  string
	Permission string
	Comment    string
	Now        time.Time
}

// Approve performs the pending→approved transition. The capability check runs
// first so an unauthorized caller learns nothing about the record's state.
// Approval is a one-way ratchet: an already approved record cannot be
// re-approved without a fresh edit cycle, and the stamp fields are immutable
// once set.
func Approve(s State, p ApproveParams) (State, error) {
	if !constants.AllowedRole(p.Permission, p.ActorRole) {
		return s, apperr.Authorization("actor lacks the approval capability for this resource")
	}
	if s.IsApproved {
		return s, apperr.Validation("approval", "record is already approved")
	}
	if p.Comment == "" {
		return s, apperr.Validation("approval_comment", "approval must be justified with a comment")
	}
	actor := p.Actor
	date := p.Now
	comment := p.Comment
	return State{
		IsApproved:      true,
		ApprovedBy:      &actor,
		ApprovalDate:    &date,
		ApprovalComment: &comment,
	}, nil
}

// EditableBy reports whether an actor with the given role may mutate ordinary
// fields of the record. Pending records are open to anyone holding the edit
// permission; approved records are frozen for everyone below admin. Approval
// stamp fields are never ordinarily editable regardless of role.
func EditableBy(s State, role string) bool {
	if !s.IsApproved {
		return true
	}
	return role == constants.Admin || role == constants.Superadmin
}

// CheckState verifies the structural invariant: an approved record must carry
// approver, date and a non-empty justification. Violations indicate corrupted
// data, not bad input.
func CheckState(s State) error {
	if !s.IsApproved {
		return nil
	}
	if s.ApprovedBy == nil || s.ApprovalDate == nil {
		return apperr.Invariant("approved record is missing approver or approval date")
	}
	if s.ApprovalComment == nil || *s.ApprovalComment == "" {
		return apperr.Invariant("approved record is missing its approval comment")
	}
	return nil
}
