// Package workflow decides whether a requested action is legal for a
// request's current status, the actor's role, and ownership, and computes
// the resulting status. It never persists anything; callers apply the
// outcome with a conditional write guarded by the expected predecessor
// status.
package workflow

import (
	"fmt"

	"github.com/noah-isme/uni-request-api/internal/models"
	appErrors "github.com/noah-isme/uni-request-api/pkg/errors"
)

// Action is a caller-requested operation on a request.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
)

// Step is one review stage, assigned to exactly one role. From is the exact
// predecessor status; no skipping and no re-deciding a decided step.
type Step struct {
	Role     models.UserRole
	From     models.RequestStatus
	Approved models.RequestStatus
	Rejected models.RequestStatus
}

// Definition is the state machine for one request type.
type Definition struct {
	Type      models.RequestType
	Draft     models.RequestStatus
	Submitted models.RequestStatus
	Steps     []Step
	// Cancellable lists the in-flight states the owner may withdraw from.
	Cancellable []models.RequestStatus
	// Renderable lists the states a document may be rendered at.
	Renderable []models.RequestStatus
}

// TransitionInput carries everything Attempt needs to decide.
type TransitionInput struct {
	Current models.RequestStatus
	Role    models.UserRole
	Action  Action
	IsOwner bool
	Comment string
}

// Transition is the computed outcome of a legal action.
type Transition struct {
	// Next is the status to persist. Unset when Removes is true.
	Next models.RequestStatus
	// Step is the review step that decided, for approve/reject.
	Step *Step
	// Removes indicates the stored entity is deleted (cancel, delete).
	Removes bool
	// Comment is the reviewer note to store alongside a decision.
	Comment string
}

// Attempt validates the action against the machine and returns the
// transition to apply. Ownership violations yield FORBIDDEN regardless of
// status; everything else illegal yields INVALID_STATE.
func (d Definition) Attempt(in TransitionInput) (Transition, error) {
	if !d.Valid(in.Current) {
		return Transition{}, appErrors.Clone(appErrors.ErrInvalidState,
			fmt.Sprintf("unknown status %q for %s", in.Current, d.Type))
	}

	switch in.Action {
	case ActionEdit, ActionDelete:
		if !in.IsOwner {
			return Transition{}, appErrors.Clone(appErrors.ErrForbidden, "only the owner may modify this request")
		}
		if in.Current != d.Draft {
			return Transition{}, appErrors.Clone(appErrors.ErrInvalidState, "request is no longer a draft")
		}
		return Transition{Next: d.Draft, Removes: in.Action == ActionDelete}, nil

	case ActionSubmit:
		if !in.IsOwner {
			return Transition{}, appErrors.Clone(appErrors.ErrForbidden, "only the owner may submit this request")
		}
		if in.Current != d.Draft {
			return Transition{}, appErrors.Clone(appErrors.ErrInvalidState, "only drafts can be submitted")
		}
		return Transition{Next: d.Submitted}, nil

	case ActionCancel:
		if !in.IsOwner {
			return Transition{}, appErrors.Clone(appErrors.ErrForbidden, "only the owner may cancel this request")
		}
		if !contains(d.Cancellable, in.Current) {
			return Transition{}, appErrors.Clone(appErrors.ErrInvalidState, "request can no longer be cancelled")
		}
		return Transition{Removes: true}, nil

	case ActionApprove, ActionReject:
		step := d.stepForRole(in.Role)
		if step == nil {
			return Transition{}, appErrors.Clone(appErrors.ErrForbidden,
				fmt.Sprintf("role %s has no review step for %s", in.Role, d.Type))
		}
		if in.Current != step.From {
			return Transition{}, appErrors.Clone(appErrors.ErrInvalidState,
				fmt.Sprintf("request is not awaiting %s review", in.Role))
		}
		next := step.Approved
		if in.Action == ActionReject {
			next = step.Rejected
		}
		return Transition{Next: next, Step: step, Comment: in.Comment}, nil
	}

	return Transition{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported action %q", in.Action))
}

// Valid reports whether the status belongs to this machine.
func (d Definition) Valid(s models.RequestStatus) bool {
	if s == d.Draft || s == d.Submitted {
		return true
	}
	for _, step := range d.Steps {
		if s == step.From || s == step.Approved || s == step.Rejected {
			return true
		}
	}
	return false
}

// PendingFor returns the queue status a reviewer role works from.
func (d Definition) PendingFor(role models.UserRole) (models.RequestStatus, bool) {
	step := d.stepForRole(role)
	if step == nil {
		return "", false
	}
	return step.From, true
}

// ReviewerRoles lists the roles with a step in this machine, in order.
func (d Definition) ReviewerRoles() []models.UserRole {
	roles := make([]models.UserRole, 0, len(d.Steps))
	for _, step := range d.Steps {
		roles = append(roles, step.Role)
	}
	return roles
}

// CanRender reports whether a document may be rendered at this status.
func (d Definition) CanRender(s models.RequestStatus) bool {
	return contains(d.Renderable, s)
}

// IsTerminal reports whether the status has no outgoing transitions.
func (d Definition) IsTerminal(s models.RequestStatus) bool {
	if s == d.Draft || s == d.Submitted {
		return s == d.Submitted && len(d.Steps) == 0
	}
	for _, step := range d.Steps {
		if s == step.From {
			return false
		}
	}
	return d.Valid(s)
}

func (d Definition) stepForRole(role models.UserRole) *Step {
	for i := range d.Steps {
		if d.Steps[i].Role == role {
			return &d.Steps[i]
		}
	}
	return nil
}

func contains(set []models.RequestStatus, s models.RequestStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
