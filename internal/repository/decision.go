package repository

import (
	"time"

	"github.com/noah-isme/uni-request-api/internal/models"
)

// DecideParams groups the columns written by a reviewer decision. The
// update is conditional on Expected so concurrent decisions cannot both
// land; callers translate a zero-row result into a conflict.
type DecideParams struct {
	ID        string
	Expected  models.RequestStatus
	Next      models.RequestStatus
	Role      models.UserRole
	Comment   string
	DecidedAt time.Time
}
