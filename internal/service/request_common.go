package service

import (
	"database/sql"
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/uni-request-api/internal/models"
	appErrors "github.com/noah-isme/uni-request-api/pkg/errors"
)

// newFormValidator builds the validator used against form structs. Field
// names in violation reports come from the json tags so they match the
// wire format.
func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// invalidFormError flattens validator violations into one VALIDATION
// error naming every offending field.
func invalidFormError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		names := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			names = append(names, fe.Field())
		}
		sort.Strings(names)
		return appErrors.Clone(appErrors.ErrValidation, "missing or invalid fields: "+strings.Join(names, ", "))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid form payload")
}

// conflictOnNoRows translates a zero-row conditional write into a
// conflict: the row moved to another status between load and write.
func conflictOnNoRows(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrConflict, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func notFoundOnNoRows(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// canView gates reads: owners always, admins always, reviewers once the
// request has left draft.
func canView(actor *models.JWTClaims, ownerID string, status models.RequestStatus, draft models.RequestStatus, reviewers []models.UserRole) bool {
	if actor.UserID == ownerID || actor.Role == models.RoleAdmin {
		return true
	}
	if status == draft {
		return false
	}
	for _, role := range reviewers {
		if actor.Role == role {
			return true
		}
	}
	return false
}

func commentValue(comment string) *string {
	if comment == "" {
		return nil
	}
	return &comment
}

func joinDate(day, month, year string) string {
	return joinNonEmpty(" ", day, month, year)
}

func joinSchedule(day, tm, room string) string {
	return joinNonEmpty(" ", day, tm, room)
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
