package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-request-api/internal/models"
	appErrors "github.com/noah-isme/uni-request-api/pkg/errors"
)

type subjectRepoMock struct {
	byID   map[string]*models.Subject
	byCode map[string]*models.Subject
}

func newSubjectRepoMock() *subjectRepoMock {
	return &subjectRepoMock{
		byID:   make(map[string]*models.Subject),
		byCode: make(map[string]*models.Subject),
	}
}

func (m *subjectRepoMock) Create(_ context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = "sub-1"
	}
	m.byID[subject.ID] = subject
	m.byCode[subject.SubjectCode] = subject
	return nil
}

func (m *subjectRepoMock) GetByID(_ context.Context, id string) (*models.Subject, error) {
	subject, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func (m *subjectRepoMock) GetByCode(_ context.Context, code string) (*models.Subject, error) {
	subject, ok := m.byCode[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func (m *subjectRepoMock) List(_ context.Context, _ models.SubjectFilter) ([]models.Subject, int, error) {
	out := make([]models.Subject, 0, len(m.byID))
	for _, subject := range m.byID {
		out = append(out, *subject)
	}
	return out, len(out), nil
}

func (m *subjectRepoMock) Update(_ context.Context, subject *models.Subject) error {
	if _, ok := m.byID[subject.ID]; !ok {
		return sql.ErrNoRows
	}
	m.byID[subject.ID] = subject
	return nil
}

func (m *subjectRepoMock) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

func TestCreateSubjectRequiresCodeAndName(t *testing.T) {
	svc := NewSubjectService(newSubjectRepoMock(), nil, nil)

	_, err := svc.Create(context.Background(), &models.Subject{NameEN: "Calculus"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestCreateSubjectDuplicateCode(t *testing.T) {
	repo := newSubjectRepoMock()
	svc := NewSubjectService(repo, nil, nil)

	_, err := svc.Create(context.Background(), &models.Subject{SubjectCode: "MATH101", NameEN: "Calculus", Credits: 3})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &models.Subject{SubjectCode: "MATH101", NameEN: "Calculus II", Credits: 3})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestCreateSubjectNegativeCredits(t *testing.T) {
	svc := NewSubjectService(newSubjectRepoMock(), nil, nil)

	_, err := svc.Create(context.Background(), &models.Subject{SubjectCode: "MATH101", NameEN: "Calculus", Credits: -1})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestUpdateSubjectValidatesFields(t *testing.T) {
	repo := newSubjectRepoMock()
	svc := NewSubjectService(repo, nil, nil)

	created, err := svc.Create(context.Background(), &models.Subject{SubjectCode: "MATH101", NameEN: "Calculus", Credits: 3})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), &models.Subject{ID: created.ID, SubjectCode: "MATH101", NameEN: "Calculus", Credits: -2})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = svc.Update(context.Background(), &models.Subject{ID: created.ID, SubjectCode: "MATH101", NameEN: "", Credits: 3})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestGetSubjectNotFound(t *testing.T) {
	svc := NewSubjectService(newSubjectRepoMock(), nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestDeleteSubject(t *testing.T) {
	repo := newSubjectRepoMock()
	svc := NewSubjectService(repo, nil, nil)

	created, err := svc.Create(context.Background(), &models.Subject{SubjectCode: "ENG101", NameEN: "English", Credits: 3})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	err = svc.Delete(context.Background(), created.ID)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
