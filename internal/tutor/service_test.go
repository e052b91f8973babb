package tutor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tutorhub/internal/shared/errors"
	"tutorhub/internal/store/adapter/memory"
	"tutorhub/internal/tutor"
)

func newService(t *testing.T) *tutor.Service {
	t.Helper()
	return tutor.NewService(memory.New(nil, nil), nil)
}

func TestCreateAndGet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &tutor.Tutor{
		Name:            "Trần Minh",
		Subjects:        []string{"math", "physics"},
		ExperienceYears: 8,
		IsActive:        true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Trần Minh", got.Name)
	assert.Equal(t, 8, got.ExperienceYears)
	assert.Equal(t, []string{"math", "physics"}, got.Subjects)
}

func TestCreateRequiresName(t *testing.T) {
	svc := newService(t)

	_, err := svc.Create(context.Background(), &tutor.Tutor{Name: "  "})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestListBySubject(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &tutor.Tutor{Name: "An", Subjects: []string{"math"}, IsActive: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &tutor.Tutor{Name: "Bình", Subjects: []string{"english"}, IsActive: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &tutor.Tutor{Name: "Chi", Subjects: []string{"math"}, IsActive: false})
	require.NoError(t, err)

	page, err := svc.List(ctx, "math", false, 0, nil)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = svc.List(ctx, "math", true, 0, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "An", page.Items[0].Name)

	page, err = svc.List(ctx, "", false, 0, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "An", page.Items[0].Name, "listing sorts by name")
}

func TestToggleActive(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &tutor.Tutor{Name: "An", IsActive: true})
	require.NoError(t, err)

	toggled, err := svc.ToggleActive(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	_, err = svc.ToggleActive(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &tutor.Tutor{Name: "An"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, map[string]interface{}{"bio": "10 năm kinh nghiệm"})
	require.NoError(t, err)
	assert.Equal(t, "10 năm kinh nghiệm", updated.Bio)

	_, err = svc.Update(ctx, created.ID, nil)
	require.Error(t, err, "empty update is rejected")

	require.NoError(t, svc.Delete(ctx, created.ID))
	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
