package inquiry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorhub/internal/inquiry"
	apperrors "tutorhub/internal/shared/errors"
	"tutorhub/internal/store/adapter/memory"
)

func newService(t *testing.T) *inquiry.Service {
	t.Helper()
	return inquiry.NewService(memory.New(nil, nil), nil)
}

func TestCreateStampsNew(t *testing.T) {
	svc := newService(t)

	created, err := svc.Create(context.Background(), &inquiry.Inquiry{
		Name:    "Phạm Hoa",
		Email:   "hoa@example.com",
		Message: "Xin tư vấn lớp Toán 10",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, inquiry.StatusNew, created.Status, "creation forces status new")
}

func TestCreateRequiresName(t *testing.T) {
	svc := newService(t)

	_, err := svc.Create(context.Background(), &inquiry.Inquiry{Message: "hi"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestReply(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &inquiry.Inquiry{Name: "Hoa", Message: "?"})
	require.NoError(t, err)

	replied, err := svc.Reply(ctx, created.ID, "Đã gọi lại", "staff-1")
	require.NoError(t, err)
	assert.Equal(t, inquiry.StatusReplied, replied.Status)
	assert.Equal(t, "staff-1", replied.RepliedBy)
	assert.Equal(t, "Đã gọi lại", replied.ReplyNote)
	require.NotNil(t, replied.RepliedAt)

	_, err = svc.Reply(ctx, created.ID, "note", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Reply(ctx, "missing", "note", "staff-1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestArchive(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &inquiry.Inquiry{Name: "Hoa", Message: "?"})
	require.NoError(t, err)

	archived, err := svc.Archive(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, inquiry.StatusArchived, archived.Status)
}

func TestListByStatus(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, &inquiry.Inquiry{Name: "A", Message: "?"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &inquiry.Inquiry{Name: "B", Message: "?"})
	require.NoError(t, err)

	_, err = svc.Reply(ctx, a.ID, "ok", "staff-1")
	require.NoError(t, err)

	page, err := svc.List(ctx, inquiry.StatusNew, 0, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "B", page.Items[0].Name)

	page, err = svc.List(ctx, "", 0, nil)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}
