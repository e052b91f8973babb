package registration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorhub/internal/catalog"
	"tutorhub/internal/registration"
	apperrors "tutorhub/internal/shared/errors"
	"tutorhub/internal/store/adapter/memory"
	"tutorhub/internal/store/domain/repository"
)

type fixture struct {
	store   repository.DocumentStore
	classes *catalog.Service
	regs    *registration.Service
}

func newFixture(t *testing.T, opts ...registration.Option) *fixture {
	t.Helper()
	store := memory.New(nil, nil)
	classes := catalog.NewClassService(store, nil)
	return &fixture{
		store:   store,
		classes: classes,
		regs:    registration.NewService(store, classes, nil, opts...),
	}
}

func (f *fixture) createClass(t *testing.T, title string, price float64, active bool) *catalog.Class {
	t.Helper()
	class, err := f.classes.Create(context.Background(), &catalog.Class{
		Title:    title,
		Price:    price,
		IsActive: active,
	})
	require.NoError(t, err)
	return class
}

func (f *fixture) register(t *testing.T, classID, student string) *registration.Registration {
	t.Helper()
	reg, err := f.regs.Create(context.Background(), registration.CreateInput{
		ClassID:     classID,
		StudentName: student,
	})
	require.NoError(t, err)
	return reg
}

func TestCreateSnapshotsClass(t *testing.T) {
	f := newFixture(t)
	class := f.createClass(t, "Toán 10", 500000, true)

	reg, err := f.regs.Create(context.Background(), registration.CreateInput{
		ClassID:      class.ID,
		StudentName:  "Nguyễn Văn An",
		StudentPhone: "0901234567",
		ParentName:   "Nguyễn Văn Bình",
	})
	require.NoError(t, err)

	assert.Equal(t, registration.StatusPending, reg.Status)
	assert.Equal(t, class.ID, reg.ClassID)
	assert.Equal(t, "Toán 10", reg.ClassTitle, "class title is denormalized at creation")
	assert.Equal(t, 500000.0, reg.Payment.TotalAmount, "total amount snapshots the class price")
	assert.Equal(t, 0.0, reg.Payment.PaidAmount)
	assert.Equal(t, registration.PaymentPending, reg.Payment.Status)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.regs.Create(ctx, registration.CreateInput{StudentName: "An"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	class := f.createClass(t, "Toán 10", 500000, true)
	_, err = f.regs.Create(ctx, registration.CreateInput{ClassID: class.ID})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateRejectsMissingClass(t *testing.T) {
	f := newFixture(t)

	_, err := f.regs.Create(context.Background(), registration.CreateInput{
		ClassID:     "missing",
		StudentName: "An",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsDomain(err))
	assert.Equal(t, registration.MsgClassNotFound, err.Error())
}

func TestCreateRejectsInactiveClass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	class := f.createClass(t, "Toán 10", 500000, false)

	_, err := f.regs.Create(ctx, registration.CreateInput{
		ClassID:     class.ID,
		StudentName: "An",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsDomain(err))
	assert.Equal(t, registration.MsgClassInactive, err.Error())

	// The rejection happens before any write.
	n, err := f.regs.CountByStatus(ctx, registration.StatusPending)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	class := f.createClass(t, "Toán 10", 500000, true)
	reg := f.register(t, class.ID, "An")

	approved, err := f.regs.Approve(ctx, reg.ID, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, registration.StatusApproved, approved.Status)
	assert.Equal(t, "staff-1", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	assert.False(t, approved.ApprovedAt.IsZero())

	_, err = f.regs.Approve(ctx, reg.ID, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.regs.Approve(ctx, "missing", "staff-1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRejectOverwritesPriorTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	class := f.createClass(t, "Toán 10", 500000, true)
	reg := f.register(t, class.ID, "An")

	_, err := f.regs.Approve(ctx, reg.ID, "staff-1")
	require.NoError(t, err)

	// A later reject simply overwrites; transitions carry no guards so
	// staff can correct mistakes.
	rejected, err := f.regs.Reject(ctx, reg.ID, "lớp đã đầy", "staff-2")
	require.NoError(t, err)
	assert.Equal(t, registration.StatusRejected, rejected.Status)
	assert.Equal(t, "staff-2", rejected.RejectedBy)
	assert.Equal(t, "lớp đã đầy", rejected.RejectionReason)
	assert.Equal(t, "staff-1", rejected.ApprovedBy, "prior transition stamps remain")
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	class := f.createClass(t, "Toán 10", 500000, true)
	reg := f.register(t, class.ID, "An")

	_, err := f.regs.Reject(context.Background(), reg.ID, "  ", "staff-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	class := f.createClass(t, "Toán 10", 500000, true)
	reg := f.register(t, class.ID, "An")

	cancelled, err := f.regs.Cancel(context.Background(), reg.ID, "parent")
	require.NoError(t, err)
	assert.Equal(t, registration.StatusCancelled, cancelled.Status)
	assert.Equal(t, "parent", cancelled.CancelledBy)
}

func TestBulkApprovePartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	class := f.createClass(t, "Toán 10", 500000, true)
	r1 := f.register(t, class.ID, "An")
	r2 := f.register(t, class.ID, "Bình")

	approved, err := f.regs.BulkApprove(ctx, []string{r1.ID, "missing", r2.ID}, "staff-1")
	require.Error(t, err)
	assert.Equal(t, 2, approved, "failures do not stop the batch")
	assert.Equal(t, "2/3 registrations approved", err.Error())

	got, err := f.regs.GetByID(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusApproved, got.Status)
}

func TestBulkApproveAllSucceed(t *testing.T) {
	f := newFixture(t)
	class := f.createClass(t, "Toán 10", 500000, true)
	r1 := f.register(t, class.ID, "An")
	r2 := f.register(t, class.ID, "Bình")

	approved, err := f.regs.BulkApprove(context.Background(), []string{r1.ID, r2.ID}, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, 2, approved)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	class := f.createClass(t, "Toán 10", 500000, true)
	reg := f.register(t, class.ID, "An")

	partial, err := f.regs.RecordPayment(ctx, reg.ID, 200000, "cash")
	require.NoError(t, err)
	assert.Equal(t, 200000.0, partial.Payment.PaidAmount)
	assert.Equal(t, registration.PaymentPartial, partial.Payment.Status)
	assert.Equal(t, "cash", partial.Payment.Method)

	paid, err := f.regs.RecordPayment(ctx, reg.ID, 300000, "transfer")
	require.NoError(t, err)
	assert.Equal(t, 500000.0, paid.Payment.PaidAmount)
	assert.Equal(t, registration.PaymentPaid, paid.Payment.Status)

	_, err = f.regs.RecordPayment(ctx, reg.ID, 1, "cash")
	require.Error(t, err)
	assert.True(t, apperrors.IsDomain(err))
	assert.Contains(t, err.Error(), "exceed")

	_, err = f.regs.RecordPayment(ctx, reg.ID, 0, "cash")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestListByStatusAndClass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	math := f.createClass(t, "Toán 10", 500000, true)
	physics := f.createClass(t, "Lý 11", 400000, true)

	r1 := f.register(t, math.ID, "An")
	f.register(t, math.ID, "Bình")
	f.register(t, physics.ID, "Chi")

	_, err := f.regs.Approve(ctx, r1.ID, "staff-1")
	require.NoError(t, err)

	page, err := f.regs.List(ctx, registration.ListFilter{Status: registration.StatusPending})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.regs.List(ctx, registration.ListFilter{ClassID: math.ID})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.regs.List(ctx, registration.ListFilter{
		Status:  registration.StatusPending,
		ClassID: math.ID,
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	math := f.createClass(t, "Toán 10", 500000, true)
	physics := f.createClass(t, "Lý 11", 400000, true)

	r1 := f.register(t, math.ID, "An")
	f.register(t, math.ID, "Bình")
	r3 := f.register(t, physics.ID, "Chi")

	_, err := f.regs.Approve(ctx, r1.ID, "staff-1")
	require.NoError(t, err)
	_, err = f.regs.RecordPayment(ctx, r1.ID, 500000, "cash")
	require.NoError(t, err)
	_, err = f.regs.Cancel(ctx, r3.ID, "parent")
	require.NoError(t, err)

	stats, err := f.regs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[registration.StatusApproved])
	assert.Equal(t, 1, stats.ByStatus[registration.StatusPending])
	assert.Equal(t, 1, stats.ByStatus[registration.StatusCancelled])
	assert.Equal(t, 500000.0, stats.TotalRevenue, "collected revenue sums paid amounts")
	assert.Equal(t, 500000.0, stats.PendingRevenue, "cancelled registrations owe nothing")
	require.NotEmpty(t, stats.TopClasses)
	assert.Equal(t, math.ID, stats.TopClasses[0].ClassID)
	assert.Equal(t, 2, stats.TopClasses[0].Count)
}

func TestEnrollmentScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	class := f.createClass(t, "Toán 10", 500000, true)
	reg := f.register(t, class.ID, "Nguyễn Văn An")
	require.Equal(t, registration.StatusPending, reg.Status)

	approved, err := f.regs.Approve(ctx, reg.ID, "staff-1")
	require.NoError(t, err)
	require.Equal(t, registration.StatusApproved, approved.Status)

	_, err = f.classes.UpdateEnrollment(ctx, class.ID, 1)
	require.NoError(t, err)

	_, err = f.regs.RecordPayment(ctx, reg.ID, 500000, "transfer")
	require.NoError(t, err)

	final, err := f.regs.GetByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, registration.PaymentPaid, final.Payment.Status)

	updatedClass, err := f.classes.GetByID(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updatedClass.CurrentStudents)
}
