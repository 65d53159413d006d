package deductions

import (
	"context"
	"testing"
	"time"

	"armory-backend/internal/constants"
	"armory-backend/internal/domain"
	"armory-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var deductionNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*Service, domain.Employee) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Employee{}, &domain.Deduction{}))

	emp := domain.Employee{Fullname: "E", BadgeNumber: uuid.New().String(), BaseSalary: 900}
	require.NoError(t, db.Create(&emp).Error)

	return &Service{DB: db, Now: func() time.Time { return deductionNow }}, emp
}

func TestCreate(t *testing.T) {
	svc, emp := setupService(t)
	actor := Actor{ID: uuid.New(), Role: constants.Clerk}

	d, err := svc.Create(context.Background(), CreateInput{
		EmployeeID: emp.EmployeeID, Amount: 50, Reason: "lost equipment", Month: "2026-06",
	}, actor)
	require.NoError(t, err)
	assert.False(t, d.IsApproved)
	assert.Equal(t, int64(1), d.Version)
	assert.Equal(t, actor.ID, d.CreatedBy)
}

func TestCreate_Validation(t *testing.T) {
	svc, emp := setupService(t)
	actor := Actor{ID: uuid.New(), Role: constants.Clerk}

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"zero amount", CreateInput{EmployeeID: emp.EmployeeID, Amount: 0, Reason: "r", Month: "2026-06"}},
		{"missing reason", CreateInput{EmployeeID: emp.EmployeeID, Amount: 10, Month: "2026-06"}},
		{"bad month", CreateInput{EmployeeID: emp.EmployeeID, Amount: 10, Reason: "r", Month: "June"}},
		{"unknown employee", CreateInput{EmployeeID: uuid.New(), Amount: 10, Reason: "r", Month: "2026-06"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.in, actor)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
		})
	}
}

func TestApprove_Gate(t *testing.T) {
	svc, emp := setupService(t)
	clerk := Actor{ID: uuid.New(), Role: constants.Clerk}
	admin := Actor{ID: uuid.New(), Role: constants.Admin}

	d, err := svc.Create(context.Background(), CreateInput{
		EmployeeID: emp.EmployeeID, Amount: 50, Reason: "fine", Month: "2026-06",
	}, clerk)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), d.DeductionID, d.Version, "ok", clerk)
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))

	_, err = svc.Approve(context.Background(), d.DeductionID, d.Version, "", admin)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	approved, err := svc.Approve(context.Background(), d.DeductionID, d.Version, "payroll verified", admin)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, admin.ID, *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovalDate)

	// Ratchet.
	_, err = svc.Approve(context.Background(), d.DeductionID, approved.Version, "again", admin)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdate_FrozenAfterApproval(t *testing.T) {
	svc, emp := setupService(t)
	clerk := Actor{ID: uuid.New(), Role: constants.Clerk}
	admin := Actor{ID: uuid.New(), Role: constants.Admin}

	d, err := svc.Create(context.Background(), CreateInput{
		EmployeeID: emp.EmployeeID, Amount: 50, Reason: "fine", Month: "2026-06",
	}, clerk)
	require.NoError(t, err)

	amount := 60.0
	updated, err := svc.Update(context.Background(), d.DeductionID, d.Version, UpdateInput{Amount: &amount}, clerk)
	require.NoError(t, err)
	assert.Equal(t, 60.0, updated.Amount)

	approved, err := svc.Approve(context.Background(), d.DeductionID, updated.Version, "ok", admin)
	require.NoError(t, err)

	amount = 70.0
	_, err = svc.Update(context.Background(), d.DeductionID, approved.Version, UpdateInput{Amount: &amount}, clerk)
	require.Error(t, err)
	assert.True(t, apperr.IsAuthorization(err))

	// Admins may still edit descriptive fields of an approved deduction.
	edited, err := svc.Update(context.Background(), d.DeductionID, approved.Version, UpdateInput{Amount: &amount}, admin)
	require.NoError(t, err)
	assert.Equal(t, 70.0, edited.Amount)
	assert.True(t, edited.IsApproved, "approval stamp untouched by descriptive edits")
}

func TestUpdate_ConcurrentModification(t *testing.T) {
	svc, emp := setupService(t)
	clerk := Actor{ID: uuid.New(), Role: constants.Clerk}

	d, err := svc.Create(context.Background(), CreateInput{
		EmployeeID: emp.EmployeeID, Amount: 50, Reason: "fine", Month: "2026-06",
	}, clerk)
	require.NoError(t, err)

	amount := 55.0
	_, err = svc.Update(context.Background(), d.DeductionID, d.Version, UpdateInput{Amount: &amount}, clerk)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), d.DeductionID, d.Version, UpdateInput{Amount: &amount}, clerk)
	require.ErrorIs(t, err, apperr.ErrConcurrentModification)
}

func TestListForEmployee(t *testing.T) {
	svc, emp := setupService(t)
	clerk := Actor{ID: uuid.New(), Role: constants.Clerk}

	for _, m := range []string{"2026-04", "2026-05"} {
		_, err := svc.Create(context.Background(), CreateInput{
			EmployeeID: emp.EmployeeID, Amount: 10, Reason: "r", Month: m,
		}, clerk)
		require.NoError(t, err)
	}

	list, err := svc.ListForEmployee(context.Background(), emp.EmployeeID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
