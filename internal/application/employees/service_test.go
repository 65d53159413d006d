package employees

import (
	"context"
	"testing"

	"armory-backend/internal/domain"
	"armory-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Station{}, &domain.Employee{}))
	return &Service{DB: db}
}

func seedStation(t *testing.T, s *Service) domain.Station {
	t.Helper()
	station := domain.Station{Code: "HQ-01", Name: "Central Depot"}
	require.NoError(t, s.DB.Create(&station).Error)
	return station
}

func TestCreate_Valid(t *testing.T) {
	s := setupService(t)
	station := seedStation(t, s)

	emp, err := s.Create(context.Background(), CreateInput{
		StationID:   &station.StationID,
		Fullname:    "Able Officer",
		BadgeNumber: " B-1001 ",
		Rank:        "Sergeant",
		BaseSalary:  2400,
	})
	require.NoError(t, err)
	assert.Equal(t, "B-1001", emp.BadgeNumber)
	assert.Equal(t, "Sergeant", emp.Rank)
	require.NotNil(t, emp.StationID)
	assert.Equal(t, station.StationID, *emp.StationID)
}

func TestCreate_Validation(t *testing.T) {
	s := setupService(t)
	badEmail := "not-an-email"
	cases := []struct {
		name string
		in   CreateInput
	}{
		{"bad fullname", CreateInput{Fullname: "Unit 42", BadgeNumber: "B-1"}},
		{"missing badge", CreateInput{Fullname: "Able Officer"}},
		{"bad email", CreateInput{Fullname: "Able Officer", BadgeNumber: "B-1", Email: &badEmail}},
		{"negative salary", CreateInput{Fullname: "Able Officer", BadgeNumber: "B-1", BaseSalary: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), tc.in)
			assert.True(t, apperr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCreate_UnknownStation(t *testing.T) {
	s := setupService(t)
	unknown := uuid.New()
	_, err := s.Create(context.Background(), CreateInput{
		StationID:   &unknown,
		Fullname:    "Able Officer",
		BadgeNumber: "B-1001",
	})
	assert.True(t, apperr.IsValidation(err))
}

func TestCreate_DuplicateBadge(t *testing.T) {
	s := setupService(t)
	_, err := s.Create(context.Background(), CreateInput{Fullname: "Able Officer", BadgeNumber: "B-1001"})
	require.NoError(t, err)
	_, err = s.Create(context.Background(), CreateInput{Fullname: "Baker Officer", BadgeNumber: "B-1001"})
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdate_MoveToStation(t *testing.T) {
	s := setupService(t)
	station := seedStation(t, s)
	emp, err := s.Create(context.Background(), CreateInput{Fullname: "Able Officer", BadgeNumber: "B-1001"})
	require.NoError(t, err)

	updated, err := s.Update(context.Background(), emp.EmployeeID, UpdateInput{StationID: &station.StationID})
	require.NoError(t, err)
	require.NotNil(t, updated.StationID)
	assert.Equal(t, station.StationID, *updated.StationID)
}

func TestListForStation(t *testing.T) {
	s := setupService(t)
	station := seedStation(t, s)
	_, err := s.Create(context.Background(), CreateInput{StationID: &station.StationID, Fullname: "Zulu Officer", BadgeNumber: "B-2"})
	require.NoError(t, err)
	_, err = s.Create(context.Background(), CreateInput{StationID: &station.StationID, Fullname: "Able Officer", BadgeNumber: "B-1"})
	require.NoError(t, err)
	_, err = s.Create(context.Background(), CreateInput{Fullname: "Unassigned Officer", BadgeNumber: "B-3"})
	require.NoError(t, err)

	list, err := s.ListForStation(context.Background(), station.StationID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Able Officer", list[0].Fullname)
}

func TestGet_NotFound(t *testing.T) {
	s := setupService(t)
	_, err := s.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
