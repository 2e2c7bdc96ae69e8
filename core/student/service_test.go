package student_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/student"
	inmemdb "github.com/Jhorne678-blue/BJJ-PRO-GYM/storage/database/inmem"
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := student.NewService(inmemdb.NewStudentRepository(inmemdb.Open()))

	s1, err := svc.Create(ctx, 1, student.NewStudent{Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "MBR001", s1.MemberID)
	assert.Equal(t, "CARD1001", s1.CardNumber)
	assert.Equal(t, student.BeltWhite, s1.BeltLevel)

	s2, err := svc.Create(ctx, 1, student.NewStudent{Name: "Bruno", BeltLevel: student.BeltBlue, CardNumber: "RFID42"})
	require.NoError(t, err)
	assert.Equal(t, "MBR002", s2.MemberID)
	assert.Equal(t, "RFID42", s2.CardNumber)

	// numbering is per gym
	other, err := svc.Create(ctx, 2, student.NewStudent{Name: "Carla"})
	require.NoError(t, err)
	assert.Equal(t, "MBR001", other.MemberID)

	tests := []struct {
		name      string
		ns        student.NewStudent
		wantField string
	}{
		{name: "member id taken", ns: student.NewStudent{Name: "X", MemberID: "MBR001", CardNumber: "C1"}, wantField: "member_id"},
		{name: "card number taken", ns: student.NewStudent{Name: "X", MemberID: "M1", CardNumber: "RFID42"}, wantField: "card_number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, tt.ns)
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
		})
	}

	n, err := svc.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestService_GetByName(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	student.NowFunc = func() time.Time { return now }
	defer func() { student.NowFunc = time.Now }()

	svc := student.NewService(inmemdb.NewStudentRepository(inmemdb.Open()))
	first, err := svc.Create(ctx, 1, student.NewStudent{Name: "Diego Souza"})
	require.NoError(t, err)
	now = now.Add(time.Hour)
	_, err = svc.Create(ctx, 1, student.NewStudent{Name: "diego souza"})
	require.NoError(t, err)

	s, err := svc.GetByName(ctx, 1, "  DIEGO SOUZA ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, s.ID)

	_, err = svc.GetByName(ctx, 2, "Diego Souza")
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))
}

func TestService_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	svc := student.NewService(inmemdb.NewStudentRepository(inmemdb.Open()))
	alice, err := svc.Create(ctx, 1, student.NewStudent{Name: "Alice", Email: "alice@test.test"})
	require.NoError(t, err)
	bruno, err := svc.Create(ctx, 1, student.NewStudent{Name: "Bruno"})
	require.NoError(t, err)

	// blank fields keep their value
	us := student.UpdateStudent{BeltLevel: student.BeltPurple, Phone: " 555-0101 "}
	require.NoError(t, us.Validate(alice, validate))
	updated, err := svc.Update(ctx, alice, us)
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "alice@test.test", updated.Email)
	assert.Equal(t, "555-0101", updated.Phone)
	assert.Equal(t, student.BeltPurple, updated.BeltLevel)
	assert.Equal(t, alice.MemberID, updated.MemberID)

	// keeping its own card number is fine, taking another's is not
	us = student.UpdateStudent{CardNumber: bruno.CardNumber}
	require.NoError(t, us.Validate(alice, validate))
	_, err = svc.Update(ctx, alice, us)
	var vErr *core.ValidationError
	assert.True(t, errors.As(err, &vErr))

	us = student.UpdateStudent{BeltLevel: "Green"}
	assert.Error(t, us.Validate(alice, validate))

	require.NoError(t, svc.Delete(ctx, 1, bruno.ID))
	_, err = svc.GetByID(ctx, 1, bruno.ID)
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))
	assert.Equal(t, student.ErrNotFound, errors.Cause(svc.Delete(ctx, 1, bruno.ID)))
	// other gyms cannot delete it
	assert.Equal(t, student.ErrNotFound, errors.Cause(svc.Delete(ctx, 2, alice.ID)))
}

func TestNewStudent_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	tests := []struct {
		name    string
		ns      student.NewStudent
		wantErr bool
	}{
		{name: "minimal", ns: student.NewStudent{Name: "Alice"}},
		{name: "full", ns: student.NewStudent{Name: "Alice", Email: "A@T.test", BeltLevel: "Black", MemberID: "M1", CardNumber: "C1"}},
		{name: "no name", ns: student.NewStudent{Name: "   "}, wantErr: true},
		{name: "bad email", ns: student.NewStudent{Name: "Alice", Email: "alice"}, wantErr: true},
		{name: "unknown belt", ns: student.NewStudent{Name: "Alice", BeltLevel: "Green"}, wantErr: true},
		{name: "bad card number", ns: student.NewStudent{Name: "Alice", CardNumber: "C 1"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
