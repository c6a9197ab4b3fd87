package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeInstallmentSchedule_SingleIsUnsplit(t *testing.T) {
	got, err := ComputeInstallmentSchedule(NewDate(2024, 5, 20), 1, 1, Money{Cents: 12345})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Installment{Index: 1, DueDate: NewDate(2024, 5, 20), Amount: Money{Cents: 12345}}, got[0])
}

func TestComputeInstallmentSchedule_TwelveMonths(t *testing.T) {
	got, err := ComputeInstallmentSchedule(NewDate(2024, 1, 15), 12, 1, Money{Cents: 120000})
	require.NoError(t, err)
	require.Len(t, got, 12)

	for i, inst := range got {
		assert.Equal(t, i+1, inst.Index)
		assert.Equal(t, NewDate(2024, i+1, 15), inst.DueDate)
		assert.Equal(t, int64(10000), inst.Amount.Cents)
	}
}

func TestComputeInstallmentSchedule_RemainderIsDropped(t *testing.T) {
	got, err := ComputeInstallmentSchedule(NewDate(2024, 3, 1), 3, 1, Money{Cents: 10000})
	require.NoError(t, err)

	var sum Money
	for _, inst := range got {
		assert.Equal(t, int64(3333), inst.Amount.Cents)
		sum = sum.Add(inst.Amount)
	}
	assert.Equal(t, int64(9999), sum.Cents)
}

func TestComputeInstallmentSchedule_RoundsHalfAwayFromZero(t *testing.T) {
	// 100.01 / 2 = 50.005
	got, err := ComputeInstallmentSchedule(NewDate(2024, 3, 1), 2, 1, Money{Cents: 10001})
	require.NoError(t, err)
	assert.Equal(t, int64(5001), got[0].Amount.Cents)
	assert.Equal(t, int64(5001), got[1].Amount.Cents)
}

func TestComputeInstallmentSchedule_StartOffset(t *testing.T) {
	got, err := ComputeInstallmentSchedule(NewDate(2024, 6, 10), 6, 4, Money{Cents: 60000})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 4, got[0].Index)
	assert.Equal(t, NewDate(2024, 6, 10), got[0].DueDate)
	assert.Equal(t, 5, got[1].Index)
	assert.Equal(t, NewDate(2024, 7, 10), got[1].DueDate)
	assert.Equal(t, 6, got[2].Index)
	assert.Equal(t, NewDate(2024, 8, 10), got[2].DueDate)
	for _, inst := range got {
		assert.Equal(t, int64(10000), inst.Amount.Cents)
	}
}

func TestComputeInstallmentSchedule_CrossesYear(t *testing.T) {
	got, err := ComputeInstallmentSchedule(NewDate(2024, 11, 5), 4, 1, Money{Cents: 40000})
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, 2, 5), got[3].DueDate)
}

func TestComputeInstallmentSchedule_MonthEndRollsOver(t *testing.T) {
	tests := []struct {
		name string
		base Date
		want []Date
	}{
		{
			name: "leap year",
			base: NewDate(2024, 1, 31),
			want: []Date{NewDate(2024, 1, 31), NewDate(2024, 3, 2), NewDate(2024, 3, 31)},
		},
		{
			name: "common year",
			base: NewDate(2023, 1, 31),
			want: []Date{NewDate(2023, 1, 31), NewDate(2023, 3, 3), NewDate(2023, 3, 31)},
		},
		{
			name: "thirtieth into february",
			base: NewDate(2023, 1, 30),
			want: []Date{NewDate(2023, 1, 30), NewDate(2023, 3, 2), NewDate(2023, 3, 30)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeInstallmentSchedule(tt.base, 3, 1, Money{Cents: 300})
			require.NoError(t, err)
			for i, want := range tt.want {
				assert.Equal(t, want, got[i].DueDate, "installment %d", i+1)
			}
		})
	}
}

func TestSchedule_ClampAdvancer(t *testing.T) {
	s := Schedule{Advancer: ClampAdvancer{}, Split: DropRemainder{}}
	got, err := s.Compute(NewDate(2024, 1, 31), 4, 1, Money{Cents: 400})
	require.NoError(t, err)

	assert.Equal(t, NewDate(2024, 1, 31), got[0].DueDate)
	assert.Equal(t, NewDate(2024, 2, 29), got[1].DueDate)
	assert.Equal(t, NewDate(2024, 3, 31), got[2].DueDate)
	assert.Equal(t, NewDate(2024, 4, 30), got[3].DueDate)
}

func TestSchedule_LastAbsorbsRemainder(t *testing.T) {
	s := Schedule{Advancer: RolloverAdvancer{}, Split: LastAbsorbsRemainder{}}
	got, err := s.Compute(NewDate(2024, 1, 1), 3, 1, Money{Cents: 10000})
	require.NoError(t, err)

	assert.Equal(t, int64(3333), got[0].Amount.Cents)
	assert.Equal(t, int64(3333), got[1].Amount.Cents)
	assert.Equal(t, int64(3334), got[2].Amount.Cents)
}

func TestSchedule_ZeroValueUsesDefaults(t *testing.T) {
	got, err := Schedule{}.Compute(NewDate(2024, 1, 31), 2, 1, Money{Cents: 1000})
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 3, 2), got[1].DueDate)
	assert.Equal(t, int64(500), got[1].Amount.Cents)
}

func TestComputeInstallmentSchedule_InvalidArguments(t *testing.T) {
	tests := []struct {
		name         string
		base         Date
		total, start int
		wantErr      error
	}{
		{"zero total", NewDate(2024, 1, 1), 0, 1, ErrInvalidInstallments},
		{"start zero", NewDate(2024, 1, 1), 3, 0, ErrInvalidInstallments},
		{"start past total", NewDate(2024, 1, 1), 3, 4, ErrInvalidInstallments},
		{"zero date", Date{}, 3, 1, ErrInvalidDate},
		{"above the cap", NewDate(2024, 1, 1), MaxInstallments + 1, 1, ErrInvalidInstallments},
		{"huge total", NewDate(2024, 1, 1), 1 << 62, 1, ErrInvalidInstallments},
		{"runs past year 9999", NewDate(9999, 6, 1), 12, 1, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeInstallmentSchedule(tt.base, tt.total, tt.start, Money{Cents: 100})
			require.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestComputeInstallmentSchedule_AtTheCap(t *testing.T) {
	got, err := ComputeInstallmentSchedule(NewDate(2024, 1, 10), MaxInstallments, 1, Money{Cents: 120000})
	require.NoError(t, err)
	require.Len(t, got, MaxInstallments)
	assert.Equal(t, NewDate(2033, 12, 10), got[MaxInstallments-1].DueDate)
	assert.Equal(t, int64(1000), got[0].Amount.Cents)

	got, err = ComputeInstallmentSchedule(NewDate(9999, 1, 10), 12, 1, Money{Cents: 1200})
	require.NoError(t, err)
	assert.Equal(t, NewDate(9999, 12, 10), got[11].DueDate)
}
