package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(log *[]string, name string, fail error) func(context.Context) error {
	return func(context.Context) error {
		*log = append(*log, name)
		return fail
	}
}

func TestRun_AllStepsSucceed(t *testing.T) {
	var calls []string
	err := New("ok", nil).
		Add(Step{Name: "a", Do: recorder(&calls, "do:a", nil), Undo: recorder(&calls, "undo:a", nil)}).
		Add(Step{Name: "b", Do: recorder(&calls, "do:b", nil), Undo: recorder(&calls, "undo:b", nil)}).
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"do:a", "do:b"}, calls)
}

func TestRun_CompensatesInReverseOrder(t *testing.T) {
	var calls []string
	boom := errors.New("boom")

	err := New("extend", nil).
		Add(Step{Name: "a", Do: recorder(&calls, "do:a", nil), Undo: recorder(&calls, "undo:a", nil)}).
		Add(Step{Name: "b", Do: recorder(&calls, "do:b", nil)}).
		Add(Step{Name: "c", Do: recorder(&calls, "do:c", nil), Undo: recorder(&calls, "undo:c", nil)}).
		Add(Step{Name: "d", Do: recorder(&calls, "do:d", boom), Undo: recorder(&calls, "undo:d", nil)}).
		Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"do:a", "do:b", "do:c", "do:d", "undo:c", "undo:a"}, calls)

	se, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "d", se.FailedStep)
	assert.Equal(t, []string{"c", "a"}, se.Compensated)
	assert.True(t, se.Consistent())
}

func TestRun_ReportsCompensationFailures(t *testing.T) {
	var calls []string
	err := New("checkout", nil).
		Add(Step{Name: "booking", Do: recorder(&calls, "do:booking", nil), Undo: recorder(&calls, "undo:booking", errors.New("db down"))}).
		Add(Step{Name: "room", Do: recorder(&calls, "do:room", errors.New("timeout"))}).
		Run(context.Background())

	se, ok := AsError(err)
	require.True(t, ok)
	assert.False(t, se.Consistent())
	assert.Contains(t, se.CompensationErrs, "booking")
	assert.Contains(t, se.Error(), "compensation failed for: booking")
	assert.Equal(t, false, se.Details()["consistent"])
}
