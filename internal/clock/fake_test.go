package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFake_AdvanceRunsDueCallbacksInOrder(t *testing.T) {
	c := NewFake(time.Unix(1000, 0))
	var order []string

	c.AfterFunc(2*time.Second, func() { order = append(order, "late") })
	c.AfterFunc(time.Second, func() { order = append(order, "early") })
	require.Equal(t, 2, c.Pending())

	c.Advance(500 * time.Millisecond)
	require.Empty(t, order)

	c.Advance(2 * time.Second)
	require.Equal(t, []string{"early", "late"}, order)
	require.Zero(t, c.Pending())
	require.Equal(t, time.Unix(1002, int64(500*time.Millisecond)), c.Now())
}

func TestFake_Stop(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	ran := false
	timer := c.AfterFunc(time.Second, func() { ran = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())
	c.Advance(time.Minute)
	require.False(t, ran)
}

func TestFake_ZeroDelayRunsImmediately(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	ran := false
	c.AfterFunc(0, func() { ran = true })
	require.True(t, ran)
}
