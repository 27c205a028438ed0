package gamemode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-labs/arena/pkg/gamemode"
)

func TestHooks(t *testing.T) {
	t.Parallel()

	h := newHandler(&bareMode{})
	require.NoError(t, h.AddHook("x"))
	require.ErrorIs(t, h.AddHook("x"), gamemode.ErrDuplicateHook)
	require.ErrorIs(t, h.AddHook(gamemode.HookDeath), gamemode.ErrDuplicateHook, "built-in hooks are declared")

	// declared with zero subscribers
	require.NoError(t, h.TriggerHook("x", nil))

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, h.HookUp("x", func(p any) { order = append(order, name+":"+p.(string)) }))
	}
	require.NoError(t, h.TriggerHook("x", "p"))
	assert.Equal(t, []string{"first:p", "second:p", "third:p"}, order)

	require.ErrorIs(t, h.TriggerHook("y", "p"), gamemode.ErrUndefinedHook)
	require.ErrorIs(t, h.HookUp("y", func(any) {}), gamemode.ErrUndefinedHook)
	assert.True(t, h.HasHook("x"))
	assert.False(t, h.HasHook("y"))
}

func TestSubscribeSkipsForeignPayloads(t *testing.T) {
	t.Parallel()

	h := newHandler(&bareMode{})
	require.NoError(t, h.AddHook("score"))
	var got []int
	require.NoError(t, gamemode.Subscribe(h, "score", func(v int) { got = append(got, v) }))

	require.NoError(t, h.TriggerHook("score", 3))
	require.NoError(t, h.TriggerHook("score", "three"))
	assert.Equal(t, []int{3}, got)
}

func TestCapabilityString(t *testing.T) {
	t.Parallel()

	c := gamemode.CapPreUpdate | gamemode.CapPlayerJoin
	assert.Equal(t, "pre_update|player_join", c.String())
	assert.True(t, c.Has(gamemode.CapPlayerJoin))
	assert.False(t, c.Has(gamemode.CapPostUpdate))
}
