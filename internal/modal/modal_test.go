package modal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModal_OpenAppliesEnterAnimation(t *testing.T) {
	var m Modal
	m.Open(time.Now())

	assert.True(t, m.Visible)
	assert.Equal(t, AnimationEnter, m.Animation)
}

func TestModal_CloseHidesAfterDelay(t *testing.T) {
	now := time.Unix(1000, 0)
	var m Modal
	m.Open(now)

	m.Close(now, DefaultCloseDelay)
	assert.True(t, m.Visible)
	assert.Equal(t, AnimationExit, m.Animation)

	assert.False(t, m.Settle(now.Add(299*time.Millisecond)))
	assert.True(t, m.Visible)

	assert.True(t, m.Settle(now.Add(300*time.Millisecond)))
	assert.False(t, m.Visible)
	assert.Equal(t, AnimationNone, m.Animation)
	assert.True(t, m.HideAt.IsZero())
}

func TestModal_ReopenDuringExitCancelsHide(t *testing.T) {
	now := time.Unix(1000, 0)
	var m Modal
	m.Open(now)
	m.Close(now, DefaultCloseDelay)

	m.Open(now.Add(100 * time.Millisecond))

	assert.False(t, m.Settle(now.Add(time.Second)))
	assert.True(t, m.Visible)
	assert.Equal(t, AnimationEnter, m.Animation)
}

func TestModal_CloseHiddenIsNoop(t *testing.T) {
	var m Modal
	m.Close(time.Now(), DefaultCloseDelay)

	assert.False(t, m.Visible)
	assert.Equal(t, AnimationNone, m.Animation)
}

func TestModal_DoubleCloseKeepsFirstDeadline(t *testing.T) {
	now := time.Unix(1000, 0)
	var m Modal
	m.Open(now)
	m.Close(now, DefaultCloseDelay)
	m.Close(now.Add(200*time.Millisecond), DefaultCloseDelay)

	assert.Equal(t, now.Add(DefaultCloseDelay), m.HideAt)
}

func TestSet_ModalsAreIndependent(t *testing.T) {
	now := time.Unix(1000, 0)
	set := NewSet(0)
	require.Equal(t, DefaultCloseDelay, set.CloseDelay)

	set.Open(Subscribe, now)
	set.Open(Contact, now)
	set.Close(Subscribe, now)

	hidden := set.Settle(now.Add(DefaultCloseDelay))

	assert.Equal(t, []Name{Subscribe}, hidden)
	assert.False(t, set.Visible(Subscribe))
	assert.True(t, set.Visible(Contact))
	assert.False(t, set.Visible(Message))
}

func TestSet_CloneIsDeep(t *testing.T) {
	set := NewSet(time.Second)
	set.Open(Message, time.Now())

	clone := set.Clone()
	clone.Close(Message, time.Now())

	assert.Equal(t, AnimationEnter, set.State(Message).Animation)
	assert.Equal(t, AnimationExit, clone.State(Message).Animation)
}

func TestParseName(t *testing.T) {
	name, err := ParseName("contact")
	require.NoError(t, err)
	assert.Equal(t, Contact, name)

	_, err = ParseName("popup")
	assert.ErrorIs(t, err, ErrUnknownModal)
}
