package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissions(t *testing.T) {
	alice, bob := int64(1), int64(2)

	aliceMovement := Movement{ID: 10, Author: &alice}
	orphanMovement := Movement{ID: 11}
	aliceWorkout := Workout{ID: 20, User: &alice}
	bobWorkout := Workout{ID: 21, User: &bob}

	assert.True(t, CanAccessMovement(alice, aliceMovement))
	assert.False(t, CanAccessMovement(bob, aliceMovement))
	assert.False(t, CanAccessMovement(alice, orphanMovement))
	assert.False(t, CanAccessMovement(0, orphanMovement))

	assert.True(t, CanAccessWorkout(alice, aliceWorkout))
	assert.False(t, CanAccessWorkout(alice, bobWorkout))
	assert.False(t, CanAccessWorkout(0, Workout{}))

	assert.True(t, CanAccessMovementLog(bob, bobWorkout))
	assert.False(t, CanAccessMovementLog(alice, bobWorkout))

	assert.True(t, CanWriteMovementLog(alice, aliceMovement, aliceWorkout))
	assert.False(t, CanWriteMovementLog(alice, aliceMovement, bobWorkout))
	assert.False(t, CanWriteMovementLog(bob, aliceMovement, bobWorkout))
	assert.False(t, CanWriteMovementLog(alice, orphanMovement, aliceWorkout))
}
