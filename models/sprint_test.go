package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSprintStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to SprintStatus
		want     bool
	}{
		{SprintCreated, SprintStarted, true},
		{SprintStarted, SprintCompleted, true},
		{SprintCreated, SprintCompleted, false},
		{SprintCreated, SprintCreated, false},
		{SprintStarted, SprintCreated, false},
		{SprintStarted, SprintStarted, false},
		{SprintCompleted, SprintCreated, false},
		{SprintCompleted, SprintStarted, false},
		{SprintCompleted, SprintCompleted, false},
	}
	for _, c := range cases {
		got := c.from.CanTransitionTo(c.to)
		assert.Equal(t, c.want, got, "%s -> %s", c.from, c.to)
	}
}

func TestSprintStatusValid(t *testing.T) {
	assert.True(t, SprintCreated.Valid())
	assert.True(t, SprintStarted.Valid())
	assert.True(t, SprintCompleted.Valid())
	assert.False(t, SprintStatus("Archived").Valid())
	assert.False(t, SprintStatus("").Valid())
}
