package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatuses(t *testing.T) {
	cases := []struct {
		name  string
		input []string
		want  []string
		ok    bool
	}{
		{"typical vocabulary", []string{"Todo", "In Progress", "Done"}, []string{"Todo", "In Progress", "Done"}, true},
		{"trims whitespace", []string{" Todo ", "Done"}, []string{"Todo", "Done"}, true},
		{"single status", []string{"Open"}, []string{"Open"}, true},
		{"empty list", []string{}, nil, false},
		{"nil list", nil, nil, false},
		{"blank entry", []string{"Todo", "  "}, nil, false},
		{"duplicate entry", []string{"Todo", "Todo"}, nil, false},
		{"duplicate after trim", []string{"Todo", " Todo"}, nil, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := NormalizeStatuses(c.input)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestProjectHasStatus(t *testing.T) {
	p := &Project{Statuses: []string{"Todo", "In Progress", "Done"}}
	assert.True(t, p.HasStatus("Todo"))
	assert.True(t, p.HasStatus("In Progress"))
	assert.False(t, p.HasStatus("todo"))
	assert.False(t, p.HasStatus("Blocked"))

	empty := &Project{}
	assert.False(t, empty.HasStatus("Todo"))
}
