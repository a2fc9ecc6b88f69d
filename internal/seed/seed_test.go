package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeplebar/internal/domain/entities"
)

func TestEvents_Embedded(t *testing.T) {
	events, err := Events()
	require.NoError(t, err)
	require.NotEmpty(t, events)
	for _, e := range events {
		assert.Positive(t, e.ID)
		assert.True(t, e.Status.Valid(), e.Title)
		assert.Zero(t, e.CurrentAttendees)
		assert.Zero(t, e.WaitlistCount)
		assert.NotNil(t, e.Tags)
	}
}

func TestParse(t *testing.T) {
	events, err := Parse([]byte(`
[[events]]
id = 7
title = "Blood on the Clocktower"
date = "2026-12-01"
time = "20:00"
capacity = 12
current_attendees = 9
`))
	require.NoError(t, err)
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, 7, e.ID)
	assert.Equal(t, entities.EventUpcoming, e.Status)
	assert.Equal(t, 12, e.Capacity)
	assert.Zero(t, e.CurrentAttendees, "seed counters are reset")
	assert.Equal(t, []string{}, e.Tags)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"missing id":     "[[events]]\ntitle = \"x\"\n",
		"duplicate id":   "[[events]]\nid = 1\n[[events]]\nid = 1\n",
		"unknown status": "[[events]]\nid = 1\nstatus = \"postponed\"\n",
		"not toml":       "[[events]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}
