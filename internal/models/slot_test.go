package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSlot(t *testing.T) {
	s := NewSlot("2024-01-01", 9, 600)
	assert.Equal(t, "2024-01-01-09:00", s.ID)
	assert.Equal(t, "09:00", s.Time)
	assert.Equal(t, 600, s.Price)
	assert.False(t, s.Available)
}

func TestDisplayTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"00:00", "12:00 AM"},
		{"01:00", "1:00 AM"},
		{"11:00", "11:00 AM"},
		{"12:00", "12:00 PM"},
		{"13:00", "1:00 PM"},
		{"23:00", "11:00 PM"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slot{Time: tt.in}.DisplayTime(), "time %s", tt.in)
	}
}
