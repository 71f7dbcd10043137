package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	err := ValidationError("mobileNumber", "must be a 10-digit number")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "mobileNumber")

	err = PersistenceError("append booking", errors.New("disk full"))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Contains(t, err.Error(), "disk full")
}
