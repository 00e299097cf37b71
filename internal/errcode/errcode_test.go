package errcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeIsError(t *testing.T) {
	var err error = ENoDev
	assert.EqualError(t, err, "no such device")
}

func TestCodeIsMatchesErrorsIs(t *testing.T) {
	wrapped := errors.New("probe: " + EIO.Error())
	assert.False(t, EIO.Is(wrapped), "a new error built from the message text does not satisfy Is")

	var err error = EBusy
	assert.True(t, errors.Is(err, EBusy))
	assert.False(t, errors.Is(err, EIO))
}

func TestUnknownCodeString(t *testing.T) {
	assert.Equal(t, "unknown error", Code(999).Error())
}
