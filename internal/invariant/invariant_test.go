package invariant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPassesSilentlyWhenTrue(t *testing.T) {
	assert.NotPanics(t, func() { Check(true, "unreachable") })
}

func TestCheckPanicsWhenFalse(t *testing.T) {
	assert.PanicsWithValue(t, "invariant violated: core 3 must be off", func() {
		Check(false, "core %d must be off", 3)
	})
}
