//go:build windows

package privs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/windows"
)

func TestEnabledIn(t *testing.T) {
	debug := windows.LUID{LowPart: 20}
	quota := windows.LUID{LowPart: 5}
	list := []windows.LUIDAndAttributes{
		{Luid: quota, Attributes: 0},
		{Luid: debug, Attributes: windows.SE_PRIVILEGE_ENABLED},
	}

	assert.True(t, enabledIn(list, debug))
	// Held but not enabled must not count as granted.
	assert.False(t, enabledIn(list, quota))
	assert.False(t, enabledIn(list, windows.LUID{LowPart: 99}))
	assert.False(t, enabledIn(nil, debug))
}

func TestElevateCurrentTokenReportsPerPrivilege(t *testing.T) {
	state := Elevate(TrimNames())

	// Whatever the token holds, every requested name must be decided.
	for name := range TrimNames().Iter() {
		_, present := state[name]
		assert.True(t, present, "missing entry for %s", name)
	}
}
