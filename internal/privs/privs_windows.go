//go:build windows

package privs

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// enable turns on a single privilege on the current process token. Returns
// false when the privilege cannot be looked up or adjusted, or when the
// token does not hold it (ERROR_NOT_ALL_ASSIGNED).
func enable(name Name) bool {
	var token windows.Token
	err := windows.OpenProcessToken(windows.CurrentProcess(),
		windows.TOKEN_ADJUST_PRIVILEGES|windows.TOKEN_QUERY, &token)
	if err != nil {
		return false
	}
	defer token.Close()

	nameW, err := windows.UTF16PtrFromString(string(name))
	if err != nil {
		return false
	}

	var luid windows.LUID
	if err := windows.LookupPrivilegeValue(nil, nameW, &luid); err != nil {
		return false
	}

	tp := windows.Tokenprivileges{
		PrivilegeCount: 1,
		Privileges: [1]windows.LUIDAndAttributes{{
			Luid:       luid,
			Attributes: windows.SE_PRIVILEGE_ENABLED,
		}},
	}
	if err := windows.AdjustTokenPrivileges(token, false, &tp, 0, nil, nil); err != nil {
		return false
	}

	// AdjustTokenPrivileges reports success even when the token never held
	// the privilege; the last-error it sets in that case cannot be read
	// reliably from Go (the goroutine may change OS threads between the
	// syscall and the read). Confirm the grant by querying the token.
	return enabledOnToken(token, luid)
}

// enabledOnToken reads the token's privilege list back and checks luid.
func enabledOnToken(token windows.Token, luid windows.LUID) bool {
	var size uint32
	windows.GetTokenInformation(token, windows.TokenPrivileges, nil, 0, &size)
	if size == 0 {
		return false
	}
	buf := make([]byte, size)
	err := windows.GetTokenInformation(token, windows.TokenPrivileges, &buf[0], size, &size)
	if err != nil {
		return false
	}
	held := (*windows.Tokenprivileges)(unsafe.Pointer(&buf[0]))
	return enabledIn(held.AllPrivileges(), luid)
}

// enabledIn reports whether luid appears in the list with the enabled bit.
func enabledIn(list []windows.LUIDAndAttributes, luid windows.LUID) bool {
	for _, p := range list {
		if p.Luid == luid {
			return p.Attributes&windows.SE_PRIVILEGE_ENABLED != 0
		}
	}
	return false
}
