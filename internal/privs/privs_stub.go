//go:build !windows

package privs

// Token privileges are a Windows concept; elsewhere elevation always
// reports not granted.
func enable(Name) bool { return false }
