// Package privs performs best-effort elevation of the OS token privileges
// needed for working-set manipulation. Absence of a privilege is never a
// fatal error; it is recorded and surfaces later only as a contributing
// cause when the in-process trim gets denied.
package privs

import (
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Name is an OS privilege name.
type Name string

const (
	IncreaseQuota        Name = "SeIncreaseQuotaPrivilege"
	Debug                Name = "SeDebugPrivilege"
	ProfileSingleProcess Name = "SeProfileSingleProcessPrivilege"
)

// TrimNames returns the privileges the trim path wants enabled.
func TrimNames() mapset.Set[Name] {
	return mapset.NewSet(IncreaseQuota, Debug)
}

// PurgeNames returns the privileges the standby-list purge wants enabled.
func PurgeNames() mapset.Set[Name] {
	return mapset.NewSet(ProfileSingleProcess)
}

// State maps privilege names to whether elevation succeeded. It is built
// once per pipeline run and threaded through the run as a value; there is
// no process-wide privilege singleton.
type State map[Name]bool

func (s State) Granted(n Name) bool { return s[n] }

// AnyGranted reports whether at least one requested privilege was enabled.
func (s State) AnyGranted() bool {
	for _, granted := range s {
		if granted {
			return true
		}
	}
	return false
}

// String renders the state for log lines, e.g.
// "SeDebugPrivilege=OK SeIncreaseQuotaPrivilege=NO".
func (s State) String() string {
	parts := make([]string, 0, len(s))
	for name, granted := range s {
		status := "NO"
		if granted {
			status = "OK"
		}
		parts = append(parts, string(name)+"="+status)
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// Elevate attempts to enable each named privilege on the current process
// token. Attempts are independent; one failing does not abort the others,
// and no error is ever returned.
func Elevate(names mapset.Set[Name]) State {
	state := make(State, names.Cardinality())
	for name := range names.Iter() {
		state[name] = enable(name)
	}
	return state
}
