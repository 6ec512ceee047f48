//go:build !windows

package workingset

// Supported reports whether the working-set trim capability exists here.
func Supported() bool { return false }

// Target is an open handle to a process whose working set can be measured
// and trimmed. On this platform no target can be opened.
type Target struct {
	pid int32
}

func Self() (*Target, error)          { return nil, ErrUnsupported }
func Open(pid int32) (*Target, error) { return nil, ErrUnsupported }

func (t *Target) Pid() int32           { return t.pid }
func (t *Target) Close() error         { return nil }
func (t *Target) Size() (int64, error) { return 0, ErrUnsupported }
func (t *Target) Empty() error         { return ErrUnsupported }
func (t *Target) SetToMinimum() error  { return ErrUnsupported }

func PurgeStandbyLists() ([]PurgeResult, error) { return nil, ErrUnsupported }
