package api

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// HelperOutcome is the structured result the external trim helper reports
// on its standard output. The line format is the only cross-process
// contract of the pipeline and must stay stable so a differently-built
// helper binary remains compatible.
//
// One field per line, `key : value`:
//
//	open : ok
//	trimCall1 : ok
//	trimCall2 : failed (err 5)
//	workingSetBefore : 48318382080
//	workingSetAfter : 3113851289
//	freed : 45204530791
//
// The step fields are optional; the three size fields are required.
type HelperOutcome struct {
	// Step statuses, informational only.
	OpenStep      string `json:"open"`
	TrimCall1Step string `json:"trim_call_1"`
	TrimCall2Step string `json:"trim_call_2"`

	WorkingSetBefore int64 `json:"working_set_before"`
	WorkingSetAfter  int64 `json:"working_set_after"`

	// Freed is WorkingSetBefore - WorkingSetAfter, uncapped.
	Freed int64 `json:"freed"`
}

const (
	keyOpen      = "open"
	keyTrimCall1 = "trimCall1"
	keyTrimCall2 = "trimCall2"
	keyWsBefore  = "workingSetBefore"
	keyWsAfter   = "workingSetAfter"
	keyFreed     = "freed"
)

// EncodeHelperOutcome writes the outcome in the stable line format.
func EncodeHelperOutcome(w io.Writer, o HelperOutcome) error {
	lines := []struct {
		key string
		val string
	}{
		{keyOpen, o.OpenStep},
		{keyTrimCall1, o.TrimCall1Step},
		{keyTrimCall2, o.TrimCall2Step},
		{keyWsBefore, strconv.FormatInt(o.WorkingSetBefore, 10)},
		{keyWsAfter, strconv.FormatInt(o.WorkingSetAfter, 10)},
		{keyFreed, strconv.FormatInt(o.Freed, 10)},
	}
	for _, l := range lines {
		if l.val == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s : %s\n", l.key, l.val); err != nil {
			return err
		}
	}
	return nil
}

// DecodeHelperOutcome parses helper stdout. Unknown keys and missing step
// fields are tolerated; the three size fields are required.
func DecodeHelperOutcome(r io.Reader) (HelperOutcome, error) {
	var o HelperOutcome
	var gotBefore, gotAfter, gotFreed bool

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, val, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case keyOpen:
			o.OpenStep = val
		case keyTrimCall1:
			o.TrimCall1Step = val
		case keyTrimCall2:
			o.TrimCall2Step = val
		case keyWsBefore, keyWsAfter, keyFreed:
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return o, fmt.Errorf("helper output field %s is not a size: %q", key, val)
			}
			switch key {
			case keyWsBefore:
				o.WorkingSetBefore, gotBefore = n, true
			case keyWsAfter:
				o.WorkingSetAfter, gotAfter = n, true
			case keyFreed:
				o.Freed, gotFreed = n, true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return o, fmt.Errorf("failed to read helper output: %w", err)
	}

	if !gotBefore || !gotAfter || !gotFreed {
		return o, fmt.Errorf("helper output is missing size fields (before=%v after=%v freed=%v)",
			gotBefore, gotAfter, gotFreed)
	}
	return o, nil
}
