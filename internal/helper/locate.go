package helper

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// HelperPathEnv overrides helper binary discovery.
const HelperPathEnv = "MEMTRIM_HELPER"

func helperBinaryName() string {
	if runtime.GOOS == "windows" {
		return "trimhelper.exe"
	}
	return "trimhelper"
}

// Locate finds the trim helper binary: the MEMTRIM_HELPER override first,
// then next to the running executable, then on PATH.
func Locate() (string, error) {
	if path := os.Getenv(HelperPathEnv); path != "" {
		return path, nil
	}

	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), helperBinaryName())
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(helperBinaryName()); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%s not found next to the executable, on PATH, or via %s",
		helperBinaryName(), HelperPathEnv)
}
