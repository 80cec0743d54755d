package utils

import (
	"os"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// InstanceId identifies one ptimer invocation in debug traces.
var InstanceId = gonanoid.MustGenerate("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ", 12)

// Returns true if the specified file exists and is actually a file (not a directory)
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return !info.IsDir()
}
