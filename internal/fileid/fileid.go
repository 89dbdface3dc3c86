// Package fileid derives stable course ids from posting file paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "course-"

// CourseID returns the id used for a course posting file that does not name its own id.
// The same path always yields the same id, so editing a posting updates the course in place.
func CourseID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	hash := sha256.Sum256([]byte(filepath.Clean(path)))
	return prefix + hex.EncodeToString(hash[:8])
}
