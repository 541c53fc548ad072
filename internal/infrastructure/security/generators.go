// Package security provides secure random generation utilities
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// GenerateULID generates a new ULID string.
func GenerateULID() string {
	return ulid.Make().String()
}

// GenerateSEOFileName builds a collision-resistant stored filename for
// an uploaded image: img-{unix-millis}-{random}.{ext}. The extension is
// taken from the original name, defaulting to webp.
func GenerateSEOFileName(originalName string) string {
	ext := "webp"
	if idx := strings.LastIndex(originalName, "."); idx >= 0 && idx < len(originalName)-1 {
		ext = strings.ToLower(originalName[idx+1:])
	}

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// Fall back to nanosecond entropy; filenames only need uniqueness.
		return fmt.Sprintf("img-%d-%d.%s", time.Now().UnixMilli(), time.Now().UnixNano()%100000, ext)
	}
	return fmt.Sprintf("img-%d-%s.%s", time.Now().UnixMilli(), hex.EncodeToString(buf), ext)
}
