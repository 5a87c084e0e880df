// Package naming derives artifact paths from engine object names.
package naming

import (
	"fmt"
	"path"
	"strings"

	"github.com/custodia-labs/assetsync/internal/core/domain"
)

var unsafe = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_", "\x00", "_",
)

// Safe turns an object name into a single path segment. Empty names, and names
// that would escape the destination, fall back to "<type>_<path id>".
func Safe(name string, tag domain.TypeTag, id int64) string {
	name = strings.TrimSpace(unsafe.Replace(name))
	if name == "" || name == "." || name == ".." {
		return fmt.Sprintf("%s_%d", tag, id)
	}
	return name
}

// Join places an artifact name under a destination folder.
func Join(dir, name string) string {
	return path.Join(dir, name)
}
