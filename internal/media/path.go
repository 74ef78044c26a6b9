package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImagePath builds the storage path for a property image upload:
// properties/{external_id}/{random_hex}{ext}. The random component makes
// repeated uploads of the same filename collision-free, and grouping by
// external_id keeps all images of one property under one directory.
// Extension comes from the original filename, lower-cased; files without
// an extension default to .jpg.
func ImagePath(externalID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	name := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("properties/%s/%s%s", externalID, name, ext)
}
