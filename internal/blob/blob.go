// internal/blob/blob.go
//
// Blob store contract for uploaded images and letters.
//
// Context
// -------
// Handlers only need two verbs: put a byte stream under a container and get
// back a public URL, and delete-if-exists by stored name.  The original
// deployment used Azure block blobs; the Store interface keeps the handlers
// ignorant of the provider so the disk implementation below can serve
// development and self-hosted installs.
//
// Notes
// -----
// • Stored names are the client file name stamped with a short random
//   suffix, so re-uploads of "photo.jpg" never collide.
// • Oxford commas, two spaces after periods.

package blob

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Well-known containers, one per upload kind.
const (
	ContainerLetters  = "hours-letters"
	ContainerHeaders  = "header-images"
	ContainerPhotos   = "exec-photos"
	ContainerSponsors = "sponsor-images"
)

// Store accepts uploads and hands back public URLs.
type Store interface {
	// Put streams r into container under a stamped variant of name and
	// returns the public URL of the stored object.
	Put(ctx context.Context, container, name string, r io.Reader) (string, error)

	// DeleteIfExists removes the named object.  It reports whether an
	// object was actually deleted; a missing object is not an error.
	DeleteIfExists(ctx context.Context, container, name string) (bool, error)
}

// StampName inserts a random eight-character suffix before the extension:
// "photo.jpg" becomes "photo.1a2b3c4d.jpg".
func StampName(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return stem + "." + stamp + ext
}
