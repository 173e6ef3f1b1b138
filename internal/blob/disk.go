// internal/blob/disk.go
//
// Disk-backed Store.  Objects land under <root>/<container>/<name> and are
// served by the front proxy at <baseURL>/<container>/<name>.

package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores blobs on the local filesystem.
type Disk struct {
	root    string
	baseURL string // no trailing slash
}

// NewDisk returns a Store rooted at dir.  baseURL is the public prefix the
// proxy serves dir under.
func NewDisk(dir, baseURL string) *Disk {
	return &Disk{root: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Put writes r to disk under a stamped name and returns its public URL.
func (d *Disk) Put(ctx context.Context, container, name string, r io.Reader) (string, error) {
	stored := StampName(name)
	dir := filepath.Join(d.root, container)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("blob: create container: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, stored))
	if err != nil {
		return "", fmt.Errorf("blob: create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("blob: write object: %w", err)
	}
	return d.baseURL + "/" + container + "/" + url.PathEscape(stored), nil
}

// DeleteIfExists removes the named object if present.
func (d *Disk) DeleteIfExists(ctx context.Context, container, name string) (bool, error) {
	err := os.Remove(filepath.Join(d.root, container, filepath.Base(name)))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
