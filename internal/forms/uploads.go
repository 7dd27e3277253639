package forms

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxExtensionLength = 10

// StoreUpload copies the file at src into the form's uploads directory and
// returns its reference relative to the form directory.
func (r *Repository) StoreUpload(username, slug, fieldName, src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening upload %s: %w", src, err)
	}
	defer in.Close()

	dir := r.settings.UploadsDir(username, slug)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating uploads directory: %w", err)
	}

	name := fieldName + "-" + time.Now().UTC().Format("20060102150405") + "-" + randomHex(4)
	if ext := sanitizeExtension(filepath.Ext(src)); ext != "" {
		name += "." + ext
	}

	out, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("creating upload: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("copying upload: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("closing upload: %w", err)
	}

	return filepath.ToSlash(filepath.Join("uploads", name)), nil
}

func sanitizeExtension(ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimPrefix(ext, ".")) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > maxExtensionLength {
		s = s[:maxExtensionLength]
	}
	return s
}
