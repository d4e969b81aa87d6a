package validate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"libraryapi/internal/apperr"
)

var (
	DefaultAllowedExtensions = []string{"jpg", "jpeg", "png", "gif", "pdf"}

	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	repeatedUnderscores = regexp.MustCompile(`_+`)
)

// DefaultMaxUploadSize is 5 MiB.
const DefaultMaxUploadSize int64 = 5 << 20

// UploadPolicy describes what files the service accepts.
type UploadPolicy struct {
	AllowedExtensions []string
	MaxSize           int64
}

func (p UploadPolicy) allowed(ext string) bool {
	exts := p.AllowedExtensions
	if len(exts) == 0 {
		exts = DefaultAllowedExtensions
	}
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, a := range exts {
		if strings.TrimPrefix(strings.ToLower(strings.TrimSpace(a)), ".") == ext {
			return true
		}
	}
	return false
}

func (p UploadPolicy) maxSize() int64 {
	if p.MaxSize <= 0 {
		return DefaultMaxUploadSize
	}
	return p.MaxSize
}

// Check validates an upload by name, declared size and the first bytes of
// its content. The sniffed content type must also map to an allowed
// extension so a renamed file cannot slip through.
func (p UploadPolicy) Check(field, filename string, size int64, head []byte) error {
	v := apperr.NewValidation()

	ext := filepath.Ext(filename)
	if ext == "" || !p.allowed(ext) {
		v.Add(field, fmt.Sprintf("File extension %q is not allowed", strings.TrimPrefix(ext, ".")))
	}
	if size > p.maxSize() {
		v.Add(field, fmt.Sprintf("File size must not exceed %d bytes", p.maxSize()))
	}
	if len(head) > 0 {
		mt := mimetype.Detect(head)
		if !p.allowed(mt.Extension()) {
			v.Add(field, fmt.Sprintf("File content type %s is not allowed", mt.String()))
		}
	}
	return v.Err()
}

// Filename reduces name to a safe base name: directories are dropped, unsafe
// characters become underscores and runs of underscores collapse.
func Filename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	base := filepath.Base(name)
	if base == "." || base == "/" {
		base = ""
	}
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = repeatedUnderscores.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, ".")
	if base == "" {
		return "upload"
	}
	return base
}
