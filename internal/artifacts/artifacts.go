// Package artifacts unwraps containers (zip, war, jar, gzip, tar) recursively
// and hands every leaf entry to the caller as decoded text.
//
// Nothing is extracted to disk: each level reads its parent's bytes in
// memory and extends the relative path with the entry's internal name.
package artifacts

import (
	"errors"
	"io"
	"path"
	"strings"

	"github.com/h2non/filetype"
	"github.com/sensigrep/sensigrep/internal/textdecode"
)

// Format tags how an entry's bytes are interpreted.
type Format string

const (
	FormatText  Format = "text"
	FormatZip   Format = "zip"
	FormatGzip  Format = "gzip"
	FormatTar   Format = "tar"
	FormatClass Format = "class"
	FormatMedia Format = "media"
)

var (
	// ErrContainerFormat is returned for malformed container bytes.
	ErrContainerFormat = errors.New("not a recognized/text file")
	// ErrTooLarge is returned when an entry exceeds Limits.MaxEntryBytes.
	ErrTooLarge = errors.New("entry exceeds byte limit")
	// ErrDepthExceeded is returned when a container sits deeper than Limits.MaxDepth.
	ErrDepthExceeded = errors.New("container nesting exceeds depth limit")
)

// Limits bounds recursive unwrapping. Zero values mean unlimited.
type Limits struct {
	// MaxDepth is the number of container levels that are unwrapped.
	MaxDepth int
	// MaxEntryBytes caps the decompressed size of a single entry.
	MaxEntryBytes int64
}

// Entry is raw bytes at a relative path, before dispatch.
type Entry struct {
	Path   string
	Data   []byte
	Format Format // empty: detect from path and content
}

// TextEntry is a leaf entry after decoding.
type TextEntry struct {
	Path      string
	Text      textdecode.Text
	Raw       []byte
	FromClass bool
}

// DetectFormat picks a format from the entry name; names without an
// extension are sniffed by magic bytes.
func DetectFormat(name string, data []byte) Format {
	lower := strings.ToLower(name)
	switch {
	case hasAnySuffix(lower, ".zip", ".war", ".jar"):
		return FormatZip
	case hasAnySuffix(lower, ".gz", ".tgz"):
		return FormatGzip
	case strings.HasSuffix(lower, ".tar"):
		return FormatTar
	case strings.HasSuffix(lower, ".class"):
		return FormatClass
	}
	if path.Ext(lower) != "" {
		return FormatText
	}
	return sniff(data)
}

func sniff(data []byte) Format {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return FormatText
	}
	switch kind.Extension {
	case "zip":
		return FormatZip
	case "gz":
		return FormatGzip
	case "tar":
		return FormatTar
	}
	if filetype.IsImage(data) || filetype.IsVideo(data) || filetype.IsAudio(data) || filetype.IsFont(data) {
		return FormatMedia
	}
	return FormatText
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func isTarGz(name string) bool {
	return hasAnySuffix(strings.ToLower(name), ".tar.gz", ".tgz")
}

func isGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

// readBounded reads r fully, failing with ErrTooLarge past max bytes.
func readBounded(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, ErrTooLarge
	}
	return b, nil
}
