package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sensigrep/sensigrep/internal/scanner"
	"github.com/sensigrep/sensigrep/internal/textdecode"
)

// TarBlockSize is the tar header and record alignment.
const TarBlockSize = 512

// TarPadding is the number of bytes that follow size content bytes to reach
// the next block boundary.
func TarPadding(size int64) int64 {
	return (TarBlockSize - size%TarBlockSize) % TarBlockSize
}

type tarHeader struct {
	Name     string
	Size     int64
	Typeflag byte
}

// regular reports whether the entry carries file content worth scanning.
func (h tarHeader) regular() bool {
	switch h.Typeflag {
	case '0', 0, '7':
		return !strings.HasSuffix(h.Name, "/")
	}
	return false
}

// parseTarHeader reads name (bytes 0-100, with the ustar prefix when present),
// octal size (124-136) and type flag (156) from one header block.
func parseTarHeader(b []byte) (tarHeader, error) {
	name := strings.Trim(string(b[0:100]), "\x00")
	if name == "" {
		return tarHeader{}, nil
	}
	if string(b[257:263]) == "ustar\x00" {
		if prefix := strings.Trim(string(b[345:500]), "\x00"); prefix != "" {
			name = prefix + "/" + name
		}
	}
	var size int64
	if raw := strings.Trim(string(b[124:136]), "\x00 "); raw != "" {
		n, err := strconv.ParseInt(raw, 8, 64)
		if err != nil || n < 0 {
			return tarHeader{}, fmt.Errorf("%w: tar: bad size %q for %s", ErrContainerFormat, raw, name)
		}
		size = n
	}
	return tarHeader{Name: name, Size: size, Typeflag: b[156]}, nil
}

// tar walks fixed 512-byte blocks: header, size bytes of content, padding.
// It stops at a short header read or an empty name.
func (d *Dispatcher) tar(ctx context.Context, e Entry, depth int, visit func(TextEntry)) error {
	r := bytes.NewReader(e.Data)
	block := make([]byte, TarBlockSize)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := io.ReadFull(r, block); err != nil {
			return nil
		}
		h, err := parseTarHeader(block)
		if err != nil {
			return err
		}
		if h.Name == "" {
			return nil
		}
		if h.Size > int64(r.Len()) {
			return fmt.Errorf("%w: tar: %s truncated", ErrContainerFormat, h.Name)
		}
		p := scanner.JoinPath(e.Path, textdecode.DecodeName(h.Name))
		switch {
		case !h.regular():
			_, _ = r.Seek(h.Size, io.SeekCurrent)
		case d.Limits.MaxEntryBytes > 0 && h.Size > d.Limits.MaxEntryBytes:
			_, _ = r.Seek(h.Size, io.SeekCurrent)
			d.skip(p, readKind(ErrTooLarge), ErrTooLarge)
		default:
			content := make([]byte, h.Size)
			if _, err := io.ReadFull(r, content); err != nil {
				return fmt.Errorf("%w: tar: %s: %v", ErrContainerFormat, h.Name, err)
			}
			d.dispatch(ctx, Entry{Path: p, Data: content}, depth+1, visit)
		}
		if _, err := r.Seek(TarPadding(h.Size), io.SeekCurrent); err != nil {
			return nil
		}
	}
}
