package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/klauspost/compress/gzip"
)

// MaxGzipLayers bounds gzip-in-gzip chains.
const MaxGzipLayers = 8

// gzip decompresses one stream and decides what the payload is: a tar when
// the name says .tar.gz/.tgz, else a zip if it parses as one, else another
// gzip layer, else text. The payload keeps the gzip file's path and its
// nesting depth: compression is not a container level of its own.
func (d *Dispatcher) gzip(ctx context.Context, e Entry, depth int, visit func(TextEntry)) error {
	data := e.Data
	for layer := 1; ; layer++ {
		out, err := gunzip(data, d.Limits.MaxEntryBytes)
		if err != nil {
			if errors.Is(err, ErrTooLarge) {
				return err
			}
			return fmt.Errorf("%w: gzip: %v", ErrContainerFormat, err)
		}
		inner := Entry{Path: e.Path, Data: out, Format: FormatText}
		switch {
		case isTarGz(e.Path):
			inner.Format = FormatTar
		case isZip(out):
			inner.Format = FormatZip
		case isGzip(out):
			if layer >= MaxGzipLayers {
				return fmt.Errorf("%w: gzip: more than %d nested layers", ErrContainerFormat, MaxGzipLayers)
			}
			data = out
			continue
		}
		d.dispatch(ctx, inner, depth, visit)
		return nil
	}
}

func gunzip(b []byte, max int64) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return readBounded(zr, max)
}
