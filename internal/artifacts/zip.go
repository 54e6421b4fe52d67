package artifacts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/klauspost/compress/zip"
	"github.com/sensigrep/sensigrep/internal/scanner"
	"github.com/sensigrep/sensigrep/internal/textdecode"
)

// zip handles .zip, .war and .jar alike. Entry names may be GBK encoded.
func (d *Dispatcher) zip(ctx context.Context, e Entry, depth int, visit func(TextEntry)) error {
	zr, err := zip.NewReader(bytes.NewReader(e.Data), int64(len(e.Data)))
	if err != nil {
		return fmt.Errorf("%w: zip: %v", ErrContainerFormat, err)
	}
	for _, f := range zr.File {
		if ctx.Err() != nil {
			return nil
		}
		if f.FileInfo().IsDir() {
			continue
		}
		p := scanner.JoinPath(e.Path, textdecode.DecodeName(f.Name))
		b, err := readZipFile(f, d.Limits.MaxEntryBytes)
		if err != nil {
			d.skip(p, readKind(err), err)
			continue
		}
		d.dispatch(ctx, Entry{Path: p, Data: b}, depth+1, visit)
	}
	return nil
}

func readZipFile(f *zip.File, max int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContainerFormat, err)
	}
	defer rc.Close()
	return readBounded(rc, max)
}

func isZip(b []byte) bool {
	_, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	return err == nil
}
