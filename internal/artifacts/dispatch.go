package artifacts

import (
	"context"
	"errors"
	"log/slog"
	"path"

	"github.com/sensigrep/sensigrep/internal/decompile"
	"github.com/sensigrep/sensigrep/internal/textdecode"
	"github.com/sensigrep/sensigrep/internal/types"
)

// Dispatcher routes entries to the matching extractor and recurses into
// nested containers. Failures are reported and the entry skipped; siblings
// continue.
type Dispatcher struct {
	Limits Limits
	// Decompiler turns .class entries into source text. Nil skips them.
	Decompiler decompile.Decompiler
	// Report receives a diagnostic for every skipped entry.
	Report func(types.Diagnostic)
	Logger *slog.Logger
}

// Dispatch unwraps e and calls visit once per text entry, in container order.
func (d *Dispatcher) Dispatch(ctx context.Context, e Entry, visit func(TextEntry)) {
	d.dispatch(ctx, e, 0, visit)
}

func (d *Dispatcher) dispatch(ctx context.Context, e Entry, depth int, visit func(TextEntry)) {
	if ctx.Err() != nil {
		return
	}
	if e.Format == "" {
		e.Format = DetectFormat(e.Path, e.Data)
	}
	var err error
	switch e.Format {
	case FormatZip, FormatGzip, FormatTar:
		if d.Limits.MaxDepth > 0 && depth >= d.Limits.MaxDepth {
			d.skip(e.Path, types.DiagContainerFormat, ErrDepthExceeded)
			return
		}
	}
	switch e.Format {
	case FormatZip:
		err = d.zip(ctx, e, depth, visit)
	case FormatGzip:
		err = d.gzip(ctx, e, depth, visit)
	case FormatTar:
		err = d.tar(ctx, e, depth, visit)
	case FormatClass:
		d.class(ctx, e, visit)
	case FormatMedia:
		d.skip(e.Path, types.DiagEntryDecode, textdecode.ErrNotText)
	default:
		d.text(e, visit)
	}
	if err != nil {
		d.skip(e.Path, readKind(err), err)
	}
}

func (d *Dispatcher) text(e Entry, visit func(TextEntry)) {
	t, err := textdecode.Decode(e.Data)
	if err != nil {
		d.skip(e.Path, types.DiagEntryDecode, err)
		return
	}
	visit(TextEntry{Path: e.Path, Text: t, Raw: e.Data})
}

// class decompiles on the caller's goroutine, so at most one decompiler
// process runs at a time.
func (d *Dispatcher) class(ctx context.Context, e Entry, visit func(TextEntry)) {
	if d.Decompiler == nil {
		d.skip(e.Path, types.DiagExternalTool, decompile.ErrNoDecompiler)
		return
	}
	src, err := d.Decompiler.Decompile(ctx, path.Base(e.Path), e.Data)
	if err != nil {
		d.skip(e.Path, types.DiagExternalTool, err)
		return
	}
	visit(TextEntry{
		Path:      e.Path,
		Text:      textdecode.Text{Content: src, Encoding: textdecode.UTF8},
		Raw:       []byte(src),
		FromClass: true,
	})
}

func (d *Dispatcher) skip(p string, kind types.DiagnosticKind, err error) {
	d.logger().Debug("entry skipped", "path", p, "kind", string(kind), "error", err)
	if d.Report != nil {
		d.Report(types.Diagnostic{Path: p, Kind: kind, Err: err.Error()})
	}
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// readKind maps read errors onto diagnostic kinds.
func readKind(err error) types.DiagnosticKind {
	if errors.Is(err, ErrTooLarge) {
		return types.DiagRead
	}
	return types.DiagContainerFormat
}
