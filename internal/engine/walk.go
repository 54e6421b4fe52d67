package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/sensigrep/sensigrep/internal/artifacts"
	"github.com/sensigrep/sensigrep/internal/ignore"
	"github.com/sensigrep/sensigrep/internal/scanner"
	"github.com/sensigrep/sensigrep/internal/types"
)

// Walk invokes handle for each eligible regular file under cfg.Root, with its
// path relative to the root. A root that is a single file is handled alone
// under its base name. Unreadable files are reported and skipped.
func Walk(ctx context.Context, cfg Config, ign ignore.Matcher, report func(types.Diagnostic), handle func(rel string, data []byte)) error {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRoot, err)
	}
	if !info.IsDir() {
		rel := scanner.RelativePath(cfg.Root, cfg.Root)
		data, err := readFile(cfg.Root, info.Size(), cfg.MaxBytes)
		if errors.Is(err, artifacts.ErrTooLarge) {
			report(types.Diagnostic{Path: rel, Kind: types.DiagRead, Err: err.Error()})
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRoot, err)
		}
		handle(rel, data)
		return nil
	}
	return filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == cfg.Root {
				return fmt.Errorf("%w: %v", ErrRoot, err)
			}
			report(types.Diagnostic{Path: scanner.RelativePath(cfg.Root, p), Kind: types.DiagRead, Err: err.Error()})
			return nil
		}
		if d.IsDir() {
			if p != cfg.Root && cfg.DefaultExcludes && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel := scanner.RelativePath(cfg.Root, p)
		if !allowedByGlobs(rel, cfg) || ign.Match(rel) {
			return nil
		}
		if cfg.DefaultExcludes && isDefaultFileExcluded(rel) {
			return nil
		}
		var size int64
		if fi, err := d.Info(); err == nil {
			size = fi.Size()
		}
		data, err := readFile(p, size, cfg.MaxBytes)
		if err != nil {
			report(types.Diagnostic{Path: rel, Kind: types.DiagRead, Err: err.Error()})
			return nil
		}
		handle(rel, data)
		return nil
	})
}

func readFile(p string, size, max int64) ([]byte, error) {
	if max > 0 && size > max {
		return nil, artifacts.ErrTooLarge
	}
	return os.ReadFile(p)
}

// allowedByGlobs applies the comma-separated include globs as a positive
// filter, then subtracts the exclude globs.
func allowedByGlobs(relPath string, cfg Config) bool {
	rp := strings.ReplaceAll(relPath, "\\", "/")
	if includes := parseGlobsList(cfg.IncludeGlobs); len(includes) > 0 && !matchAnyGlob(rp, includes) {
		return false
	}
	if excludes := parseGlobsList(cfg.ExcludeGlobs); len(excludes) > 0 && matchAnyGlob(rp, excludes) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	base := filepath.Base(pathToMatch)
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
