package sensigrep

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sensigrep/sensigrep/internal/artifacts"
	"github.com/sensigrep/sensigrep/internal/config"
	"github.com/sensigrep/sensigrep/internal/decompile"
	"github.com/sensigrep/sensigrep/internal/engine"
	"github.com/sensigrep/sensigrep/internal/rules"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	flagPath          string
	flagRules         string
	flagInclude       string
	flagExclude       string
	flagMaxBytes      int64
	flagMaxEntryBytes int64
	flagMaxDepth      int
	flagDecompiler    string
	flagMatchTimeout  time.Duration
	flagBaseline      string
)

const defaultBaselineFile = "sensigrep.baseline.json"

// addScanFlags registers the flags shared by every command that runs a scan.
func addScanFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&flagPath, "path", "p", ".", "file or directory to scan")
	fs.StringVar(&flagRules, "rules", "", "built-in rule set: log|package|all (default all)")
	fs.StringVar(&flagInclude, "include", "", "comma-separated include globs")
	fs.StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	fs.Int64Var(&flagMaxBytes, "max-bytes", 0, "skip files larger than this (0 = no limit)")
	fs.Int64Var(&flagMaxEntryBytes, "max-entry-bytes", 0, "skip archive entries larger than this once unpacked (0 = no limit)")
	fs.IntVar(&flagMaxDepth, "max-depth", 0, "max archive nesting depth (0 = unlimited)")
	fs.StringVar(&flagDecompiler, "decompiler", "", "class decompiler command, {file} is the class path (\"none\" disables)")
	fs.DurationVar(&flagMatchTimeout, "match-timeout", 0, "per-line regex time limit (default 2s)")
	fs.StringVar(&flagBaseline, "baseline", defaultBaselineFile, "baseline file of accepted matches")
}

// settings is the resolved configuration of one command invocation.
type settings struct {
	engine  engine.Config
	local   config.FileConfig
	global  config.FileConfig
	noColor bool
}

func loadConfigs(root string, log *slog.Logger) (local, global config.FileConfig) {
	if c, err := config.LoadGlobal(); err == nil {
		global = c
	} else if !errors.Is(err, config.ErrNoConfig) {
		log.Warn("global config ignored", "error", err)
	}
	dir := root
	if st, err := os.Stat(root); err == nil && !st.IsDir() {
		dir = filepath.Dir(root)
	}
	if c, err := config.LoadLocal(dir); err == nil {
		local = c
	} else if !errors.Is(err, config.ErrNoConfig) {
		log.Warn("local config ignored", "error", err)
	}
	return local, global
}

// resolveRules: an explicit --rules picks a built-in set; otherwise rules
// defined in the local config, then the global config, replace the catalogue.
func resolveRules(cmd *cobra.Command, local, global config.FileConfig) ([]rules.PatternRule, error) {
	if !cmd.Flags().Changed("rules") {
		for _, fc := range []config.FileConfig{local, global} {
			rs, err := fc.PatternRules()
			if err != nil {
				return nil, err
			}
			if rs != nil {
				return rs, nil
			}
		}
	}
	name := pickString(flagRules, local.RuleSet, global.RuleSet)
	switch name {
	case "":
		name = rules.SetAll
	case rules.SetLog, rules.SetPackage, rules.SetAll:
	default:
		return nil, fmt.Errorf("unknown rule set %q (want log, package or all)", name)
	}
	return rules.Set(name), nil
}

// resolveDecompiler returns nil when class files cannot be decompiled. The
// default command is used only when its program is installed.
func resolveDecompiler(local, global config.FileConfig) (decompile.Decompiler, error) {
	cmdline := pickString(flagDecompiler, local.Decompiler, global.Decompiler)
	if cmdline == "none" {
		return nil, nil
	}
	explicit := cmdline != ""
	if !explicit {
		cmdline = decompile.DefaultCommand
	}
	x, err := decompile.NewExec(cmdline)
	if err != nil {
		return nil, err
	}
	if err := x.Available(); err != nil {
		if explicit {
			return nil, err
		}
		return nil, nil
	}
	return x, nil
}

func resolve(cmd *cobra.Command, log *slog.Logger) (settings, error) {
	abs, err := filepath.Abs(flagPath)
	if err != nil {
		return settings{}, err
	}
	local, global := loadConfigs(abs, log)
	rs, err := resolveRules(cmd, local, global)
	if err != nil {
		return settings{}, err
	}
	dec, err := resolveDecompiler(local, global)
	if err != nil {
		return settings{}, err
	}
	timeout := flagMatchTimeout
	if timeout == 0 {
		timeout = local.Timeout()
	}
	if timeout == 0 {
		timeout = global.Timeout()
	}

	flags := cmd.Flags()
	s := settings{local: local, global: global}
	s.engine = engine.Config{
		Root:            abs,
		Rules:           rs,
		IncludeGlobs:    pickString(flagInclude, local.Include, global.Include),
		ExcludeGlobs:    pickString(flagExclude, local.Exclude, global.Exclude),
		DefaultExcludes: pickBool(flagDefaultExcludes, flags.Changed("default-excludes"), local.DefaultExcludes, global.DefaultExcludes, true),
		MaxBytes:        pickInt64(flagMaxBytes, local.MaxBytes, global.MaxBytes),
		Concurrency:     pickInt(flagConcurrency, local.Concurrency, global.Concurrency),
		Limits: artifacts.Limits{
			MaxDepth:      pickInt(flagMaxDepth, local.MaxDepth, global.MaxDepth),
			MaxEntryBytes: pickInt64(flagMaxEntryBytes, local.MaxEntryBytes, global.MaxEntryBytes),
		},
		Decompiler:   dec,
		MatchTimeout: timeout,
		Logger:       log,
	}
	s.noColor = pickBool(flagNoColor, flags.Changed("no-color"), local.NoColor, global.NoColor, false) ||
		os.Getenv("NO_COLOR") != ""
	return s, nil
}
