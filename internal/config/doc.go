// Package config loads sensigrep configuration from local and global YAML
// files. Precedence (CLI > local > global) is applied by the CLI, which maps
// flags and files into engine configuration.
package config
