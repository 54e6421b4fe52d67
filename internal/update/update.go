// Package update checks for a newer sensigrep release. Results are cached
// for a day and the check is skipped in CI.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	semver "github.com/blang/semver/v4"
)

const (
	repoLatestURL = "https://api.github.com/repos/sensigrep/sensigrep/releases/latest"
	cacheFileName = "update.json"
	cacheTTL      = 24 * time.Hour
)

type cache struct {
	LastChecked time.Time `json:"last_checked"`
	Latest      string    `json:"latest"`
}

// Checker looks up the latest release. The zero value uses GitHub.
type Checker struct {
	URL    string
	Client *http.Client
}

func configDir() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "sensigrep")
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "sensigrep")
}

func loadCache() (cache, error) {
	var c cache
	dir := configDir()
	if dir == "" {
		return c, errors.New("no config dir")
	}
	b, err := os.ReadFile(filepath.Join(dir, cacheFileName))
	if err != nil {
		return c, err
	}
	_ = json.Unmarshal(b, &c)
	return c, nil
}

func saveCache(c cache) {
	dir := configDir()
	if dir == "" {
		return
	}
	_ = os.MkdirAll(dir, 0o755)
	b, _ := json.MarshalIndent(c, "", "  ")
	_ = os.WriteFile(filepath.Join(dir, cacheFileName), b, 0o644)
}

// Latest fetches the newest release tag.
func (c Checker) Latest(ctx context.Context) (string, error) {
	url := c.URL
	if url == "" {
		url = repoLatestURL
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "sensigrep-update-check")
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release lookup: %s", resp.Status)
	}
	var obj struct {
		TagName string `json:"tag_name"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return "", err
	}
	v := obj.TagName
	if v == "" {
		v = obj.Name
	}
	return normalize(v), nil
}

// Check returns (latest, isNewer, error).
func (c Checker) Check(ctx context.Context, current string, noNetwork bool) (string, bool, error) {
	if os.Getenv("CI") != "" || noNetwork {
		return "", false, nil
	}
	cached, _ := loadCache()
	latest := cached.Latest
	if time.Since(cached.LastChecked) > cacheTTL || latest == "" {
		if v, err := c.Latest(ctx); err == nil && v != "" {
			latest = v
			saveCache(cache{LastChecked: time.Now(), Latest: v})
		}
	}
	newer, err := Newer(latest, current)
	if err != nil {
		return latest, false, nil
	}
	return latest, newer, nil
}

// Newer reports whether latest is a higher version than current. Leading
// "v" and missing minor or patch parts are tolerated.
func Newer(latest, current string) (bool, error) {
	if latest == "" || current == "" {
		return false, errors.New("empty version")
	}
	l, err := semver.ParseTolerant(latest)
	if err != nil {
		return false, fmt.Errorf("parse %q: %w", latest, err)
	}
	cur, err := semver.ParseTolerant(current)
	if err != nil {
		return false, fmt.Errorf("parse %q: %w", current, err)
	}
	return l.GT(cur), nil
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimPrefix(v, "v")
}
