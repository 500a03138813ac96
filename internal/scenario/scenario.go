// Package scenario ships ready-made simulation presets embedded in the
// binary. Presets are plain config YAML, so anything loadable here can
// also be written to disk, edited, and passed back via --config.
package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/nvandessel/womsim/internal/config"
)

//go:embed *.yaml
var presetFS embed.FS

// List returns the available preset names in sorted order.
func List() []string {
	matches, err := fs.Glob(presetFS, "*.yaml")
	if err != nil {
		// The pattern is a constant; Glob can only fail on a bad pattern.
		panic(err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Load parses and validates the named preset.
func Load(name string) (*config.Config, error) {
	data, err := Raw(name)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	return cfg, nil
}

// Raw returns the named preset's YAML source, comments included.
func Raw(name string) ([]byte, error) {
	data, err := presetFS.ReadFile(name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown scenario %q (available: %s)", name, strings.Join(List(), ", "))
	}
	return data, nil
}
