package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

// StarterTOML is the file written by `outline init`.
const StarterTOML = `# outline configuration
output = ".outline"
parallel = 4
max_file_size = 2097152

include = [
  "**/*.cs",
  "**/*.java",
  "**/*.{js,mjs,cjs,jsx,ts,tsx,mts,cts}",
  "**/*.{vue,svelte}",
  "**/*.{html,htm,xml,xaml,svg}",
  "**/*.{md,markdown,mdx}",
]
exclude = ["**/node_modules/**", "**/.git/**", "**/bin/**", "**/obj/**", "**/dist/**", "**/.outline/**"]

[aliases]
# ".razor" = ".html"

[display]
format = "tree"
hide_docs = false
no_color = false
find_limit = 20

[remote]
timeout = "30s"
retries = 2
`

// WriteStarter writes StarterTOML to dir/outline.toml. An existing file is
// only replaced when force is set.
func WriteStarter(dir string, force bool) (string, error) {
	path := filepath.Join(dir, configFilenames()[0])

	if _, err := os.Stat(path); err == nil && !force {
		return "", oops.
			Code("CONFIG_EXISTS").
			With("path", path).
			Hint("Pass --force to overwrite it").
			Errorf("config file %q already exists", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", oops.Wrapf(err, "checking config file %q", path)
	}

	if err := os.WriteFile(path, []byte(StarterTOML), 0o644); err != nil {
		return "", oops.
			Code("CONFIG_WRITE_ERROR").
			With("path", path).
			Wrapf(err, "writing config file %q", path)
	}
	return path, nil
}
