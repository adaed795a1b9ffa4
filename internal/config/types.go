package config

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

const (
	DefaultOutput      = ".outline"
	DefaultParallel    = 4
	DefaultMaxFileSize = 2 << 20
	DefaultFormat      = "tree"
	DefaultFindLimit   = 20
	DefaultTimeout     = 30 * time.Second
	DefaultRetries     = 2
)

func DefaultIncludes() []string {
	return []string{
		"**/*.cs",
		"**/*.java",
		"**/*.{js,mjs,cjs,jsx,ts,tsx,mts,cts}",
		"**/*.{vue,svelte}",
		"**/*.{html,htm,xml,xaml,svg}",
		"**/*.{md,markdown,mdx}",
	}
}

func DefaultExcludes() []string {
	return []string{
		"**/node_modules/**",
		"**/.git/**",
		"**/bin/**",
		"**/obj/**",
		"**/dist/**",
		"**/" + DefaultOutput + "/**",
	}
}

type Config struct {
	Output      string            `koanf:"output"`
	Parallel    int               `koanf:"parallel"      validate:"min=1,max=64"`
	MaxFileSize int64             `koanf:"max_file_size" validate:"min=1"`
	Include     []string          `koanf:"include"       validate:"dive,required,glob"`
	Exclude     []string          `koanf:"exclude"       validate:"dive,required,glob"`
	Aliases     map[string]string `koanf:"aliases"       validate:"dive,keys,required,endkeys,required"`
	Display     Display           `koanf:"display"`
	Remote      Remote            `koanf:"remote"`
	ConfigDir   string            `koanf:"-"`
}

// Display controls how outlines are rendered.
type Display struct {
	Format    string `koanf:"format"     validate:"oneof=tree json"`
	HideDocs  bool   `koanf:"hide_docs"`
	NoColor   bool   `koanf:"no_color"`
	FindLimit int    `koanf:"find_limit" validate:"min=1"`
}

// Remote configures fetching documents from URLs.
type Remote struct {
	Timeout   time.Duration `koanf:"timeout"    validate:"min=0"`
	Retries   int           `koanf:"retries"    validate:"min=0,max=10"`
	UserAgent string        `koanf:"user_agent"`
}

// Default returns a configuration rooted at dir with every default applied.
func Default(dir string) *Config {
	cfg := &Config{ConfigDir: dir}
	cfg.ApplyDefaults()
	cfg.Output = cfg.OutputDir()
	return cfg
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
		return doublestar.ValidatePattern(fl.Field().String())
	})

	return v
}

func (c *Config) ApplyDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Parallel == 0 {
		c.Parallel = DefaultParallel
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if len(c.Include) == 0 {
		c.Include = DefaultIncludes()
	}
	if c.Exclude == nil {
		c.Exclude = DefaultExcludes()
	}
	if c.Display.Format == "" {
		c.Display.Format = DefaultFormat
	}
	if c.Display.FindLimit == 0 {
		c.Display.FindLimit = DefaultFindLimit
	}
	if c.Remote.Timeout == 0 {
		c.Remote.Timeout = DefaultTimeout
	}
	if c.Remote.Retries == 0 {
		c.Remote.Retries = DefaultRetries
	}

	if len(c.Aliases) > 0 {
		normalized := make(map[string]string, len(c.Aliases))
		for key, target := range c.Aliases {
			normalized[normalizeExt(key)] = normalizeExt(target)
		}
		c.Aliases = normalized
	}
}

func (c *Config) Validate() error {
	valErr := newValidator().Struct(c)
	if valErr == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(valErr, &validationErrors) {
		return oops.
			Code("CONFIG_INVALID").
			Wrapf(valErr, "validating config")
	}

	return mapValidationError(c, validationErrors[0])
}

func mapValidationError(c *Config, fe validator.FieldError) error {
	field := strings.ToLower(fe.Field())

	switch {
	case field == "parallel":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "parallel").
			With("value", c.Parallel).
			Hint("Set parallel between 1 and 64").
			Errorf("invalid parallel value %d", c.Parallel)

	case fe.Tag() == "glob":
		return oops.
			Code("CONFIG_INVALID").
			With("field", fe.Namespace()).
			With("value", fe.Value()).
			Hint("Check brackets and braces in the glob pattern").
			Errorf("invalid glob pattern %q", fe.Value())

	case field == "format":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "display.format").
			With("value", c.Display.Format).
			Hint("Supported formats: tree, json").
			Errorf("unknown display format %q", c.Display.Format)

	case strings.HasPrefix(fe.Namespace(), "Config.Aliases"):
		return oops.
			Code("CONFIG_INVALID").
			With("field", "aliases").
			Hint("Aliases map an extension to a supported one, e.g. \".razor\" = \".html\"").
			Errorf("empty alias in config")

	default:
		return oops.
			Code("CONFIG_INVALID").
			With("field", field).
			With("tag", fe.Tag()).
			Errorf("validation failed for field %q", fe.Namespace())
	}
}

// OutputDir returns the index directory, resolved against the config file.
func (c *Config) OutputDir() string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}
	return filepath.Clean(filepath.Join(c.ConfigDir, c.Output))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
