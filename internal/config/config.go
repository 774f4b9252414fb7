package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWorkers    = 10
	DefaultTimeout    = 30 * time.Second
	DefaultFetchDelay = 500 * time.Millisecond
	DefaultEngine     = "http"
	DefaultSelector   = "#content"
	DefaultSearchURL  = "https://www.xbiquge.la/modules/article/waps.php"
	DefaultBaseURL    = "https://www.xbiquge.la"

	stagingDirName = ".noveld-staging"
)

type Config struct {
	Output  string `yaml:"output"`
	Workers int    `yaml:"workers"`
	// Staging is a local directory or a bucket URL (s3://, gs://, mem://).
	Staging string `yaml:"staging"`
	Engine  string `yaml:"engine"`

	UserAgent  string `yaml:"user_agent"`
	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`

	Timeout    time.Duration `yaml:"timeout"`
	FetchDelay time.Duration `yaml:"fetch_delay"`

	SearchURL       string `yaml:"search_url"`
	BaseURL         string `yaml:"base_url"`
	ContentSelector string `yaml:"content_selector"`

	KeepStaging bool `yaml:"keep_staging"`
	SkipBroken  bool `yaml:"skip_broken"`
	Debug       bool `yaml:"debug"`
	Progress    bool `yaml:"progress"`
}

// Options are the CLI values layered over the active profile. Zero values
// mean "not given"; FetchDelay is a pointer because 0 is meaningful.
type Options struct {
	IgnoreConfig bool
	Debug        bool

	Output     string
	Workers    int
	Staging    string
	Engine     string
	UserAgent  string
	Cookie     string
	CookieFile string
	Timeout    time.Duration
	FetchDelay *time.Duration

	KeepStaging bool
	SkipBroken  bool
	NoProgress  bool
}

func DefaultConfig() *Config {
	return &Config{
		Output:          ".",
		Workers:         DefaultWorkers,
		Engine:          DefaultEngine,
		Timeout:         DefaultTimeout,
		FetchDelay:      DefaultFetchDelay,
		SearchURL:       DefaultSearchURL,
		BaseURL:         DefaultBaseURL,
		ContentSelector: DefaultSelector,
		Progress:        true,
	}
}

// StagingTarget is where segments go: the configured value, or a hidden
// directory inside the output folder.
func (c *Config) StagingTarget() string {
	if c.Staging != "" {
		return c.Staging
	}
	return filepath.Join(c.Output, stagingDirName)
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// loadYAML decodes path over the defaults, so keys missing from older
// profiles keep their default values.
func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged resolves defaults, then the active profile, then opts. The
// second return value describes where the profile came from.
func LoadMerged(opts Options) (*Config, string, error) {
	return DefaultStore().LoadMerged(opts)
}

func (s *Store) LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	_, activePath, err := s.Active()
	if err == ErrNoConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory, run `noveld config init` to create one)", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.Staging != "" {
		c.Staging = o.Staging
	}
	if o.Engine != "" {
		c.Engine = o.Engine
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.FetchDelay != nil {
		c.FetchDelay = *o.FetchDelay
	}
	if o.KeepStaging {
		c.KeepStaging = true
	}
	if o.SkipBroken {
		c.SkipBroken = true
	}
	if o.NoProgress {
		c.Progress = false
	}
}

// normalizeDefaults fills blanks left by hand-edited profiles. A negative
// worker count is kept so the run rejects it.
func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.FetchDelay < 0 {
		c.FetchDelay = 0
	}
	if c.SearchURL == "" {
		c.SearchURL = DefaultSearchURL
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ContentSelector == "" {
		c.ContentSelector = DefaultSelector
	}
}

func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, " -output: %s\n", c.Output)
	fmt.Fprintf(w, " -workers: %d\n", c.Workers)
	fmt.Fprintf(w, " -staging: %s\n", c.StagingTarget())
	fmt.Fprintf(w, " -engine: %s\n", c.Engine)
	fmt.Fprintf(w, " -timeout: %s\n", c.Timeout)
	fmt.Fprintf(w, " -fetch_delay: %s\n", c.FetchDelay)
	fmt.Fprintf(w, " -search_url: %s\n", c.SearchURL)
	fmt.Fprintf(w, " -base_url: %s\n", c.BaseURL)
	fmt.Fprintf(w, " -content_selector: %s\n", c.ContentSelector)
	if c.UserAgent != "" {
		fmt.Fprintf(w, " -user_agent: %s\n", c.UserAgent)
	}
	if c.CookieFile != "" {
		fmt.Fprintf(w, " -cookie_file: %s\n", c.CookieFile)
	}
	if c.KeepStaging {
		fmt.Fprintf(w, " -keep_staging: %t\n", c.KeepStaging)
	}
	if c.SkipBroken {
		fmt.Fprintf(w, " -skip_broken: %t\n", c.SkipBroken)
	}
	if c.Debug {
		fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
	if !c.Progress {
		fmt.Fprintf(w, " -progress: %t\n", c.Progress)
	}
}
