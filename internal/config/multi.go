package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoConfig = errors.New("no config selected")

const DefaultLabel = "Default"

func ConfigRoot() string {
	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "noveld")
	}

	// Linux/macOS XDG
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "noveld")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "noveld")
}

// Store keeps labelled YAML profiles under Root/configs and remembers the
// active label in Root/current_config.
type Store struct {
	Root string
}

func DefaultStore() *Store {
	return &Store{Root: ConfigRoot()}
}

func (s *Store) ConfigsDir() string {
	return filepath.Join(s.Root, "configs")
}

func (s *Store) currentFile() string {
	return filepath.Join(s.Root, "current_config")
}

func (s *Store) Path(label string) string {
	return filepath.Join(s.ConfigsDir(), label+".yaml")
}

func (s *Store) ensureDirs() error {
	return os.MkdirAll(s.ConfigsDir(), 0755)
}

func (s *Store) CurrentLabel() (string, error) {
	b, err := os.ReadFile(s.currentFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	label := strings.TrimSpace(string(b))
	if label == "" {
		return "", ErrNoConfig
	}
	return label, nil
}

// Active returns the active label and its profile path. A label whose
// profile file is gone counts as no selection.
func (s *Store) Active() (string, string, error) {
	label, err := s.CurrentLabel()
	if err != nil {
		return "", "", err
	}

	path := s.Path(label)
	if _, err := os.Stat(path); err != nil {
		return "", "", ErrNoConfig
	}
	return label, path, nil
}

type ConfigInfo struct {
	Label  string
	Path   string
	Active bool
}

func (s *Store) List() ([]ConfigInfo, error) {
	entries, err := os.ReadDir(s.ConfigsDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	active, _ := s.CurrentLabel()
	var out []ConfigInfo

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}

		label := strings.TrimSuffix(name, ".yaml")
		out = append(out, ConfigInfo{
			Label:  label,
			Path:   filepath.Join(s.ConfigsDir(), name),
			Active: label == active,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (s *Store) Switch(label string) error {
	if strings.TrimSpace(label) == "" {
		return errors.New("label cannot be empty")
	}
	if _, err := os.Stat(s.Path(label)); err != nil {
		return fmt.Errorf("config %q does not exist", label)
	}
	if err := s.ensureDirs(); err != nil {
		return err
	}

	return os.WriteFile(s.currentFile(), []byte(label), 0644)
}

// Create writes cfg under label. An existing profile is left untouched and
// reported with os.ErrExist.
func (s *Store) Create(label string, cfg *Config) (string, error) {
	if strings.TrimSpace(label) == "" || strings.ContainsAny(label, `/\`) {
		return "", fmt.Errorf("invalid label %q", label)
	}
	if err := s.ensureDirs(); err != nil {
		return "", err
	}

	path := s.Path(label)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config %q: %w", label, os.ErrExist)
	}

	if err := SaveYAML(cfg, path); err != nil {
		return "", err
	}
	return path, nil
}

// Init creates the Default profile if needed and makes it active.
func (s *Store) Init() (string, error) {
	path, err := s.Create(DefaultLabel, DefaultConfig())
	if err != nil && !errors.Is(err, os.ErrExist) {
		return "", err
	}

	if serr := s.Switch(DefaultLabel); serr != nil {
		return "", serr
	}
	return path, err
}

// Remove deletes a profile. Removing the active one falls back to Default.
func (s *Store) Remove(label string) error {
	if strings.TrimSpace(label) == "" {
		return errors.New("label cannot be empty")
	}
	if label == DefaultLabel {
		return errors.New("cannot remove the Default config")
	}

	path := s.Path(label)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config %q does not exist", label)
	}

	if active, _ := s.CurrentLabel(); active == label {
		if err := s.Switch(DefaultLabel); err != nil {
			if rerr := os.Remove(s.currentFile()); rerr != nil && !os.IsNotExist(rerr) {
				return rerr
			}
		}
	}

	return os.Remove(path)
}
