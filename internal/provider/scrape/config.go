package scrape

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"tierlist/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

type Config struct {
	Search  SearchConfig        `yaml:"search"`
	Profile ProfileConfig       `yaml:"profile"`
	Labels  map[string][]string `yaml:"labels"`
}

type SearchConfig struct {
	URL     string `yaml:"url"`
	Input   string `yaml:"input"`
	Results string `yaml:"results"`
	Empty   string `yaml:"empty"`
	Item    string `yaml:"item"`
	Name    string `yaml:"name"`
	IDAttr  string `yaml:"id_attr"`
	Lookups string `yaml:"lookups"`
	Aliases string `yaml:"aliases"`
}

type ProfileConfig struct {
	URL         string `yaml:"url"`
	Ready       string `yaml:"ready"`
	NotFound    string `yaml:"not_found"`
	DisplayName string `yaml:"display_name"`
}

// LoadConfig reads the extraction contract from path, or the embedded
// default when path is empty.
func LoadConfig(path string) (*Config, error) {
	data := defaultConfig
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read scrape config: %w: %v", domain.ErrConfiguration, err)
		}
		data = b
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scrape config: %w: %v", domain.ErrConfiguration, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid scrape config: %w: %v", domain.ErrConfiguration, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Search.URL == "" || c.Search.Input == "" || c.Search.Results == "":
		return fmt.Errorf("search url, input and results selectors are required")
	case c.Search.Item == "" || c.Search.IDAttr == "":
		return fmt.Errorf("search item selector and id attribute are required")
	case c.Profile.URL == "" || !strings.Contains(c.Profile.URL, "{id}"):
		return fmt.Errorf("profile url must contain {id}")
	case c.Profile.Ready == "":
		return fmt.Errorf("profile ready selector is required")
	case len(c.Labels) == 0:
		return fmt.Errorf("at least one label is required")
	}
	return nil
}

// ProfileURL fills the provider id into the profile URL template.
func (c *Config) ProfileURL(providerID string) string {
	return strings.ReplaceAll(c.Profile.URL, "{id}", providerID)
}

// labelIndex maps a normalized label to its field.
func (c *Config) labelIndex() map[string]string {
	idx := make(map[string]string)
	for field, labels := range c.Labels {
		for _, l := range labels {
			idx[normalizeLabel(l)] = field
		}
	}
	return idx
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.TrimRight(s, ": ")
}
