package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"telwire/pkg/telnet"
)

type Config struct {
	LoadedFiles []string        `yaml:"-"` // Track all files loaded for this config
	Include     []string        `yaml:"include"`
	Debug       bool            `yaml:"debug"`
	MaxNodes    int             `yaml:"maxNodes"`
	HotReload   bool            `yaml:"hotReload"`
	Greeting    string          `yaml:"greeting"`
	General     GeneralConfig   `yaml:"general"`
	Loggers     []LoggerConfig  `yaml:"loggers"`
	Listeners   ListenersConfig `yaml:"listeners"`
	Metrics     MetricsConfig   `yaml:"metrics"`
	Options     []OptionConfig  `yaml:"options"`
}

type GeneralConfig struct {
	Name     string `yaml:"name"`
	Hostname string `yaml:"hostname"`
}

type LoggerConfig struct {
	Stdout     bool   `yaml:"stdout,omitempty"`
	File       string `yaml:"file,omitempty"`
	Level      string `yaml:"level"`
	Source     bool   `yaml:"source"`
	HideTime   bool   `yaml:"hideTime,omitempty"`
	TimeFormat string `yaml:"timeFormat,omitempty"`
}

type ListenersConfig struct {
	Telnet TelnetConfig `yaml:"telnet"`
}

type TelnetConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Port       int    `yaml:"port"`
	BufferSize int    `yaml:"bufferSize"`
	Prompt     string `yaml:"prompt"` // Template, see ansi.TemplateData
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Namespace string `yaml:"namespace"`
}

// OptionConfig describes the policy for one telnet option.
type OptionConfig struct {
	Option OptionRef `yaml:"option"`
	Local  bool      `yaml:"local"`
	Remote bool      `yaml:"remote"`
	// Offer makes the server open negotiation for this option on connect.
	Offer bool `yaml:"offer"`
}

// OptionRef is an option given either by name or by number.
type OptionRef struct {
	Code telnet.Option
}

// UnmarshalYAML implements custom unmarshaling for OptionRef to handle both "naws" and 31
func (o *OptionRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: option must be a name or a number", value.Line)
	}

	var code int
	if err := value.Decode(&code); err == nil {
		if code < 0 || code > 255 {
			return fmt.Errorf("line %d: option %d out of range", value.Line, code)
		}
		o.Code = telnet.Option(code)
		return nil
	}

	opt, ok := telnet.LookupOption(value.Value)
	if !ok {
		return fmt.Errorf("line %d: unknown option %q", value.Line, value.Value)
	}
	o.Code = opt
	return nil
}

// MarshalYAML writes known options by name.
func (o OptionRef) MarshalYAML() (interface{}, error) {
	if _, ok := telnet.OptionNames[o.Code]; ok {
		return o.Code.String(), nil
	}
	return int(o.Code), nil
}

// Table builds the default compatibility table from the option policies.
// Sessions must receive a clone of it.
func (c *Config) Table() *telnet.Table {
	t := telnet.NewTable()
	for _, o := range c.Options {
		if o.Local {
			t.SupportLocal(o.Option.Code)
		}
		if o.Remote {
			t.SupportRemote(o.Option.Code)
		}
	}
	return t
}

// Offers returns the options the server negotiates on connect.
func (c *Config) Offers() []OptionConfig {
	var offers []OptionConfig
	for _, o := range c.Options {
		if o.Offer {
			offers = append(offers, o)
		}
	}
	return offers
}

func Load(filename string) (*Config, error) {
	// Start with a base config
	cfg := &Config{
		LoadedFiles: []string{},
		Listeners: ListenersConfig{
			Telnet: TelnetConfig{
				Port:       2323,
				BufferSize: telnet.DefaultBufferSize,
				Prompt:     "[{{ .Node }}] > ",
			},
		},
		Metrics: MetricsConfig{Addr: ":9323", Namespace: "telwire"},
	}

	// Keep track of processed files to avoid infinite loops
	processed := make(map[string]bool)

	err := loadRecursive(filename, cfg, processed)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadRecursive(filename string, cfg *Config, processed map[string]bool) error {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return err
	}

	if processed[absPath] {
		return nil // Already processed
	}
	processed[absPath] = true
	cfg.LoadedFiles = append(cfg.LoadedFiles, absPath)

	data, err := os.ReadFile(absPath)
	if err != nil {
		return err
	}

	// Expand environment variables in the YAML content
	expandedData := []byte(os.ExpandEnv(string(data)))

	// Unmarshal into a temporary struct to load includes first
	var tempCfg struct {
		Include []string `yaml:"include"`
	}
	if err := yaml.Unmarshal(expandedData, &tempCfg); err != nil {
		return err
	}

	baseDir := filepath.Dir(absPath)
	for _, includePath := range tempCfg.Include {
		// Resolve relative paths relative to the current config file
		fullPath := includePath
		if !filepath.IsAbs(includePath) {
			fullPath = filepath.Join(baseDir, includePath)
		}

		if err := loadRecursive(fullPath, cfg, processed); err != nil {
			return fmt.Errorf("failed to load included config %s: %w", fullPath, err)
		}
	}

	// Now apply the current file's configuration over the accumulated config
	if err := yaml.Unmarshal(expandedData, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", absPath, err)
	}

	return nil
}
