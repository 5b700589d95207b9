package ruleset

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultPreset is used when options name no preset.
const DefaultPreset = "default"

//go:embed presets/*.yaml
var embeddedPresets embed.FS

// Preset returns the options of an embedded preset.
func Preset(name string) (Options, error) {
	data, err := embeddedPresets.ReadFile("presets/" + name + ".yaml")
	if err != nil {
		return Options{}, &ConfigurationError{
			Field:   "preset",
			Message: fmt.Sprintf("unknown preset %q, must be one of: %s", name, strings.Join(PresetNames(), ", ")),
		}
	}

	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing preset %s: %w", name, err)
	}
	opts.Preset = name
	return opts, nil
}

// PresetNames lists the embedded presets.
func PresetNames() []string {
	entries, err := embeddedPresets.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Load reads a RuleSet document (yaml, json or toml by extension) and
// resolves it over its preset.
func Load(path string) (*RuleSet, error) {
	opts, err := LoadOptions(path)
	if err != nil {
		return nil, err
	}
	return Resolve(opts)
}

// LoadOptions reads a RuleSet document without resolving it, so callers
// can layer further options over it.
func LoadOptions(path string) (Options, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Options{}, fmt.Errorf("reading ruleset %s: %w", path, err)
	}
	return decodeOptions(v)
}

// Parse reads a RuleSet document from memory. Format is a viper config
// type such as "yaml", "json" or "toml".
func Parse(data []byte, format string) (*RuleSet, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parsing ruleset: %w", err)
	}
	opts, err := decodeOptions(v)
	if err != nil {
		return nil, err
	}
	return Resolve(opts)
}

func decodeOptions(v *viper.Viper) (Options, error) {
	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("decoding ruleset: %w", err)
	}
	return opts, nil
}
