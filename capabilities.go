package tuiengine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ColorDepth enumerates the color fidelity a terminal supports.
type ColorDepth int

const (
	ColorAscii ColorDepth = iota
	ColorAnsi16
	ColorIndexed256
	ColorTrueColor
)

var colorDepthNames = map[ColorDepth]string{
	ColorAscii:      "ascii",
	ColorAnsi16:     "ansi16",
	ColorIndexed256: "indexed256",
	ColorTrueColor:  "truecolor",
}

// String returns the profile-file name of the depth.
func (d ColorDepth) String() string {
	if name, ok := colorDepthNames[d]; ok {
		return name
	}
	return "unknown"
}

// MarshalYAML encodes the depth as its profile-file name.
func (d ColorDepth) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML decodes a profile-file depth name.
func (d *ColorDepth) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	for depth, n := range colorDepthNames {
		if n == name {
			*d = depth
			return nil
		}
	}
	return fmt.Errorf("capabilities: unknown color depth %q", name)
}

// TerminalCapabilities declares what the output terminal supports. The
// presenter consumes this record at construction and never emits sequences
// the terminal did not declare.
type TerminalCapabilities struct {
	ColorDepth                 ColorDepth `yaml:"color_depth"`
	SupportsUnderlineVariants  bool       `yaml:"underline_variants"`
	SupportsHyperlinks         bool       `yaml:"hyperlinks"`
	SupportsBracketedPaste     bool       `yaml:"bracketed_paste"`
	SupportsSynchronizedUpdate bool       `yaml:"synchronized_update"`
	SupportsMouse              bool       `yaml:"mouse"`
	SupportsFocusEvents        bool       `yaml:"focus_events"`
}

// DefaultCapabilities returns a fully capable modern terminal profile.
func DefaultCapabilities() TerminalCapabilities {
	return TerminalCapabilities{
		ColorDepth:                 ColorTrueColor,
		SupportsUnderlineVariants:  true,
		SupportsHyperlinks:         true,
		SupportsBracketedPaste:     true,
		SupportsSynchronizedUpdate: true,
		SupportsMouse:              true,
		SupportsFocusEvents:        true,
	}
}

// ParseCapabilities decodes a YAML capability profile.
func ParseCapabilities(data []byte) (TerminalCapabilities, error) {
	caps := TerminalCapabilities{}
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return caps, fmt.Errorf("capabilities: %w", err)
	}
	return caps, nil
}

// LoadCapabilities reads a YAML capability profile from disk.
func LoadCapabilities(path string) (TerminalCapabilities, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TerminalCapabilities{}, fmt.Errorf("capabilities: %w", err)
	}
	return ParseCapabilities(data)
}
