// Package manifest reads the declared application commands from a JSON or
// YAML file. Both formats use Discord's API field names (name, description,
// options, type, required, choices, ...).
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/discordgo"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrEmptyName       = errors.New("command has no name")
	ErrDuplicateName   = errors.New("duplicate command name")
	ErrUnknownFormat   = errors.New("unknown manifest format")
	ErrUnexpectedShape = errors.New("manifest must be a list of commands or an object with a commands list")
	ErrEmptyManifest   = errors.New("manifest is empty")
)

// document is the object form of a manifest: {"commands": [...]}.
type document struct {
	Commands json.RawMessage `json:"commands"`
}

// Load reads path and picks the format from its extension.
func Load(path string) ([]*discordgo.ApplicationCommand, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	cmds, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cmds, nil
}

func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Parse decodes a manifest and validates it. The top level may be a bare
// list of commands or an object whose only key is "commands". An empty or
// null document is an error; an empty registry must be asked for with an
// explicit empty list.
func Parse(data []byte, format Format) ([]*discordgo.ApplicationCommand, error) {
	var err error
	switch format {
	case FormatJSON:
	case FormatYAML:
		if data, err = yamlToJSON(data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return nil, ErrEmptyManifest
	case trimmed[0] == '{':
		var doc document
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedShape, err)
		}
		list := bytes.TrimSpace(doc.Commands)
		if len(list) == 0 || bytes.Equal(list, []byte("null")) {
			return nil, fmt.Errorf("%w: missing commands list", ErrUnexpectedShape)
		}
		trimmed = list
	}

	if trimmed[0] != '[' {
		return nil, ErrUnexpectedShape
	}
	cmds := []*discordgo.ApplicationCommand{}
	if err := json.Unmarshal(trimmed, &cmds); err != nil {
		return nil, fmt.Errorf("failed to decode commands: %w", err)
	}

	if err := Validate(cmds); err != nil {
		return nil, err
	}
	return cmds, nil
}

// yamlToJSON re-encodes YAML as JSON so discordgo's json tags apply.
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to convert yaml: %w", err)
	}
	return out, nil
}

func Validate(cmds []*discordgo.ApplicationCommand) error {
	seen := make(map[string]struct{}, len(cmds))
	for i, c := range cmds {
		if c == nil || c.Name == "" {
			return fmt.Errorf("command #%d: %w", i, ErrEmptyName)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateName, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}
