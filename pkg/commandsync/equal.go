package commandsync

import (
	"encoding/json"
	"maps"
	"reflect"
	"slices"

	"github.com/bwmarrin/discordgo"
)

// CommandEqual reports whether the registered command b is up to date with
// a. Only the description and the option tree are compared.
func CommandEqual(a, b *discordgo.ApplicationCommand) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Description == b.Description && OptionsEqual(a.Options, b.Options)
}

// OptionsEqual is an order-sensitive deep comparison of two option lists.
// A nil list equals an empty one, at every nesting level.
func OptionsEqual(a, b []*discordgo.ApplicationCommandOption) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !optionEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func optionEqual(a, b *discordgo.ApplicationCommandOption) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Type == b.Type &&
		a.Name == b.Name &&
		a.Description == b.Description &&
		a.Required == b.Required &&
		a.Autocomplete == b.Autocomplete &&
		a.MaxValue == b.MaxValue &&
		a.MaxLength == b.MaxLength &&
		ptrEqual(a.MinValue, b.MinValue) &&
		ptrEqual(a.MinLength, b.MinLength) &&
		maps.Equal(a.NameLocalizations, b.NameLocalizations) &&
		maps.Equal(a.DescriptionLocalizations, b.DescriptionLocalizations) &&
		slices.Equal(a.ChannelTypes, b.ChannelTypes) &&
		choicesEqual(a.Choices, b.Choices) &&
		OptionsEqual(a.Options, b.Options)
}

func choicesEqual(a, b []*discordgo.ApplicationCommandOptionChoice) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x == nil || y == nil {
			if x != y {
				return false
			}
			continue
		}
		if x.Name != y.Name ||
			!maps.Equal(x.NameLocalizations, y.NameLocalizations) ||
			!choiceValueEqual(x.Value, y.Value) {
			return false
		}
	}
	return true
}

// choiceValueEqual compares numbers by value so that a locally declared
// int matches the float64 the registry decodes from JSON.
func choiceValueEqual(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
