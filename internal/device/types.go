package device

import (
	"encoding/json"
	"fmt"
	"strings"
)

// propertySeparator splits a raw property value into list elements.
const propertySeparator = ","

// Descriptor identifies a device and the server process that owns it.
type Descriptor struct {
	Name   string `json:"name"`
	Class  string `json:"class"`
	Server string `json:"server"`
}

// ServerID builds the server identifier "<class>/<instance>".
func ServerID(class, instance string) string {
	return class + "/" + instance
}

// NewDescriptor derives the descriptor for one device server instance.
func NewDescriptor(name, class, instance string) Descriptor {
	return Descriptor{
		Name:   name,
		Class:  class,
		Server: ServerID(class, instance),
	}
}

// Validate checks that every descriptor field is set.
func (d Descriptor) Validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidDevice)
	case d.Class == "":
		return fmt.Errorf("%w: class is empty", ErrInvalidDevice)
	case d.Server == "":
		return fmt.Errorf("%w: server is empty", ErrInvalidDevice)
	}
	return nil
}

// DeviceInfo is the registry's view of a device as returned by an import.
type DeviceInfo struct {
	Name     string `json:"name"`
	Class    string `json:"class"`
	Server   string `json:"server"`
	Exported bool   `json:"exported"`
}

// PropertyValue is either a single string or an ordered list of strings.
// The zero value is the empty string.
type PropertyValue struct {
	scalar string
	list   []string
	isList bool
}

// String returns a single-valued property.
func String(s string) PropertyValue {
	return PropertyValue{scalar: s}
}

// List returns a list-valued property. The slice is copied.
func List(values ...string) PropertyValue {
	cpy := make([]string, len(values))
	copy(cpy, values)
	return PropertyValue{list: cpy, isList: true}
}

// ParseProperty turns a raw configuration value into a PropertyValue.
// A value containing the separator becomes a list of the untrimmed parts;
// anything else stays a single string.
func ParseProperty(raw string) PropertyValue {
	parts := strings.Split(raw, propertySeparator)
	if len(parts) > 1 {
		return PropertyValue{list: parts, isList: true}
	}
	return String(raw)
}

// IsList reports whether the value is list-valued.
func (v PropertyValue) IsList() bool {
	return v.isList
}

// Scalar returns the single value. It is empty for lists.
func (v PropertyValue) Scalar() string {
	return v.scalar
}

// Values returns the value as a list: the list elements, or a one-element
// list holding the scalar.
func (v PropertyValue) Values() []string {
	if !v.isList {
		return []string{v.scalar}
	}
	cpy := make([]string, len(v.list))
	copy(cpy, v.list)
	return cpy
}

// String renders the value for logs.
func (v PropertyValue) String() string {
	if v.isList {
		return "[" + strings.Join(v.list, ", ") + "]"
	}
	return v.scalar
}

// Equal reports whether two values have the same kind and content.
func (v PropertyValue) Equal(other PropertyValue) bool {
	if v.isList != other.isList {
		return false
	}
	if !v.isList {
		return v.scalar == other.scalar
	}
	if len(v.list) != len(other.list) {
		return false
	}
	for i := range v.list {
		if v.list[i] != other.list[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes a scalar as a JSON string and a list as an array.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	if v.isList {
		return json.Marshal(v.list)
	}
	return json.Marshal(v.scalar)
}

// UnmarshalJSON accepts a JSON string or an array of strings.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = String(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("property value must be a string or a list of strings: %w", err)
	}
	*v = List(list...)
	return nil
}

// Properties maps property names to their values.
type Properties map[string]PropertyValue

// PropertiesFromMap applies ParseProperty to every raw value.
func PropertiesFromMap(raw map[string]string) Properties {
	props := make(Properties, len(raw))
	for key, val := range raw {
		props[key] = ParseProperty(val)
	}
	return props
}
