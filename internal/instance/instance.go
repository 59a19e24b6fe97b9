package instance

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/nerrad567/device-registrar/internal/device"
)

const (
	// DefaultDir is used when neither the flag nor the environment names a directory.
	DefaultDir = "/opt/tango/etc"

	// EnvDir is the environment variable consulted when no directory flag is given.
	EnvDir = "TANGO_CONFIG_DIR"

	// FileExt is appended to the instance name to form the file name.
	FileExt = ".conf"
)

// Section and key names inside an instance file.
const (
	sectionDevice     = "device"
	sectionProperties = "properties"
	keyName           = "name"
	keyClass          = "class"
)

// Config is the parsed content of one instance file.
type Config struct {
	// Instance is the instance name the file was loaded for.
	Instance string

	// Path is the file the settings were read from.
	Path string

	// Name is the device name from [device] name.
	Name string

	// Class is the device class from [device] class.
	Class string

	// Properties holds the [properties] section after comma splitting.
	// It is empty, never nil, when the section is absent.
	Properties device.Properties
}

// Descriptor derives the registry descriptor for this instance.
func (c *Config) Descriptor() device.Descriptor {
	return device.NewDescriptor(c.Name, c.Class, c.Instance)
}

// ServerID returns "<class>/<instance>".
func (c *Config) ServerID() string {
	return device.ServerID(c.Class, c.Instance)
}

// ResolveDir picks the instance directory: flagDir when non-empty, then
// TANGO_CONFIG_DIR when set and non-empty, then DefaultDir.
func ResolveDir(flagDir string) string {
	if flagDir != "" {
		return flagDir
	}
	if v := os.Getenv(EnvDir); v != "" {
		return v
	}
	return DefaultDir
}

// Path returns "<dir>/<name>.conf". dir is used as given, without cleaning.
func Path(dir, name string) string {
	return dir + string(os.PathSeparator) + name + FileExt
}

// Load checks, announces and parses the instance file for name in dir.
//
// The line "reading config file <path>" is written to out once the file
// passed the existence and readability checks.
//
// Returns:
//   - ErrFileNotFound or ErrPermissionDenied (with the path) before any parsing
//   - ErrMissingSection or ErrMissingKey for incomplete [device] sections
func Load(dir, name string, out io.Writer) (*Config, error) {
	if name == "" || strings.ContainsRune(name, os.PathSeparator) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	path := Path(dir, name)
	if err := checkReadable(path); err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "reading config file %s\n", path) //nolint:errcheck // best-effort output

	file, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:            true,
		IgnoreInlineComment:        true,
		PreserveSurroundedQuote:    true,
		AllowPythonMultilineValues: true,
		IgnoreContinuation:         true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg, err := parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Instance = name
	cfg.Path = path

	return cfg, nil
}

// checkReadable fails unless path is a regular file the process can open.
func checkReadable(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	case err != nil:
		return fmt.Errorf("checking %s: %w", path, err)
	case !info.Mode().IsRegular():
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("opening %s: %w", path, err)
	}
	return f.Close()
}

// parse extracts the device identity and properties from a loaded file.
func parse(file *ini.File) (*Config, error) {
	sec, err := file.GetSection(sectionDevice)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingSection, sectionDevice)
	}

	name := sec.Key(keyName).String()
	if name == "" {
		return nil, fmt.Errorf("%w: %s.%s", ErrMissingKey, sectionDevice, keyName)
	}

	class := sec.Key(keyClass).String()
	if class == "" {
		return nil, fmt.Errorf("%w: %s.%s", ErrMissingKey, sectionDevice, keyClass)
	}

	props := device.Properties{}
	if psec, err := file.GetSection(sectionProperties); err == nil {
		props = device.PropertiesFromMap(psec.KeysHash())
	}

	return &Config{
		Name:       name,
		Class:      class,
		Properties: props,
	}, nil
}
