// Package manifest handles reify.toml (or reify.yaml) universe declarations.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// File names searched for, in order of preference.
var FileNames = []string{"reify.toml", "reify.yaml", "reify.yml"}

// ErrNoManifest is returned by Load when a directory holds no manifest.
var ErrNoManifest = errors.New("manifest: no reify.toml or reify.yaml found")

var validate = validator.New()

// Manifest declares a universe of classes, their reified parents, the
// instantiations to pre-register, and instance checks to run.
type Manifest struct {
	Project   Project     `toml:"project" yaml:"project"`
	Store     StoreConfig `toml:"store" yaml:"store"`
	Classes   []ClassDecl `toml:"class" yaml:"classes" validate:"dive"`
	Instances []string    `toml:"instances" yaml:"instances" validate:"dive,required"`
	Checks    []CheckDecl `toml:"check" yaml:"checks" validate:"dive"`

	// Dir is the directory containing the manifest file (set at load time).
	Dir string `toml:"-" yaml:"-"`
	// Path is the manifest file itself (set at load time).
	Path string `toml:"-" yaml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name      string `toml:"name" yaml:"name" validate:"required"`
	Namespace string `toml:"namespace" yaml:"namespace"`
	Version   string `toml:"version" yaml:"version"`
}

// StoreConfig configures where snapshots are persisted.
type StoreConfig struct {
	Path     string `toml:"path" yaml:"path"`
	Snapshot string `toml:"snapshot" yaml:"snapshot"`
}

// ClassDecl declares one class.
//
// Params are written "E", "out E", "in T" or "bi T". Parent is the reified
// supertype written over the class's own parameters, e.g. "MutableList<E>".
// Kind selects a predicate for plain Go values: int, float, string, bool
// or any.
type ClassDecl struct {
	Name      string   `toml:"name" yaml:"name" validate:"required"`
	Namespace string   `toml:"namespace" yaml:"namespace"`
	Params    []string `toml:"params" yaml:"params" validate:"dive,required"`
	Supers    []string `toml:"supers" yaml:"supers" validate:"dive,required"`
	Parent    string   `toml:"parent" yaml:"parent"`
	Kind      string   `toml:"kind" yaml:"kind" validate:"omitempty,oneof=int float string bool any"`
	Doc       string   `toml:"doc" yaml:"doc"`
}

// CheckDecl is an instance check "value is type" with its expected result.
// Value is a type expression; the check uses a value carrying that
// descriptor.
type CheckDecl struct {
	Type   string `toml:"type" yaml:"type" validate:"required"`
	Value  string `toml:"value" yaml:"value" validate:"required"`
	Expect bool   `toml:"expect" yaml:"expect"`
}

// Load parses the manifest in the given directory.
func Load(dir string) (*Manifest, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, fmt.Errorf("%w in %s", ErrNoManifest, dir)
}

// LoadFile parses a manifest file. The format follows the extension.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = toml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	m.Path = abs
	m.Dir = filepath.Dir(abs)

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a manifest,
// then loads and returns it. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return LoadFile(path)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) applyDefaults() {
	if m.Store.Path == "" {
		m.Store.Path = filepath.Join(".reify", "reify.db")
	}
	if m.Store.Snapshot == "" {
		m.Store.Snapshot = m.Project.Name
	}
	for i := range m.Classes {
		if m.Classes[i].Namespace == "" {
			m.Classes[i].Namespace = m.Project.Namespace
		}
	}
}

// Validate checks the manifest structure and class names.
func (m *Manifest) Validate() error {
	if err := validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	seen := make(map[string]bool, len(m.Classes))
	for _, c := range m.Classes {
		if err := ValidateClassName(c.Name); err != nil {
			return err
		}
		full := QualifiedName(c.Namespace, c.Name)
		if seen[full] {
			return fmt.Errorf("class %s declared twice", full)
		}
		seen[full] = true
	}
	return nil
}

// StorePath returns the absolute path of the snapshot database.
func (m *Manifest) StorePath() string {
	if filepath.IsAbs(m.Store.Path) {
		return m.Store.Path
	}
	return filepath.Join(m.Dir, m.Store.Path)
}
