// Package profile holds the catalog of occupant profiles and their walking
// speeds.
package profile

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the optional profile catalog file in a project directory.
const FileName = "profiles.yaml"

// ErrDuplicateProfile is returned when a catalog lists the same id twice.
var ErrDuplicateProfile = errors.New("duplicate profile id")

var validate = validator.New()

// Profile describes how fast one kind of occupant walks.
type Profile struct {
	ID          string  `yaml:"id" json:"id" validate:"required,max=64"`
	Name        string  `yaml:"name" json:"name" validate:"max=100"`
	Speed       float64 `yaml:"speed" json:"speed" validate:"gt=0,lte=10"` // m/s
	Color       string  `yaml:"color,omitempty" json:"color,omitempty" validate:"omitempty,hexcolor"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
}

// Catalog maps profile id to profile. It is read-only once built.
type Catalog map[string]Profile

// Default returns the built-in catalog.
func Default() Catalog {
	return Catalog{
		"adult":   {ID: "adult", Name: "Adulto", Speed: 1.4, Color: "#2e86de", Description: "Adulto sin limitaciones de movilidad"},
		"child":   {ID: "child", Name: "Niño", Speed: 1.0, Color: "#27ae60", Description: "Menor acompañado"},
		"elderly": {ID: "elderly", Name: "Persona mayor", Speed: 0.8, Color: "#e67e22"},
		"reduced": {ID: "reduced", Name: "Movilidad reducida", Speed: 0.6, Color: "#8e44ad", Description: "Usuario de silla de ruedas o muletas"},
	}
}

// New builds a catalog from a list, validating every entry.
func New(profiles []Profile) (Catalog, error) {
	c := make(Catalog, len(profiles))
	for i, p := range profiles {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("profiles[%d]: %w", i, formatValidationError(err))
		}
		if _, dup := c[p.ID]; dup {
			return nil, fmt.Errorf("profiles[%d]: %w %q", i, ErrDuplicateProfile, p.ID)
		}
		c[p.ID] = p
	}
	return c, nil
}

type catalogFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Parse reads a catalog from YAML of the form `profiles: [{id, name, speed, color}]`.
func Parse(data []byte) (Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing profiles YAML: %w", err)
	}
	if len(f.Profiles) == 0 {
		return nil, errors.New("profile catalog is empty")
	}
	return New(f.Profiles)
}

// Load reads a catalog file.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}
	return Parse(data)
}

// Lookup returns the profile for id.
func (c Catalog) Lookup(id string) (Profile, bool) {
	p, ok := c[id]
	return p, ok
}

// IDs returns the catalog ids in sorted order.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", e.Field())
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", e.Field(), e.Param())
		case "lte", "max":
			return fmt.Errorf("%s: must not exceed %s", e.Field(), e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", e.Field(), e.Tag())
		}
	}
	return err
}
