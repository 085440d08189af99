package building

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the building description looked up inside a project directory.
const FileName = "building.yaml"

// Load reads a building description from a YAML file.
func Load(path string) (*Building, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading building file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a building description from YAML bytes.
func Parse(data []byte) (*Building, error) {
	var b Building
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing building YAML: %w", err)
	}
	return &b, nil
}

// LoadProject loads building.yaml from a project directory.
func LoadProject(projectDir string) (*Building, error) {
	return Load(filepath.Join(projectDir, FileName))
}
