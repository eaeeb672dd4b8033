// pkg/catalog/catalog.go
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"content-analyzer/internal/common/errors"
	"content-analyzer/internal/common/validation"
	"content-analyzer/internal/models"
)

//go:embed fixtures/scenarios.json
var defaultFixture []byte

//go:embed fixtures/scenarios.schema.json
var fixtureSchema []byte

const embeddedSource = "embedded:scenarios.json"

// Catalog is loaded once and read-only afterwards. All accessors hand out
// copies, so it is safe for concurrent use.
type Catalog struct {
	version   string
	scenarios []Scenario
	index     map[string]int
}

// LoadDefault loads the catalog compiled into the binary.
func LoadDefault() (*Catalog, error) {
	return LoadBytes(defaultFixture, embeddedSource)
}

// Load reads a catalog from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return LoadDefault()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewFixtureLoadFailureError(path, err)
	}
	return LoadBytes(data, path)
}

// LoadBytes validates data against the catalog schema, decodes it and checks
// that ids are unique. Every failure is FIXTURE_LOAD_FAILURE.
func LoadBytes(data []byte, source string) (*Catalog, error) {
	if err := validate(data); err != nil {
		return nil, errors.NewFixtureLoadFailureError(source, err)
	}

	var file File
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&file); err != nil {
		return nil, errors.NewFixtureLoadFailureError(source, err)
	}

	c := &Catalog{
		version:   file.Version,
		scenarios: file.Scenarios,
		index:     make(map[string]int, len(file.Scenarios)),
	}
	for i, s := range file.Scenarios {
		if _, dup := c.index[s.ID]; dup {
			return nil, errors.NewFixtureLoadFailureError(source, fmt.Errorf("duplicate scenario id %q", s.ID))
		}
		c.index[s.ID] = i
	}

	return c, nil
}

var catalogSchema = mustCompileSchema()

func mustCompileSchema() *validation.Schema {
	s, err := validation.CompileBytes(fixtureSchema)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded schema: %v", err))
	}
	return s
}

func validate(data []byte) error {
	result, err := catalogSchema.ValidateBytes(data)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid {
		return fmt.Errorf("schema validation failed: %s", result.Error())
	}
	return nil
}

// Lookup returns a deep copy of the scenario with the given id.
func (c *Catalog) Lookup(id string) (Scenario, bool) {
	i, ok := c.index[id]
	if !ok {
		return Scenario{}, false
	}
	return c.scenarios[i].clone(), true
}

// Response returns a deep copy of a scenario's canonical response, or nil.
func (c *Catalog) Response(id string) *models.StructuredResponse {
	i, ok := c.index[id]
	if !ok {
		return nil
	}
	return c.scenarios[i].Response.Clone()
}

// All returns copies of every scenario in fixture order.
func (c *Catalog) All() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	for i, s := range c.scenarios {
		out[i] = s.clone()
	}
	return out
}

func (c *Catalog) Examples() []Example {
	out := make([]Example, 0, len(c.scenarios))
	for _, s := range c.scenarios {
		out = append(out, Example{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Input:       s.Input,
		})
	}
	return out
}

func (c *Catalog) IDs() []string {
	out := make([]string, len(c.scenarios))
	for i, s := range c.scenarios {
		out[i] = s.ID
	}
	return out
}

func (c *Catalog) Len() int { return len(c.scenarios) }

func (c *Catalog) Version() string { return c.version }
