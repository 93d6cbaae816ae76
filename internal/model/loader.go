package model

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anvildb/anvil/internal/anerr"
)

// errUnresolvableName marks an entity whose table name cannot be derived.
var errUnresolvableName = anerr.New(anerr.ErrEntityUnusable, "entity has neither a name nor a table override")

// modelsFile is the on-disk shape of a declarative model file.
type modelsFile struct {
	Entities []EntityDef `yaml:"entities"`
}

// LoadFile reads entity descriptors from a YAML model file.
func LoadFile(path string) ([]EntityDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, anerr.Wrapf(anerr.ErrSchemaInvalid, err, "cannot read model file %s", path)
	}
	return Parse(data)
}

// Parse decodes entity descriptors from YAML bytes.
func Parse(data []byte) ([]EntityDef, error) {
	var f modelsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, anerr.Wrap(anerr.ErrSchemaInvalid, err, "cannot parse model file")
	}
	return f.Entities, nil
}
