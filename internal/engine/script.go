package engine

import (
	"gopkg.in/yaml.v3"

	"github.com/anvildb/anvil/internal/anerr"
	"github.com/anvildb/anvil/internal/ast"
)

// Migration scripts are stored as YAML documents with an up and a down
// operation list. Each operation is a single-key mapping whose key names
// the operation kind:
//
//	up:
//	  - create_table:
//	      name: Users
//	      columns: [...]
//	  - create_index:
//	      table: Users
//	      name: uniq_Users_email
//	      columns: [email]
//	down:
//	  - drop_table:
//	      name: Users

// opKeys maps operation types to their script keys.
var opKeys = map[ast.OpType]string{
	ast.OpCreateTable:    "create_table",
	ast.OpDropTable:      "drop_table",
	ast.OpAddColumn:      "add_column",
	ast.OpDropColumn:     "drop_column",
	ast.OpCreateIndex:    "create_index",
	ast.OpDropIndex:      "drop_index",
	ast.OpAddForeignKey:  "add_foreign_key",
	ast.OpDropForeignKey: "drop_foreign_key",
}

// newOpFor returns an empty operation value for a script key.
func newOpFor(key string) ast.Operation {
	switch key {
	case "create_table":
		return &ast.CreateTable{}
	case "drop_table":
		return &ast.DropTable{}
	case "add_column":
		return &ast.AddColumn{}
	case "drop_column":
		return &ast.DropColumn{}
	case "create_index":
		return &ast.CreateIndex{}
	case "drop_index":
		return &ast.DropIndex{}
	case "add_foreign_key":
		return &ast.AddForeignKey{}
	case "drop_foreign_key":
		return &ast.DropForeignKey{}
	default:
		return nil
	}
}

// opList wraps an operation slice with YAML marshalling that preserves the
// single-key-map-per-operation layout.
type opList []ast.Operation

func (l opList) MarshalYAML() (any, error) {
	out := make([]map[string]ast.Operation, 0, len(l))
	for _, op := range l {
		key, ok := opKeys[op.Type()]
		if !ok {
			return nil, anerr.Newf(anerr.ErrScriptInvalid, "operation %s cannot be serialized", op.Type())
		}
		out = append(out, map[string]ast.Operation{key: op})
	}
	return out, nil
}

func (l *opList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return anerr.New(anerr.ErrScriptInvalid, "operation list must be a sequence")
	}
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
			return anerr.New(anerr.ErrScriptInvalid, "each operation must be a single-key mapping")
		}
		key := item.Content[0].Value
		op := newOpFor(key)
		if op == nil {
			return anerr.Newf(anerr.ErrScriptInvalid, "unknown operation kind %q", key)
		}
		if err := item.Content[1].Decode(op); err != nil {
			return anerr.Wrapf(anerr.ErrScriptInvalid, err, "cannot decode %s operation", key)
		}
		*l = append(*l, op)
	}
	return nil
}

// scriptFile is the on-disk document shape.
type scriptFile struct {
	Up   opList `yaml:"up"`
	Down opList `yaml:"down"`
}

// EncodeScript serializes a migration's operation lists to YAML.
func EncodeScript(m *Migration) ([]byte, error) {
	data, err := yaml.Marshal(&scriptFile{Up: m.Up, Down: m.Down})
	if err != nil {
		return nil, anerr.Wrap(anerr.ErrScriptInvalid, err, "cannot serialize migration script")
	}
	return data, nil
}

// DecodeScript parses a migration script's operation lists. Every decoded
// operation is validated before the script is accepted.
func DecodeScript(data []byte) (up, down []ast.Operation, err error) {
	var f scriptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, anerr.Wrap(anerr.ErrScriptInvalid, err, "cannot parse migration script")
	}
	if err := ast.ValidateAll(f.Up); err != nil {
		return nil, nil, anerr.Wrap(anerr.ErrScriptInvalid, err, "invalid up operation")
	}
	if err := ast.ValidateAll(f.Down); err != nil {
		return nil, nil, anerr.Wrap(anerr.ErrScriptInvalid, err, "invalid down operation")
	}
	return f.Up, f.Down, nil
}
