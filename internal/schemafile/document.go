package schemafile

import (
	"gopkg.in/yaml.v3"

	"github.com/hlop3z/enumsync/internal/alerr"
)

// fileDoc is one declared schema file.
type fileDoc struct {
	Schema string              `yaml:"schema"`
	Enums  map[string]enumSpec `yaml:"enums"`
	Tables map[string]tableDoc `yaml:"tables"`
}

// enumSpec is either a plain label list or a mapping with options.
type enumSpec struct {
	Schema    string            `yaml:"schema"`
	Values    []string          `yaml:"values"`
	Labels    map[string]string `yaml:"labels"`
	NonNative bool              `yaml:"non_native"`
}

func (e *enumSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.SequenceNode {
		return n.Decode(&e.Values)
	}
	if n.Kind != yaml.MappingNode {
		return alerr.New(alerr.ErrSchemaInvalid, "enum must be a list of values or a mapping").
			With("line", n.Line)
	}
	type plain enumSpec
	return n.Decode((*plain)(e))
}

type tableDoc struct {
	Schema  string               `yaml:"schema"`
	Columns map[string]columnDoc `yaml:"columns"`
}

// columnDoc declares one column. A bare scalar is shorthand for {type: ...}.
type columnDoc struct {
	Type    string  `yaml:"type"`
	Enum    string  `yaml:"enum"`
	ArrayOf string  `yaml:"array_of"`
	Default *string `yaml:"default"`

	line int
}

func (c *columnDoc) UnmarshalYAML(n *yaml.Node) error {
	c.line = n.Line
	if n.Kind == yaml.ScalarNode {
		c.Type = n.Value
		return nil
	}
	type plain columnDoc
	if err := n.Decode((*plain)(c)); err != nil {
		return err
	}
	c.line = n.Line
	return nil
}
