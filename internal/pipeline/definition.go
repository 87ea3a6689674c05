package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/poretally/internal/banner"
)

// Definition is one pipeline's declarative description.
type Definition struct {
	// Name is the pipeline name (the file name without extension).
	Name string `validate:"required"`
	// Origin is where the definition was read from.
	Origin string
	// Description is free text for the METHODS banner.
	Description string `validate:"required"`
	// Versions lists the version probes in file order.
	Versions banner.Probes
	// Commands is the raw multi-line command template.
	Commands string `validate:"required"`
	// Conda is the optional environment specification, kept as a node so
	// its key order survives re-encoding.
	Conda *yaml.Node
}

// rawDefinition mirrors the YAML layout.
type rawDefinition struct {
	Description string    `yaml:"description"`
	Versions    yaml.Node `yaml:"versions"`
	Commands    string    `yaml:"commands"`
	Conda       yaml.Node `yaml:"conda"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Parse decodes and validates a definition.
func Parse(name, origin string, data []byte) (*Definition, error) {
	var raw rawDefinition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &InvalidDefinitionError{Pipeline: name, Origin: origin, Err: err}
	}

	probes, err := decodeVersions(&raw.Versions)
	if err != nil {
		return nil, &InvalidDefinitionError{Pipeline: name, Origin: origin, Err: err}
	}

	def := &Definition{
		Name:        name,
		Origin:      origin,
		Description: strings.TrimSpace(raw.Description),
		Versions:    probes,
		Commands:    raw.Commands,
	}
	if raw.Conda.Kind != 0 && raw.Conda.Tag != "!!null" {
		conda := raw.Conda
		def.Conda = &conda
	}

	if err := validate.Struct(def); err != nil {
		return nil, &InvalidDefinitionError{Pipeline: name, Origin: origin, Err: describeValidation(err)}
	}
	return def, nil
}

// decodeVersions reads the versions mapping in document order.
func decodeVersions(node *yaml.Node) (banner.Probes, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: versions must be a mapping of tool to version command", node.Line)
	}

	probes := make(banner.Probes, 0, len(node.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: versions entries must be scalar tool: command pairs", key.Line)
		}
		if seen[key.Value] {
			return nil, fmt.Errorf("line %d: duplicate versions entry %q", key.Line, key.Value)
		}
		seen[key.Value] = true

		expr := value.Value
		if value.Tag == "!!null" {
			expr = ""
		}
		probes = append(probes, banner.Probe{Tool: key.Value, Expr: expr})
	}
	return probes, nil
}

// Environment returns the conda specification as block-style YAML, or nil
// when the definition has none.
func (d *Definition) Environment() ([]byte, error) {
	if d.Conda == nil {
		return nil, nil
	}
	node := *d.Conda
	clearFlowStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("encoding conda environment for %s: %w", d.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding conda environment for %s: %w", d.Name, err)
	}
	return buf.Bytes(), nil
}

// clearFlowStyle rewrites n in block style. Content nodes are copied so the
// definition's own tree is left untouched.
func clearFlowStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	if len(n.Content) == 0 {
		return
	}
	content := make([]*yaml.Node, len(n.Content))
	for i, child := range n.Content {
		c := *child
		clearFlowStyle(&c)
		content[i] = &c
	}
	n.Content = content
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q check", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
