// Package userinfo reads the sample description that accompanies a
// benchmark: who sequenced what, and with which basecaller, flowcell and
// kit. It is recorded next to the run so results can be attributed.
package userinfo

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Info is a user info file. Keys beyond the required ones are kept in
// Extra.
type Info struct {
	Authors    Authors `yaml:"authors" json:"authors" validate:"required,min=1,dive,required"`
	Organism   string  `yaml:"organism" json:"organism" validate:"required"`
	Basecaller string  `yaml:"basecaller" json:"basecaller" validate:"required"`
	Flowcell   string  `yaml:"flowcell" json:"flowcell" validate:"required"`
	Kit        string  `yaml:"kit" json:"kit" validate:"required"`

	Extra map[string]any `yaml:",inline" json:"extra,omitempty"`
}

// Authors accepts a single name or a list of names.
type Authors []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Authors) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*a = Authors{strings.TrimSpace(n.Value)}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := n.Decode(&names); err != nil {
			return fmt.Errorf("line %d: authors must be a list of names", n.Line)
		}
		*a = names
		return nil
	default:
		return fmt.Errorf("line %d: authors must be a name or a list of names", n.Line)
	}
}

// InvalidError reports a user info file that cannot be used.
type InvalidError struct {
	Path     string
	Problems []string
}

// Error implements the error interface.
func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid user info %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})
	return v
}()

// Load reads and checks the user info file at path.
func Load(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading user info: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes data as a user info mapping and checks that every required
// key has a value. path is only used in errors.
func Parse(path string, data []byte) (*Info, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &InvalidError{Path: path, Problems: []string{err.Error()}}
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &InvalidError{Path: path, Problems: []string{"not read as a YAML mapping"}}
	}

	var info Info
	if err := doc.Content[0].Decode(&info); err != nil {
		return nil, &InvalidError{Path: path, Problems: []string{err.Error()}}
	}
	if err := validate.Struct(&info); err != nil {
		return nil, &InvalidError{Path: path, Problems: describeValidation(err)}
	}
	return &info, nil
}

func describeValidation(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if strings.HasPrefix(field, "authors[") {
			field = "authors"
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, field+" needs at least one name")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q check", field, fe.Tag()))
		}
	}
	return msgs
}
