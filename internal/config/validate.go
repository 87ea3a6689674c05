package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError is a configuration problem, located either by a position
// in a file or by the config key that holds the bad value.
type ValidationError struct {
	FilePath string
	Line     int
	// Key is the dotted config key, e.g. "executor.cores".
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	case e.Key != "":
		return fmt.Sprintf("%s: %s %s (env %s)", e.FilePath, e.Key, e.Message, EnvName(e.Key))
	default:
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	}
}

// EnvName is the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// checkYAML reports syntax errors in a YAML config file with their line,
// and rejects documents whose top level is not a mapping of keys.
// A missing or blank file is fine: defaults apply.
func checkYAML(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &ValidationError{FilePath: path, Message: err.Error()}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		line, msg := yamlErrorPosition(err)
		return &ValidationError{FilePath: path, Line: line, Message: msg}
	}
	if len(doc.Content) == 0 {
		return nil
	}
	if top := doc.Content[0]; top.Kind != yaml.MappingNode {
		return &ValidationError{FilePath: path, Line: top.Line, Message: "expected a mapping of config keys such as threads_per_job"}
	}
	return nil
}

// yamlErrorPosition splits "yaml: line 5: did not find expected key" into
// its line and message.
func yamlErrorPosition(err error) (int, string) {
	rest, ok := strings.CutPrefix(err.Error(), "yaml: line ")
	if !ok {
		return 0, strings.TrimPrefix(err.Error(), "yaml: ")
	}
	num, msg, ok := strings.Cut(rest, ": ")
	line, convErr := strconv.Atoi(num)
	if !ok || convErr != nil {
		return 0, err.Error()
	}
	return line, msg
}

// validate is shared; it names fields by their koanf key so errors read
// like the config file.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// checkValues validates the merged configuration. Every offending key is
// reported; origin names where the values came from.
func checkValues(cfg *Configuration, origin string) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{FilePath: origin, Message: err.Error()}
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &ValidationError{
			FilePath: origin,
			Key:      configKey(fe.Namespace()),
			Message:  describeConstraint(fe),
		})
	}
	return errors.Join(errs...)
}

// configKey drops the root type from a validator namespace:
// "Configuration.executor.cores" becomes "executor.cores".
func configKey(namespace string) string {
	_, key, ok := strings.Cut(namespace, ".")
	if !ok {
		return namespace
	}
	return key
}

func describeConstraint(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be set"
	case "min":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("is invalid (%s)", fe.Tag())
	}
}
