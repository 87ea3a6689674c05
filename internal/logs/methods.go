package logs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/poretally/internal/banner"
)

// ErrNoMethods is returned when a log holds no complete METHODS block.
var ErrNoMethods = errors.New("no METHODS block found in log")

// ToolVersion is one probed tool with the text its probe printed.
type ToolVersion struct {
	Tool    string `yaml:"tool" json:"tool"`
	Version string `yaml:"version" json:"version"`
}

// Methods is the decoded METHODS block of a pipeline log.
type Methods struct {
	Description string        `yaml:"description" json:"description"`
	Versions    []ToolVersion `yaml:"versions" json:"versions"`
}

// ParseMethods extracts the METHODS block from a pipeline log. Logs are
// appended to on every run, so the last complete block wins.
func ParseMethods(r io.Reader) (*Methods, error) {
	block, err := lastBlock(r)
	if err != nil {
		return nil, err
	}
	if m, err := decodeYAML(block); err == nil {
		return m, nil
	}
	// Probe output is free text and may not be valid YAML, e.g. "x: v: 1".
	return decodeLines(block)
}

func lastBlock(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var last, current []string
	inBlock := false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case line == banner.StartSentinel:
			inBlock = true
			current = []string{}
		case line == banner.EndSentinel && inBlock:
			inBlock = false
			last = current
		case inBlock:
			current = append(current, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	if last == nil {
		return nil, ErrNoMethods
	}
	return last, nil
}

func decodeYAML(block []string) (*Methods, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(strings.Join(block, "\n")), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("METHODS block is not a mapping")
	}

	m := &Methods{}
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "description":
			m.Description = val.Value
		case "versions":
			if val.Kind != yaml.MappingNode {
				continue
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				if val.Content[j+1].Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("version of %s is not a scalar", val.Content[j].Value)
				}
				m.Versions = append(m.Versions, ToolVersion{
					Tool:    val.Content[j].Value,
					Version: val.Content[j+1].Value,
				})
			}
		}
	}
	return m, nil
}

// decodeLines reads the block by its fixed banner layout instead.
func decodeLines(block []string) (*Methods, error) {
	m := &Methods{}
	inVersions := false
	for _, line := range block {
		switch {
		case strings.HasPrefix(line, "description:"):
			m.Description = strings.TrimSpace(strings.TrimPrefix(line, "description:"))
			inVersions = false
		case line == "versions:":
			inVersions = true
		case inVersions && strings.HasPrefix(line, "  "):
			tool, version, ok := strings.Cut(strings.TrimPrefix(line, "  "), ":")
			if !ok {
				return nil, fmt.Errorf("malformed version line %q", line)
			}
			m.Versions = append(m.Versions, ToolVersion{Tool: tool, Version: strings.TrimSpace(version)})
		}
	}
	return m, nil
}
