package config

import (
	"fmt"
	"os"
	"regexp"

	log "github.com/cloud-bulldozer/jmeter-reports/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Description is the free text and test environment attached to a report.
// It is passed through to the rendered report unchanged.
type Description struct {
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Environment Environment `yaml:"environment,omitempty" json:"environment,omitempty"`
}

// EnvEntry one key/value line of the test environment. Key is empty for
// plain list items.
type EnvEntry struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// Environment keeps the entries in file order.
type Environment []EnvEntry

// UnmarshalYAML accepts a mapping, a list of single-key mappings or a list
// of plain strings.
func (e *Environment) UnmarshalYAML(node *yaml.Node) error {
	var entries Environment
	switch node.Kind {
	case yaml.MappingNode:
		entries = append(entries, pairs(node)...)
	case yaml.SequenceNode:
		for _, item := range node.Content {
			switch item.Kind {
			case yaml.MappingNode:
				entries = append(entries, pairs(item)...)
			case yaml.ScalarNode:
				entries = append(entries, EnvEntry{Value: item.Value})
			default:
				return fmt.Errorf("line %d: unsupported environment entry", item.Line)
			}
		}
	case yaml.ScalarNode:
		if node.Value != "" {
			entries = append(entries, EnvEntry{Value: node.Value})
		}
	default:
		return fmt.Errorf("line %d: environment must be a list or a mapping", node.Line)
	}
	*e = entries
	return nil
}

func pairs(node *yaml.Node) []EnvEntry {
	var out []EnvEntry
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, EnvEntry{Key: node.Content[i].Value, Value: node.Content[i+1].Value})
	}
	return out
}

// ParseConf will read in the report description file.
// Returns Description struct
func ParseConf(fn string) (Description, error) {
	log.Infof("📒 Reading %s file. ", fn)
	var d Description
	buf, err := os.ReadFile(fn)
	if err != nil {
		return d, err
	}
	err = yaml.Unmarshal(buf, &d)
	if err != nil {
		return d, fmt.Errorf("in file %q: %v", fn, err)
	}
	return d, nil
}

var validName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidName checks a report name can be used as part of a directory name.
func ValidName(name string) error {
	if name == "" {
		return fmt.Errorf("report name must not be empty")
	}
	if name == "." || name == ".." || !validName.MatchString(name) {
		return fmt.Errorf("report name %q may only contain letters, digits, '.', '_' and '-'", name)
	}
	return nil
}

// Show Display the description
func Show(d Description) {
	if d.Description != "" {
		log.Infof("🗒️  %s", d.Description)
	}
	for _, e := range d.Environment {
		log.Debugf("Environment %s: %s", e.Key, e.Value)
	}
}
