package intent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RulePack is a YAML file of extra classification rules appended after
// the built-in table. Files prefixed with an underscore are disabled.
type RulePack struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Rules       []Rule `yaml:"rules"`
}

// LoadRulePacks reads every .yaml/.yml file in dir and appends the
// enabled packs' rules after base, preserving file order. A missing
// directory is not an error; a malformed pack is skipped.
func LoadRulePacks(dir string, base []Rule) ([]Rule, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return nil, err
	}

	result := make([]Rule, len(base))
	copy(result, base)

	for _, entry := range entries {
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		if strings.HasPrefix(strings.TrimSuffix(name, ext), "_") {
			continue
		}

		pack, err := loadRulePack(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		result = append(result, pack.Rules...)
	}

	return result, nil
}

func loadRulePack(path string) (*RulePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pack RulePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse rule pack %s: %w", path, err)
	}

	for i, rule := range pack.Rules {
		if rule.ID == "" {
			return nil, fmt.Errorf("rule pack %s: rule %d has no id", path, i)
		}
		switch rule.Intent {
		case Identity, Conversational, Coding, Factual:
		default:
			return nil, fmt.Errorf("rule pack %s: rule %s has unknown intent %q", path, rule.ID, rule.Intent)
		}
	}

	return &pack, nil
}
