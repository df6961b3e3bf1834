package shield

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pack is a YAML signature pack: a named, versioned set of extra signatures
// appended after the built-in table.
type Pack struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Version     string      `yaml:"version"`
	Author      string      `yaml:"author"`
	Signatures  []Signature `yaml:"signatures"`
}

// PackInfo summarizes a pack for listing.
type PackInfo struct {
	Name           string
	Description    string
	Version        string
	Author         string
	Enabled        bool
	Path           string
	SignatureCount int
}

// LoadPacks reads every .yaml/.yml file in dir and appends the enabled
// packs' signatures after base, preserving file order. Files prefixed with
// an underscore are present but disabled. A missing directory is not an
// error; a malformed pack is skipped and reported in its PackInfo.
func LoadPacks(dir string, base []Signature) ([]Signature, []PackInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil, nil
		}
		return nil, nil, err
	}

	result := make([]Signature, len(base))
	copy(result, base)

	var infos []PackInfo
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		baseName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		enabled := !strings.HasPrefix(baseName, "_")

		pack, err := loadPack(path)
		if err != nil {
			infos = append(infos, PackInfo{
				Name:    baseName,
				Enabled: enabled,
				Path:    path,
			})
			continue
		}

		info := PackInfo{
			Name:           pack.Name,
			Description:    pack.Description,
			Version:        pack.Version,
			Author:         pack.Author,
			Enabled:        enabled,
			Path:           path,
			SignatureCount: len(pack.Signatures),
		}
		if info.Name == "" {
			info.Name = baseName
		}
		infos = append(infos, info)

		if !enabled {
			continue
		}
		result = append(result, pack.Signatures...)
	}

	return result, infos, nil
}

// LoadPackFile reads and validates a single pack file.
func LoadPackFile(path string) (*Pack, error) {
	return loadPack(path)
}

func loadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse pack %s: %w", path, err)
	}

	for i, sig := range pack.Signatures {
		if sig.ID == "" {
			return nil, fmt.Errorf("pack %s: signature %d has no id", path, i)
		}
		if sig.Category == "" {
			pack.Signatures[i].Category = CategoryOther
		}
	}

	return &pack, nil
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
