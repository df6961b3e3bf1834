package shield

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"gopkg.in/yaml.v3"
)

// redTeamPrompt is a single adversarial (or benign control) query.
type redTeamPrompt struct {
	Query     string `yaml:"query"`
	WantBlock bool   `yaml:"want_block"`
	Category  string `yaml:"category"`
}

// redTeamCase groups prompts by evasion technique.
type redTeamCase struct {
	ID          string          `yaml:"id"`
	Description string          `yaml:"description"`
	Prompts     []redTeamPrompt `yaml:"prompts"`
}

type redTeamSuite struct {
	Cases []redTeamCase `yaml:"cases"`
}

func loadRedTeamCases(t *testing.T) []redTeamCase {
	t.Helper()

	_, filename, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(filename), "testdata", "redteam_prompts.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read red-team prompts: %v", err)
	}

	var suite redTeamSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		t.Fatalf("failed to parse red-team YAML: %v", err)
	}

	if len(suite.Cases) == 0 {
		t.Fatal("no red-team cases loaded")
	}

	return suite.Cases
}

// TestRedTeamCorpus runs the adversarial prompt corpus through the shield
// with the built-in signature table and asserts block decisions and
// categories. Benign control queries assert the false-positive boundary.
func TestRedTeamCorpus(t *testing.T) {
	cases := loadRedTeamCases(t)
	s := New(BuiltinSignatures(), slog.Default())

	var passed, failed int
	for _, tc := range cases {
		t.Run(tc.ID, func(t *testing.T) {
			for _, p := range tc.Prompts {
				assessment := s.Assess(p.Query)

				if assessment.Threat != p.WantBlock {
					failed++
					t.Errorf("%q: Threat = %v, want %v (matched %s)",
						p.Query, assessment.Threat, p.WantBlock, assessment.SignatureID)
					continue
				}
				if p.WantBlock && p.Category != "" && string(assessment.Category) != p.Category {
					failed++
					t.Errorf("%q: Category = %s, want %s (matched %s)",
						p.Query, assessment.Category, p.Category, assessment.SignatureID)
					continue
				}
				passed++
			}
		})
	}

	if failed > 0 {
		fmt.Printf("red team corpus: %d passed, %d failed\n", passed, failed)
	}
}
