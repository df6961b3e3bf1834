package cli

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	auditPath  string
	noSearch   bool
)

var rootCmd = &cobra.Command{
	Use:   "jarvisd",
	Short: "Jarvis - resilient conversational assistant",
	Long: `Jarvis is a local-first conversational assistant that routes each query
through security screening, intent classification, optional web search, and
a fallback chain of language-model providers. Every query gets an answer:
backend failures degrade quality (missing citations, lower confidence, a
generic fallback), never availability.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML file (default: ~/.jarvisd/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&auditPath, "log", "", "Path to audit log file (default: ~/.jarvisd/audit.jsonl)")
	rootCmd.PersistentFlags().BoolVar(&noSearch, "no-search", false, "Disable the web search stage")
}

func Execute() error {
	return rootCmd.Execute()
}
