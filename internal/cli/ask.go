package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var askVerbose bool

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask a single question and exit",
	Long: `Route one query through the full pipeline and print the answer.

Examples:
  jarvisd ask "What is quantum computing?"
  jarvisd ask --verbose "What's the latest Go release?"
  jarvisd ask --no-search "Write a function to reverse a string"`,
	Args: cobra.MinimumNArgs(1),
	RunE: askCommand,
}

func init() {
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "Show routing decisions, sources, and statistics")
	rootCmd.AddCommand(askCmd)
}

func askCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	query := strings.Join(args, " ")
	resp := a.router.Process(ctx, query)

	fmt.Println(resp.Answer)

	if len(resp.Resources) > 0 {
		fmt.Println("\nSources:")
		for i, r := range resp.Resources {
			fmt.Printf("  [%d] %s\n      %s\n", i+1, r.Title, r.URL)
		}
	}

	if askVerbose {
		fmt.Println()
		fmt.Printf("source:     %s\n", resp.Source)
		fmt.Printf("confidence: %.2f\n", resp.Confidence)
		fmt.Printf("elapsed:    %s\n", resp.Elapsed.Round(time.Millisecond))
		if resp.SearchFailed {
			fmt.Println("search:     failed (answered from internal knowledge)")
		}
		for _, step := range resp.Reasoning {
			fmt.Printf("  - %s\n", step)
		}
		for _, e := range resp.ErrorsCaught {
			fmt.Printf("  ! %s\n", e)
		}
		printStats(a)
	}
	return nil
}

func printStats(a *app) {
	snap := a.router.Statistics()
	fmt.Println("\nStatistics:")
	fmt.Printf("  total queries:   %d\n", snap.TotalQueries)
	fmt.Printf("  security blocks: %d\n", snap.SecurityBlocks)
	fmt.Printf("  search bypassed: %d\n", snap.SearchBypassed)
	fmt.Printf("  search used:     %d\n", snap.SearchUsed)
	fmt.Printf("  search failed:   %d\n", snap.SearchFailed)
	fmt.Printf("  fallbacks used:  %d\n", snap.FallbacksUsed)
}
