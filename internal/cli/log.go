package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"jarvisd/internal/config"
	"jarvisd/internal/logger"

	"github.com/spf13/cobra"
)

var (
	logFilterSource string
	logBlockedOnly  bool
	logLast         int
	logSummary      bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View and filter the audit log",
	Long: `View the query audit log with filtering and summary options.

Examples:
  jarvisd log                       # Show all entries
  jarvisd log --last 20             # Show last 20 entries
  jarvisd log --source WEB_SEARCH   # Show only search-answered queries
  jarvisd log --blocked             # Show only security blocks
  jarvisd log --summary             # Show summary statistics`,
	RunE: logCommand,
}

func init() {
	logCmd.Flags().StringVar(&logFilterSource, "source", "", "Filter by source (IDENTITY, INTERNAL_LLM, WEB_SEARCH, SECURITY_BLOCKED, FALLBACK)")
	logCmd.Flags().BoolVar(&logBlockedOnly, "blocked", false, "Show only blocked queries")
	logCmd.Flags().IntVar(&logLast, "last", 0, "Show last N entries")
	logCmd.Flags().BoolVar(&logSummary, "summary", false, "Show summary statistics")
	rootCmd.AddCommand(logCmd)
}

func logCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	path := cfg.Log.AuditPath
	if auditPath != "" {
		path = auditPath
	}

	events, err := readAuditLog(path)
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("No audit log entries found.")
		return nil
	}

	filtered := filterEvents(events)

	if logLast > 0 && logLast < len(filtered) {
		filtered = filtered[len(filtered)-logLast:]
	}

	if logSummary {
		printLogSummary(events, filtered)
		return nil
	}

	printEvents(filtered)
	return nil
}

func readAuditLog(path string) ([]logger.QueryEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []logger.QueryEvent
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event logger.QueryEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			// Skip corrupt lines rather than failing the whole view.
			continue
		}
		events = append(events, event)
	}
	return events, scanner.Err()
}

func filterEvents(events []logger.QueryEvent) []logger.QueryEvent {
	var filtered []logger.QueryEvent
	for _, e := range events {
		if logBlockedOnly && e.Source != "SECURITY_BLOCKED" {
			continue
		}
		if logFilterSource != "" && !strings.EqualFold(e.Source, logFilterSource) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func printEvents(events []logger.QueryEvent) {
	for _, e := range events {
		flags := ""
		if e.UsedSearch {
			flags += " [search]"
		}
		if e.SearchFailed {
			flags += " [search-failed]"
		}
		fmt.Printf("%s  %-16s %-14s %s%s\n", e.Timestamp, e.Source, e.Intent, e.Query, flags)
		if len(e.Errors) > 0 {
			for _, msg := range e.Errors {
				fmt.Printf("    ! %s\n", msg)
			}
		}
	}
}

func printLogSummary(all, filtered []logger.QueryEvent) {
	counts := make(map[string]int)
	var searchFailed, usedSearch int
	for _, e := range all {
		counts[e.Source]++
		if e.SearchFailed {
			searchFailed++
		}
		if e.UsedSearch {
			usedSearch++
		}
	}

	fmt.Printf("Total queries:  %d  (matching filter: %d)\n", len(all), len(filtered))
	for _, source := range []string{"IDENTITY", "INTERNAL_LLM", "WEB_SEARCH", "SECURITY_BLOCKED", "FALLBACK"} {
		if counts[source] > 0 {
			fmt.Printf("  %-17s %d\n", source, counts[source])
		}
	}
	fmt.Printf("Search used:    %d\n", usedSearch)
	fmt.Printf("Search failed:  %d\n", searchFailed)
}
