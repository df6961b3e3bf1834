package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start a conversational session. Prior turns in the session enrich each
prompt, so follow-up questions work naturally.

In-session commands:
  /stats   show routing statistics for this session
  /reset   zero the statistics counters
  /quit    end the session`,
	RunE: chatCommand,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func chatCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Printf("%s is listening. Type /quit to end the session.\n\n",
			a.config.Routing.AssistantName)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("you> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/stats":
			printStats(a)
			continue
		case "/reset":
			a.router.ResetStatistics()
			fmt.Println("statistics reset")
			continue
		}

		resp := a.router.Process(ctx, line)
		if interactive {
			fmt.Printf("\n%s\n", resp.Answer)
		} else {
			fmt.Println(resp.Answer)
		}
		for i, r := range resp.Resources {
			fmt.Printf("  [%d] %s\n", i+1, r.URL)
		}
		if interactive {
			fmt.Println()
		}
	}
	return scanner.Err()
}
