package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"folio/internal/agent"
)

var (
	askRaw   bool
	askUsage bool
)

// askCmd runs one question through the same agent the gateway uses.
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the portfolio agent a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if err := appInstance.InitAgent(ctx); err != nil {
			return err
		}
		log.Debugf("Agent tools: %s", strings.Join(appInstance.Agent.ToolNames(), ", "))

		question := strings.Join(args, " ")
		answer, err := appInstance.Agent.Run(ctx, []agent.Message{{Role: agent.RoleUser, Content: question}})
		if err != nil {
			return fmt.Errorf("agent run failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if askRaw {
			fmt.Fprintln(out, answer)
		} else {
			fmt.Fprint(out, renderMarkdown(answer))
		}

		if askUsage {
			sum, err := appInstance.CostTracker.Summary(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, color.New(color.Faint).Sprintf("%d calls, %d input / %d output tokens, $%.6f",
				sum.Calls, sum.InputTokens, sum.OutputTokens, sum.TotalUSD))
		}
		return nil
	},
}

func renderMarkdown(s string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return s + "\n"
	}
	rendered, err := renderer.Render(s)
	if err != nil {
		return s + "\n"
	}
	return rendered
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVar(&askRaw, "raw", false, "Print the answer without markdown rendering")
	askCmd.Flags().BoolVar(&askUsage, "usage", false, "Print token usage after the answer")
}
