package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quaero-labs/quaero/internal/core/domain"
)

var (
	askDocs []string
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Runs the full answer pipeline: query correction, decomposition,
two-stage retrieval and grounded generation. Without --doc the whole
corpus is searched.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVar(&askDocs, "doc", nil, "restrict retrieval to these document IDs (repeatable)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := a.pipeline.Answer(context.Background(), args[0], askDocs)
	if err != nil {
		return err
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range answer.Sources {
			page := "?"
			if src.Page != domain.PageUnknown {
				page = fmt.Sprintf("%d", src.Page)
			}
			cmd.Printf("  %s (page %s, %s)\n", src.DocumentID, page, src.Kind)
		}
	}
	return nil
}
