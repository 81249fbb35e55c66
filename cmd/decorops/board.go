package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"decorops/internal/models"
	"decorops/internal/workflow"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the stage board with days left and risk",
	RunE:  runBoard,
}

func init() {
	boardCmd.Flags().String("stage", "", "only print one stage")
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, args []string) error {
	var only models.StageID
	if raw, _ := cmd.Flags().GetString("stage"); raw != "" {
		id, err := models.ParseStage(raw)
		if err != nil {
			return err
		}
		only = id
	}

	client := newDataClient()
	board := workflow.NewBoard(client, logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.DataService.Timeout)
	defer cancel()
	board.Load(ctx, client)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tEVENT\tCLIENT\tDATE\tDAYS\tRISK")
	for _, col := range board.View().Columns {
		if only != "" && col.ID != only {
			continue
		}
		if len(col.Cards) == 0 {
			fmt.Fprintf(w, "%s (0)\t-\t\t\t\t\n", col.Name)
			continue
		}
		for i, card := range col.Cards {
			stage := ""
			if i == 0 {
				stage = fmt.Sprintf("%s (%d)", col.Name, col.Count)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				stage, card.Name, card.Client, card.Date.Format("2006-01-02"), card.DaysLeft, card.Risk.Label())
		}
	}
	return w.Flush()
}
