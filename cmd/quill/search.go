package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillhq/quill"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Run a one-shot search against the collection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := newManager()
		if err != nil {
			return err
		}

		result, err := manager.Search(context.Background(), quill.SearchParams{
			Term:  strings.Join(args, " "),
			Limit: searchLimit,
		})
		if err != nil {
			return err
		}

		fmt.Printf("%d hits in %s\n", result.Count, result.Elapsed.Formatted)
		for _, hit := range result.Hits {
			fmt.Printf("%s  score=%.4f\n  %s\n", hit.ID, hit.Score, hit.Document)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of hits")
}
