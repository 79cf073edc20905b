package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pagekit/freelist"
	"github.com/joshuapare/pagekit/pager"
)

func init() {
	rootCmd.AddCommand(newFreelistCmd())
}

func newFreelistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "freelist <file>",
		Short: "Dump the free list",
		Long: `The freelist command prints every list page of the free list, head first,
with the page ids stored in it (bottom of the stack first).

Example:
  pagectl freelist pages.db
  pagectl freelist pages.db --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFreelist(args[0])
		},
	}
	return cmd
}

// listPageJSON is the JSON shape of one list page.
type listPageJSON struct {
	Page    uint64   `json:"page"`
	Next    string   `json:"next"`
	Entries []uint64 `json:"entries"`
}

func runFreelist(path string) error {
	s, err := pager.OpenSnapshot(path)
	if err != nil {
		return fmt.Errorf("failed to open page file: %w", err)
	}
	defer s.Close()

	var pages []listPageJSON
	err = s.Walk(func(info freelist.ListPageInfo) error {
		lp := listPageJSON{
			Page:    uint64(info.ID),
			Next:    formatPageID(info.Next),
			Entries: make([]uint64, len(info.Entries)),
		}
		for i, id := range info.Entries {
			lp.Entries[i] = uint64(id)
		}
		pages = append(pages, lp)
		return nil
	})
	if err != nil {
		return err
	}

	if jsonOut {
		if pages == nil {
			pages = []listPageJSON{}
		}
		return printJSON(map[string]any{"list_pages": pages})
	}
	if len(pages) == 0 {
		printInfo("Free list is empty\n")
		return nil
	}
	for _, lp := range pages {
		entries := make([]string, len(lp.Entries))
		for i, id := range lp.Entries {
			entries[i] = fmt.Sprint(id)
		}
		printInfo("list page %s -> %s: %d entries\n", fmt.Sprint(lp.Page), lp.Next, len(lp.Entries))
		if len(entries) > 0 {
			printInfo("  [%s]\n", strings.Join(entries, " "))
		}
	}
	return nil
}
