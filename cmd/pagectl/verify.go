package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pagekit/freelist"
	"github.com/joshuapare/pagekit/pager"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check the free list for corruption",
		Long: `The verify command walks the free list and checks that every free page
appears once, lies inside the file and is not the header page, and that every
list page is well formed. It exits non-zero when corruption is found.

Example:
  pagectl verify pages.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args[0])
		},
	}
	return cmd
}

// verifyResult is the JSON shape of the verify command.
type verifyResult struct {
	File      string `json:"file"`
	Valid     bool   `json:"valid"`
	ListPages int    `json:"list_pages"`
	Entries   int    `json:"entries"`
	FreePages int    `json:"free_pages"`
	Error     string `json:"error,omitempty"`
}

func runVerify(path string) error {
	s, err := pager.OpenSnapshot(path)
	if err != nil {
		return fmt.Errorf("failed to open page file: %w", err)
	}
	defer s.Close()

	stats, verr := s.Verify()
	res := verifyResult{
		File:      path,
		Valid:     verr == nil,
		ListPages: stats.ListPages,
		Entries:   stats.Entries,
		FreePages: stats.FreePages(),
	}
	if verr != nil {
		res.Error = verr.Error()
	}

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else if verr == nil {
		printInfo("✓ Free list valid: %d free pages in %d list pages\n", res.FreePages, res.ListPages)
	} else {
		var ce *freelist.CorruptionError
		if errors.As(verr, &ce) {
			printInfo("✗ Corruption in list page %s: %s\n", formatPageID(ce.PageID), ce.Reason)
		}
	}
	return verr
}
