package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pagekit/pager"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Validate a page file header and report basic metadata",
		Long: `The info command validates the header of a page file and displays its
page size, page count, free list head, commit sequence numbers and the number
of free pages.

Example:
  pagectl info pages.db
  pagectl info pages.db --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
	return cmd
}

// fileInfo is the JSON shape of the info command.
type fileInfo struct {
	File         string `json:"file"`
	Size         int64  `json:"size"`
	PageSize     int    `json:"page_size"`
	PageCount    uint64 `json:"page_count"`
	FreeListHead string `json:"free_list_head"`
	FreePages    int    `json:"free_pages"`
	PrimarySeq   uint32 `json:"primary_seq"`
	SecondarySeq uint32 `json:"secondary_seq"`
	Clean        bool   `json:"clean"`
}

func runInfo(path string) error {
	printVerbose("Opening page file: %s\n", path)

	s, err := pager.OpenSnapshot(path)
	if err != nil {
		return fmt.Errorf("failed to open page file: %w", err)
	}
	defer s.Close()

	hdr := s.Header()
	info := fileInfo{
		File:         path,
		PageSize:     s.PageSize(),
		PageCount:    hdr.PageCount,
		FreeListHead: formatPageID(hdr.FreeListHead),
		PrimarySeq:   hdr.PrimarySeq,
		SecondarySeq: hdr.SecondarySeq,
		Clean:        hdr.Clean(),
	}
	if stat, err := os.Stat(path); err == nil {
		info.Size = stat.Size()
	}
	stats, err := s.Verify()
	if err != nil {
		return fmt.Errorf("free list: %w", err)
	}
	info.FreePages = stats.FreePages()

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nPage File Information:\n")
	printInfo("  File: %s\n", path)
	printInfo("  Size: %s\n", formatSize(info.Size))
	printInfo("  Page size: %d bytes\n", info.PageSize)
	printInfo("  Pages: %d\n", info.PageCount)
	printInfo("  Free pages: %d\n", info.FreePages)
	printInfo("  Free list head: %s\n", info.FreeListHead)
	printInfo("  Sequence: %d/%d\n", info.PrimarySeq, info.SecondarySeq)
	if info.Clean {
		printInfo("  ✓ Last commit completed\n")
	} else {
		printInfo("  ✗ Last commit did not complete\n")
	}
	return nil
}
