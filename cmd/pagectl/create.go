package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pagekit/internal/format"
	"github.com/joshuapare/pagekit/internal/logger"
	"github.com/joshuapare/pagekit/pager"
)

func init() {
	rootCmd.AddCommand(newCreateCmd())
}

func newCreateCmd() *cobra.Command {
	var (
		pageShift uint
		pages     int
	)
	cmd := &cobra.Command{
		Use:   "create <file>",
		Short: "Create an empty page file",
		Long: `The create command creates a new page file holding only the header page.
It fails if the file exists. With --pages, the file is grown to hold that many
free pages.

Example:
  pagectl create pages.db
  pagectl create pages.db --page-shift 16 --pages 128`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args[0], pageShift, pages)
		},
	}
	cmd.Flags().UintVar(&pageShift, "page-shift", format.DefaultPageShift,
		fmt.Sprintf("Page size as a power of two (%d-%d)", format.MinPageShift, format.MaxPageShift))
	cmd.Flags().IntVar(&pages, "pages", 0, "Number of free pages to preallocate")
	return cmd
}

func runCreate(path string, pageShift uint, pages int) error {
	if pages < 0 {
		return fmt.Errorf("--pages must not be negative, got %d", pages)
	}
	opts := pagerOptions()
	opts.PageShift = pageShift
	if pages > 0 {
		opts.GrowPages = pages
	}

	printVerbose("Creating %s with %d-byte pages\n", path, format.PageSize(pageShift))
	p, err := pager.Create(fsys, path, opts)
	if err != nil {
		return err
	}
	if pages > 0 {
		// Growing by n pages hands out the first and frees the rest.
		id, err := p.Alloc()
		if err == nil {
			err = p.Free(id)
		}
		if err != nil {
			_ = p.Close()
			return fmt.Errorf("preallocate: %w", err)
		}
	}
	if err := p.Close(); err != nil {
		return err
	}
	logger.Info("created page file", "path", path, "page_shift", pageShift, "free_pages", pages)

	if jsonOut {
		return printJSON(map[string]any{
			"file":       path,
			"page_size":  format.PageSize(pageShift),
			"free_pages": pages,
		})
	}
	printInfo("Created %s (%d-byte pages, %d free)\n", path, format.PageSize(pageShift), pages)
	return nil
}
