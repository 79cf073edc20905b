package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pagekit/internal/format"
	"github.com/joshuapare/pagekit/internal/logger"
	"github.com/joshuapare/pagekit/pager"
)

func init() {
	rootCmd.AddCommand(newAllocCmd())
	rootCmd.AddCommand(newFreeCmd())
}

func newAllocCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "alloc <file>",
		Short: "Allocate pages and print their ids",
		Long: `The alloc command takes pages from the free list, growing the file when the
list is empty, commits and prints the allocated page ids in order.

Example:
  pagectl alloc pages.db
  pagectl alloc pages.db -n 10 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlloc(cmd.Context(), args[0], count)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of pages to allocate")
	return cmd
}

func runAlloc(ctx context.Context, path string, count int) error {
	if count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", count)
	}
	ids := make([]format.PageID, 0, count)
	err := withPager(ctx, path, func(p *pager.Pager) error {
		for range count {
			id, err := p.Alloc()
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{"allocated": ids})
	}
	for _, id := range ids {
		printInfo("%s\n", formatPageID(id))
	}
	return nil
}

func newFreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "free <file> <page>...",
		Short: "Return pages to the free list",
		Long: `The free command pushes the given pages onto the free list and commits.
Pages are freed in argument order, so the last one is allocated first.

Example:
  pagectl free pages.db 3 7 9`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFree(cmd.Context(), args[0], args[1:])
		},
	}
	return cmd
}

func runFree(ctx context.Context, path string, args []string) error {
	ids := make([]format.PageID, 0, len(args))
	for _, arg := range args {
		id, err := parsePageID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	err := withPager(ctx, path, func(p *pager.Pager) error {
		for _, id := range ids {
			if err := p.Free(id); err != nil {
				return fmt.Errorf("free page %d: %w", id, err)
			}
			printVerbose("Freed page %s\n", formatPageID(id))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !jsonOut {
		printInfo("Freed %d page(s)\n", len(ids))
	}
	return nil
}

// withPager opens path, runs fn and commits. Changes are rolled back when
// fn fails.
func withPager(ctx context.Context, path string, fn func(*pager.Pager) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := pager.Open(fsys, path, pagerOptions())
	if err != nil {
		return err
	}
	logger.Debug("opened page file", "path", path, "pages", p.PageCount())
	if err := fn(p); err != nil {
		logger.Warn("rolling back", "path", path, "error", err)
		return errors.Join(err, p.Rollback(), p.Close())
	}
	if err := p.Commit(ctx); err != nil {
		logger.Error("commit failed", "path", path, "error", err)
		return errors.Join(err, p.Rollback(), p.Close())
	}
	return p.Close()
}
