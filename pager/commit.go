package pager

import (
	"context"
	"fmt"
	"time"

	"github.com/joshuapare/pagekit/internal/format"
)

// Commit makes every change since the last commit durable (subject to
// FlushMode). It is a no-op when nothing changed.
//
// If Commit fails, the changes stay pending and Commit may be retried. The
// file may be left marked as mid-commit, which the next Open reports.
//
// The context is checked between steps; cancelling mid-way leaves a
// partial commit that a later Commit completes.
func (p *Pager) Commit(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return p.commitLocked(ctx)
}

func (p *Pager) commitLocked(ctx context.Context) error {
	if !p.hdrDirty && p.dirty.len() == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	// Step 1: mark the file as mid-commit. The head and page count stay at
	// their committed values until the data pages are on disk.
	begin := p.committed
	begin.PrimarySeq++
	if err := p.writeHeader(&begin); err != nil {
		return fmt.Errorf("pager: begin commit: %w", err)
	}
	if p.opts.FlushMode == FlushFull {
		if err := p.file.Sync(); err != nil {
			return fmt.Errorf("pager: sync header: %w", err)
		}
	}

	// Step 2: data pages, NOT the header.
	pages, runs, err := p.dirty.flush(ctx, p.file, p.shift)
	if err != nil {
		return fmt.Errorf("pager: flush data pages: %w", err)
	}
	if p.opts.FlushMode != FlushDataOnly {
		if err := p.file.Sync(); err != nil {
			return fmt.Errorf("pager: sync data pages: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Step 3: publish the new header. SecondarySeq = PrimarySeq marks the
	// commit complete.
	hdr := p.hdr
	hdr.PrimarySeq = begin.PrimarySeq
	hdr.SecondarySeq = begin.PrimarySeq
	if err := p.writeHeader(&hdr); err != nil {
		return fmt.Errorf("pager: flush header: %w", err)
	}
	if p.opts.FlushMode != FlushDataOnly {
		if err := p.file.Sync(); err != nil {
			return fmt.Errorf("pager: sync header: %w", err)
		}
	}

	p.hdr = hdr
	p.committed = hdr
	p.hdrDirty = false
	p.metrics.commits.Inc()
	p.metrics.flushedPages.Add(float64(pages))
	p.log.Debug("commit",
		"path", p.path,
		"seq", hdr.PrimarySeq,
		"pages", pages,
		"runs", runs,
		"free_head", hdr.FreeListHead,
		"duration", time.Since(start))
	return nil
}

// Rollback discards every change since the last commit.
func (p *Pager) Rollback() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.dirty.reset()
	p.hdr = p.committed
	p.hdrDirty = false
	p.setBounds()
	return nil
}

// writeHeader encodes h into page 0.
func (p *Pager) writeHeader(h *format.Header) error {
	clear(p.hdrBuf)
	h.Encode(p.hdrBuf)
	return p.file.Write(p.hdrBuf, 0)
}
