package pager

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/pagekit/internal/format"
)

// FlushMode controls durability guarantees for commits.
type FlushMode int

const (
	// FlushAuto syncs once the data pages are written and again after the
	// final header write.
	FlushAuto FlushMode = iota

	// FlushDataOnly writes pages and headers but never syncs. The caller
	// calls Sync when a batch of commits should become durable.
	FlushDataOnly

	// FlushFull additionally syncs after the first header write, so the
	// mid-commit marker is durable before any data page is touched.
	FlushFull
)

func (m FlushMode) String() string {
	switch m {
	case FlushAuto:
		return "auto"
	case FlushDataOnly:
		return "data-only"
	case FlushFull:
		return "full"
	default:
		return "unknown"
	}
}

// Options configures a Pager. A nil *Options means DefaultOptions.
type Options struct {
	// PageShift selects the page size (1 << PageShift) of a new file. Open
	// ignores it and uses the shift recorded in the header. 0 means
	// format.DefaultPageShift.
	PageShift uint

	// GrowPages is how many pages the file grows by when the free list is
	// empty. The first is returned, the rest are freed. 0 means 1.
	GrowPages int

	// FlushMode controls syncing during Commit.
	FlushMode FlushMode

	// VerifyUnclean makes Open validate the free list of a file whose last
	// commit did not finish.
	VerifyUnclean bool

	// Logger receives debug and warning events. nil discards them.
	Logger *slog.Logger

	// Registerer receives the pager's metrics. nil leaves them unregistered.
	Registerer prometheus.Registerer
}

// DefaultOptions returns the options used when nil is passed.
func DefaultOptions() *Options {
	return &Options{
		PageShift:     format.DefaultPageShift,
		GrowPages:     1,
		FlushMode:     FlushAuto,
		VerifyUnclean: true,
	}
}

// withDefaults returns a copy of o with zero values replaced.
func (o *Options) withDefaults() Options {
	if o == nil {
		o = DefaultOptions()
	}
	out := *o
	if out.PageShift == 0 {
		out.PageShift = format.DefaultPageShift
	}
	if out.GrowPages <= 0 {
		out.GrowPages = 1
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}
	return out
}
