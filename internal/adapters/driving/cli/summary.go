package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/assetsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/assetsync/internal/core/domain"
)

var outputStyles = styles.DefaultStyles()

// printSummary writes a boxed report of one run.
func printSummary(w io.Writer, s *domain.RunSummary) {
	st := outputStyles
	partial := s.FetchCount(domain.FetchStatusFailed) > 0 || s.GroupCount(domain.GroupStatusDecodeFailed) > 0

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", st.Outcome(false, partial), st.Subtitle.Render(s.Region))
	row := func(label, value string) {
		fmt.Fprintf(&b, "%s%s\n", st.Label.Render(label), st.Normal.Render(value))
	}
	row("fetched", fmt.Sprintf("%d (%s)", s.FetchCount(domain.FetchStatusFetched), humanize.Bytes(uint64(s.BytesFetched()))))
	row("cached", fmt.Sprintf("%d", s.FetchCount(domain.FetchStatusSkippedPresent)))
	row("raw copied", fmt.Sprintf("%d", s.FetchCount(domain.FetchStatusRawCopied)))
	row("groups", fmt.Sprintf("%d", len(s.Groups)))
	row("artifacts", humanize.Comma(int64(s.ArtifactCount())))
	row("took", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond).String())

	for _, f := range s.Fetches {
		if f.Status == domain.FetchStatusFailed {
			fmt.Fprintf(&b, "%s\n", st.Error.Render(fmt.Sprintf("fetch %s: %v", f.LogicalName, f.Err)))
		}
	}
	for _, g := range s.Groups {
		if g.Status == domain.GroupStatusDecodeFailed {
			fmt.Fprintf(&b, "%s\n", st.Error.Render(fmt.Sprintf("decode %s: %v", g.Destination, g.Err)))
		}
	}

	fmt.Fprintln(w, st.Box.Render(strings.TrimRight(b.String(), "\n")))
}

// failureCount returns the number of failed fetches and groups across runs.
func failureCount(summaries []*domain.RunSummary) int {
	n := 0
	for _, s := range summaries {
		n += s.FetchCount(domain.FetchStatusFailed) + s.GroupCount(domain.GroupStatusDecodeFailed)
	}
	return n
}
