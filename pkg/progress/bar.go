package progress

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Bar is the terminal Reporter, backed by a spinner-style progress bar.
// The total link count isn't known until collection finishes, so the bar
// runs in indeterminate mode and shows the running count instead of a
// percentage.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewBar builds a Bar writing to w (typically stderr, so the bar never
// interleaves with the stats output on stdout).
func NewBar(w io.Writer) *Bar {
	return &Bar{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("checking links"),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
		),
	}
}

func (b *Bar) Inc() { _ = b.bar.Add(1) }

func (b *Bar) SetCurrent(label string) { b.bar.Describe(label) }

// PrintLine writes msg above the bar without corrupting its rendering.
func (b *Bar) PrintLine(msg string) { _, _ = progressbar.Bprintln(b.bar, msg) }

func (b *Bar) Finish() { _ = b.bar.Finish() }

var _ Reporter = (*Bar)(nil)
