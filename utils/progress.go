package utils

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"

	"vehicle-scraper/models"
)

// ProgressBar renders one tick per completed (make, type) pair.
type ProgressBar struct {
	bar   progress.Model
	out   io.Writer
	total int
	done  int
}

func NewProgressBar(out io.Writer, total int) *ProgressBar {
	return &ProgressBar{
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		out:   out,
		total: total,
	}
}

func (p *ProgressBar) Tick(pair models.SearchPair) {
	p.done++
	pct := 1.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total)
	}
	fmt.Fprintf(p.out, "\r%s %d/%d %-30s", p.bar.ViewAs(pct), p.done, p.total, pair.String())
	if p.done >= p.total {
		fmt.Fprintln(p.out)
	}
}
