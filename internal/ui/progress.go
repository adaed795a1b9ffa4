package ui

import (
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/g5becks/outline/internal/index"
)

func NewProgressWriter(w io.Writer) progress.Writer {
	writer := progress.NewWriter()
	writer.SetOutputWriter(w)
	writer.SetAutoStop(true)
	writer.SetTrackerLength(30)
	writer.SetStyle(progress.StyleBlocks)
	writer.SetUpdateFrequency(100 * time.Millisecond)
	writer.Style().Visibility.ETA = true
	writer.Style().Visibility.Value = true

	return writer
}

// IndexProgress drives a progress bar from index run events.
type IndexProgress struct {
	writer  progress.Writer
	mu      sync.Mutex
	tracker *progress.Tracker
	done    chan struct{}
}

func NewIndexProgress(w io.Writer) *IndexProgress {
	return &IndexProgress{writer: NewProgressWriter(w)}
}

// HandleEvent is the callback wired into index.Options.OnEvent.
func (p *IndexProgress) HandleEvent(e index.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case index.EventRunStart:
		p.tracker = &progress.Tracker{Message: "indexing", Total: int64(e.Total), Units: progress.UnitsDefault}
		p.writer.AppendTracker(p.tracker)
		p.done = make(chan struct{})
		go func(done chan struct{}) {
			p.writer.Render()
			close(done)
		}(p.done)

	case index.EventFileDone:
		if p.tracker != nil {
			if e.Status == index.StatusFailed {
				p.tracker.IncrementWithError(1)
			} else {
				p.tracker.Increment(1)
			}
		}

	case index.EventFileStart:
	}
}

// Stop marks the bar done and waits for the final render.
func (p *IndexProgress) Stop() {
	p.mu.Lock()
	tracker, done := p.tracker, p.done
	p.mu.Unlock()

	if tracker == nil {
		return
	}

	tracker.MarkAsDone()
	p.writer.Stop()
	<-done
}
