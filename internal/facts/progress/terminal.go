package progress

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// refreshInterval matches the 10 Hz cadence of interactive terminal UIs: fast
// enough to feel live, slow enough not to saturate a pipe.
const refreshInterval = 100 * time.Millisecond

// Terminal is a Reporter backed by a single progressbar.ProgressBar that is
// recreated whenever the mode (determinate/indeterminate) changes. It hides
// itself until visibleAt (construction time plus the configured delay) has
// passed, so operations
// that finish quickly never flash a bar on screen.
type Terminal struct {
	mu            sync.Mutex
	bar           *progressbar.ProgressBar
	phase         string
	phaseStarted  time.Time
	indeterminate bool
	callback      func() (uint64, uint64, string)

	visible     atomic.Bool
	visibleAt   time.Time
	stopRefresh chan struct{}
	refreshDone chan struct{}
}

// NewTerminal starts a Terminal reporter. The bar stays hidden until delay
// has elapsed from this call, so short-lived operations never flicker a bar.
func NewTerminal(delay time.Duration) *Terminal {
	t := &Terminal{
		phaseStarted: time.Now(),
		visibleAt:    time.Now().Add(delay),
		callback:     func() (uint64, uint64, string) { return 0, 0, "" },
		stopRefresh:  make(chan struct{}),
		refreshDone:  make(chan struct{}),
	}
	go t.refreshLoop()
	return t
}

func (t *Terminal) refreshLoop() {
	defer close(t.refreshDone)
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stopRefresh:
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

func (t *Terminal) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.visible.Load() {
		if time.Now().Before(t.visibleAt) {
			return
		}
		t.visible.Store(true)
	}
	if t.bar == nil {
		return
	}

	total, current, message := t.callback()
	if t.indeterminate {
		elapsed := time.Since(t.phaseStarted).Round(time.Second)
		message = fmt.Sprintf("%s: %s", elapsed, message)
	} else if total > 0 {
		t.bar.ChangeMax64(int64(total))
		_ = t.bar.Set64(int64(current))
	}
	t.bar.Describe(message)
}

// SetPhase labels the operation now in progress and resets the elapsed-time
// clock used by the indeterminate display.
func (t *Terminal) SetPhase(phase string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = phase
	t.phaseStarted = time.Now()
	if t.bar != nil {
		t.bar.Describe(phase)
	}
}

// SetDeterminate switches to a bounded bar driven by callback.
func (t *Terminal) SetDeterminate(callback func() (total, current uint64, message string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indeterminate = false
	t.callback = callback
	t.bar = progressbar.NewOptions64(0,
		progressbar.OptionSetDescription(t.phase),
		progressbar.OptionSetWidth(25),
		progressbar.OptionThrottle(refreshInterval),
	)
}

// SetIndeterminate switches to an unbounded spinner driven by callback.
func (t *Terminal) SetIndeterminate(callback func() string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indeterminate = true
	t.phaseStarted = time.Now()
	t.callback = func() (uint64, uint64, string) { return 0, 0, callback() }
	t.bar = progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription(t.phase),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(refreshInterval),
	)
}

// Println writes a line without corrupting the bar's current render.
func (t *Terminal) Println(msg string) {
	t.mu.Lock()
	bar := t.bar
	t.mu.Unlock()
	if bar != nil {
		bar.Clear()
	}
	fmt.Println(msg)
}

// Done stops the refresh loop and clears the bar from the terminal.
func (t *Terminal) Done() {
	close(t.stopRefresh)
	<-t.refreshDone
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bar != nil && t.visible.Load() {
		_ = t.bar.Clear()
	}
}

var _ Reporter = (*Terminal)(nil)
