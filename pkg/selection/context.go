// Package selection holds the dashboard's cross-linking selection state:
// the time window, selected frame, selected cells, selected agent thread,
// and hovered cell shared by the timeline, table, heatmap, and agent views.
//
// The Context is the only mutable shared state besides the event logs.
// Fields are mutually independent: setting one never clears another, and
// referenced IDs are not validated against the logs — a selection pointing
// at an evicted frame simply resolves to "no match" in the view layer.
package selection

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidRange is the sentinel behind every rejected time window;
// match with errors.Is, or errors.As against *InvalidRangeError for the
// offending bounds.
var ErrInvalidRange = errors.New("invalid time window")

// TimeWindow is an inclusive [Start, End] timestamp range in epoch
// milliseconds.
type TimeWindow struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// InvalidRangeError is returned by SetTimeWindow when start > end.
// The prior window is retained.
type InvalidRangeError struct {
	Start int64
	End   int64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid time window: start %d > end %d", e.Start, e.End)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// Snapshot is an immutable copy of the selection state.
type Snapshot struct {
	TimeWindow       *TimeWindow `json:"time_window,omitempty"`
	SelectedFrameID  string      `json:"selected_frame_id,omitempty"`
	SelectedCells    []string    `json:"selected_cells,omitempty"`
	SelectedThreadID string      `json:"selected_thread_id,omitempty"`
	HoveredCell      string      `json:"hovered_cell,omitempty"`
}

// Context is the shared selection state. Created once per session with all
// fields empty; every field is independently settable and clearable.
//
// All mutations go through the setters below so the start ≤ end invariant
// is enforced centrally. Guarded by a mutex: HTTP handlers mutate while
// view queries read.
type Context struct {
	mu               sync.RWMutex
	timeWindow       *TimeWindow
	selectedFrameID  string
	selectedCells    []string
	selectedThreadID string
	hoveredCell      string
}

// NewContext creates an empty selection context.
func NewContext() *Context {
	return &Context{}
}

// SetTimeWindow replaces the time window. Returns *InvalidRangeError and
// leaves the prior window in place when start > end.
func (c *Context) SetTimeWindow(start, end int64) error {
	if start > end {
		return &InvalidRangeError{Start: start, End: end}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeWindow = &TimeWindow{Start: start, End: end}
	return nil
}

// ClearTimeWindow unsets the time window.
func (c *Context) ClearTimeWindow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeWindow = nil
}

// SetSelectedFrame replaces the selected frame reference. An empty id
// clears the selection. The id is not validated against the frame log.
func (c *Context) SetSelectedFrame(frameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedFrameID = frameID
}

// SetSelectedCells replaces the selected cells wholesale (not additive).
// An empty or nil slice clears the selection. Order is preserved for
// display; duplicates carry no meaning.
func (c *Context) SetSelectedCells(cells []string) {
	copied := make([]string, len(cells))
	copy(copied, cells)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(copied) == 0 {
		c.selectedCells = nil
		return
	}
	c.selectedCells = copied
}

// SetSelectedThread replaces the selected agent thread reference.
// An empty id clears the selection.
func (c *Context) SetSelectedThread(threadID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedThreadID = threadID
}

// SetHoveredCell replaces the transient hovered cell. An empty label
// clears it (pointer-leave).
func (c *Context) SetHoveredCell(cell string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hoveredCell = cell
}

// Clear resets every field to its empty value in one operation.
// Idempotent.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeWindow = nil
	c.selectedFrameID = ""
	c.selectedCells = nil
	c.selectedThreadID = ""
	c.hoveredCell = ""
}

// Snapshot returns a copy of the current state. The copy is detached:
// later mutations of the context do not affect it.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		SelectedFrameID:  c.selectedFrameID,
		SelectedThreadID: c.selectedThreadID,
		HoveredCell:      c.hoveredCell,
	}
	if c.timeWindow != nil {
		w := *c.timeWindow
		s.TimeWindow = &w
	}
	if len(c.selectedCells) > 0 {
		s.SelectedCells = make([]string, len(c.selectedCells))
		copy(s.SelectedCells, c.selectedCells)
	}
	return s
}

// TimeWindow returns a copy of the current window, or nil if unset.
func (c *Context) TimeWindow() *TimeWindow {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.timeWindow == nil {
		return nil
	}
	w := *c.timeWindow
	return &w
}

// SelectedFrameID returns the selected frame reference ("" if unset).
func (c *Context) SelectedFrameID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selectedFrameID
}

// SelectedThreadID returns the selected thread reference ("" if unset).
func (c *Context) SelectedThreadID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selectedThreadID
}
