// Package views computes read-side projections over event-log snapshots
// and the current selection state: window filtering, frame resolution,
// timeline metrics, agent grouping, and alert flattening.
//
// Every function is a pure, deterministic function of its inputs and never
// fails — absent or inconsistent data degrades to an empty result so the
// presentation layer stays responsive regardless of data completeness.
package views

import (
	"sort"

	"github.com/chessops/dashboard/pkg/models"
	"github.com/chessops/dashboard/pkg/selection"
)

// FramesInWindow returns the contiguous subsequence of frames with
// window.Start <= timestamp <= window.End (inclusive both ends),
// preserving order. A nil window returns all frames.
//
// Frames are timestamp-ordered in the log, so the bounds are found by
// binary search.
func FramesInWindow(frames []models.PipelineFrameEvent, window *selection.TimeWindow) []models.PipelineFrameEvent {
	return inWindow(frames, window, models.PipelineFrameEvent.EventTimestamp)
}

// AgentEventsInWindow is the agent-event counterpart of FramesInWindow.
func AgentEventsInWindow(events []models.AgentEvent, window *selection.TimeWindow) []models.AgentEvent {
	return inWindow(events, window, models.AgentEvent.EventTimestamp)
}

func inWindow[T any](events []T, window *selection.TimeWindow, ts func(T) int64) []T {
	if window == nil {
		return events
	}
	lo := sort.Search(len(events), func(i int) bool {
		return ts(events[i]) >= window.Start
	})
	hi := sort.Search(len(events), func(i int) bool {
		return ts(events[i]) > window.End
	})
	if lo >= hi {
		return nil
	}
	return events[lo:hi]
}

// ResolveSelectedFrame resolves a frame selection against a log snapshot.
//
// An empty frameID defaults to the most recent frame. A dangling frameID
// (e.g. the frame was evicted) is not an error: it resolves to no match.
func ResolveSelectedFrame(frames []models.PipelineFrameEvent, frameID string) (models.PipelineFrameEvent, bool) {
	if frameID == "" {
		if len(frames) == 0 {
			return models.PipelineFrameEvent{}, false
		}
		return frames[len(frames)-1], true
	}
	for _, f := range frames {
		if f.FrameID == frameID {
			return f, true
		}
	}
	return models.PipelineFrameEvent{}, false
}

// FrameMetrics is one timeline-series point derived from a frame.
type FrameMetrics struct {
	FrameID        string  `json:"frame_id"`
	Timestamp      int64   `json:"timestamp"`
	TotalLatencyMS float64 `json:"total_latency_ms"`
	AvgConfidence  float64 `json:"avg_confidence"`
	DetectionCount int     `json:"detection_count"`
}

// AggregateMetrics computes per-frame totals for the timeline series:
// total latency (sum of stage timings), average top-1 confidence (0 when
// the frame has no scores), and detection count.
func AggregateMetrics(frames []models.PipelineFrameEvent) []FrameMetrics {
	metrics := make([]FrameMetrics, 0, len(frames))
	for _, f := range frames {
		m := FrameMetrics{
			FrameID:        f.FrameID,
			Timestamp:      f.Timestamp,
			TotalLatencyMS: f.TotalLatencyMS(),
			DetectionCount: len(f.CellScores),
		}
		if len(f.CellScores) > 0 {
			var sum float64
			for _, s := range f.CellScores {
				sum += s.Top1Confidence
			}
			m.AvgConfidence = sum / float64(len(f.CellScores))
		}
		metrics = append(metrics, m)
	}
	return metrics
}

// AgentGroup is the per-agent partition of an event sequence.
type AgentGroup struct {
	Agent  string              `json:"agent"`
	Events []models.AgentEvent `json:"events"`
}

// GroupAgentEventsByAgent partitions events by agent, preserving
// within-group timestamp order. Groups appear in order of each agent's
// first event. Input is normally already timestamp-sorted; if not, it is
// sorted ascending with ties broken by original insertion order.
func GroupAgentEventsByAgent(events []models.AgentEvent) []AgentGroup {
	if len(events) == 0 {
		return nil
	}

	if !sort.SliceIsSorted(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	}) {
		sorted := make([]models.AgentEvent, len(events))
		copy(sorted, events)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp < sorted[j].Timestamp
		})
		events = sorted
	}

	index := make(map[string]int)
	groups := make([]AgentGroup, 0)
	for _, e := range events {
		i, ok := index[e.Agent]
		if !ok {
			i = len(groups)
			index[e.Agent] = i
			groups = append(groups, AgentGroup{Agent: e.Agent})
		}
		groups[i].Events = append(groups[i].Events, e)
	}
	return groups
}

// EventsInThread filters events to one conversation thread, preserving
// order. An empty or dangling threadID yields an empty result.
func EventsInThread(events []models.AgentEvent, threadID string) []models.AgentEvent {
	if threadID == "" {
		return nil
	}
	var thread []models.AgentEvent
	for _, e := range events {
		if e.ThreadID == threadID {
			thread = append(thread, e)
		}
	}
	return thread
}

// Alert is an anomaly tagged with its originating frame.
type Alert struct {
	FrameID   string         `json:"frame_id"`
	Timestamp int64          `json:"timestamp"`
	Anomaly   models.Anomaly `json:"anomaly"`
}

// AlertsFromFrames flattens every frame's anomalies into one list, sorted
// by timestamp descending (most recent first) with ties kept in original
// frame order.
func AlertsFromFrames(frames []models.PipelineFrameEvent) []Alert {
	var alerts []Alert
	for _, f := range frames {
		for _, a := range f.Anomalies {
			alerts = append(alerts, Alert{
				FrameID:   f.FrameID,
				Timestamp: f.Timestamp,
				Anomaly:   a,
			})
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Timestamp > alerts[j].Timestamp
	})
	return alerts
}
