package models

// Pipeline stage names. Stage timings are keyed by these values.
const (
	StagePreprocess  = "preprocess"
	StageBoardDetect = "board_detect"
	StageGridFit     = "grid_fit"
	StageCrop        = "crop"
	StageClassify    = "classify"
	StagePostprocess = "postprocess"
)

// Stages lists all pipeline stages in processing order.
var Stages = []string{
	StagePreprocess,
	StageBoardDetect,
	StageGridFit,
	StageCrop,
	StageClassify,
	StagePostprocess,
}

// Severity classifies an anomaly.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Anomaly types produced by the detection pipeline.
const (
	AnomalyLowConfidence = "low_confidence"
	AnomalyCornerDrift   = "corner_drift"
)

// Point is a 2D image coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoardGeometry describes the detected board quadrilateral.
// Corners are ordered clockwise starting from the top-left.
type BoardGeometry struct {
	Corners           [4]Point `json:"corners"`
	ReprojectionError float64  `json:"reprojection_error"` // non-negative
}

// CellScore is the classifier output for a single board cell.
// Top1Class is a piece symbol (KQRBNP, lowercase for black) or "0" for empty.
type CellScore struct {
	Cell            string   `json:"cell"`             // "a1".."h8"
	Top1Class       string   `json:"top1_class"`       // piece symbol or "0"
	Top1Confidence  float64  `json:"top1_confidence"`  // in [0,1]
	Entropy         *float64 `json:"entropy,omitempty"`
	DeltaVsPrevious *float64 `json:"delta_vs_previous,omitempty"` // may be negative
}

// BoardDiff lists cell-level changes against the previous accepted state.
type BoardDiff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Moved   []string `json:"moved,omitempty"`
}

// AcceptedBoardState is a finalized reconstruction result for a frame.
type AcceptedBoardState struct {
	FEN      string     `json:"fen"`
	LastMove string     `json:"last_move,omitempty"` // 4-char algebraic, e.g. "e2e4"
	PGN      string     `json:"pgn,omitempty"`
	Diff     *BoardDiff `json:"diff,omitempty"`
}

// Anomaly is a flagged irregularity in a frame's detection.
type Anomaly struct {
	Type          string   `json:"type"`
	Severity      Severity `json:"severity"`
	Message       string   `json:"message"`
	AffectedCells []string `json:"affected_cells,omitempty"`
}

// PipelineFrameEvent represents one processed camera frame.
//
// Timestamps are integer milliseconds since epoch and strictly increase
// across a generated sequence (fixed-rate capture). CellScores holds at
// most 64 entries, one per board cell, all distinct within a frame.
type PipelineFrameEvent struct {
	FrameID            string              `json:"frame_id"`
	Timestamp          int64               `json:"timestamp"`
	StageTimings       map[string]float64  `json:"stage_timings"` // stage → duration ms
	BoardGeometry      *BoardGeometry      `json:"board_geometry,omitempty"`
	CellScores         []CellScore         `json:"cell_scores"`
	AcceptedBoardState *AcceptedBoardState `json:"accepted_board_state,omitempty"`
	Anomalies          []Anomaly           `json:"anomalies,omitempty"`
}

// EventTimestamp returns the frame's capture timestamp in epoch milliseconds.
func (f PipelineFrameEvent) EventTimestamp() int64 {
	return f.Timestamp
}

// TotalLatencyMS returns the sum of all stage timings for the frame.
func (f PipelineFrameEvent) TotalLatencyMS() float64 {
	var total float64
	for _, d := range f.StageTimings {
		total += d
	}
	return total
}
