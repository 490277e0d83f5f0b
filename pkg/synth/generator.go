// Package synth produces synthetic pipeline frames and agent events for
// driving the dashboard when no live detection pipeline is connected.
//
// Values are randomized but the shape is deterministic: all randomness
// comes from a seeded PRNG owned by the Generator, so identical seeds
// reproduce identical event sequences.
package synth

import (
	"fmt"
	"math/rand/v2"

	"github.com/chessops/dashboard/pkg/models"
)

// Default event pacing, simulating ~30 Hz capture and ~2 Hz agent activity.
const (
	DefaultFrameIntervalMS = 33
	DefaultAgentIntervalMS = 500
)

// anomalyRate is the per-frame probability of an injected anomaly.
const anomalyRate = 0.05

// toolCallRate is the per-step probability of a tool_call/tool_result pair
// instead of a plain message.
const toolCallRate = 0.30

// threadBucket groups this many consecutive agent steps into one thread.
const threadBucket = 5

// acceptedStatePeriod controls how often a frame carries a finalized
// accepted_board_state.
const acceptedStatePeriod = 15

// stageRange is the per-stage timing distribution, in milliseconds.
var stageRanges = []struct {
	stage    string
	min, max float64
}{
	{models.StagePreprocess, 2, 5},
	{models.StageBoardDetect, 5, 12},
	{models.StageGridFit, 3, 8},
	{models.StageCrop, 1, 3},
	{models.StageClassify, 15, 25},
	{models.StagePostprocess, 2, 6},
}

// agentPool is the cast of simulated agents for message events.
var agentPool = []struct {
	name string
	role models.AgentRole
}{
	{"perception", models.RolePerception},
	{"board-builder", models.RoleBoardReconstruction},
	{"rules-checker", models.RoleRulesEngine},
	{"engine", models.RoleChessEngine},
	{"planner", models.RolePlanner},
	{"reporter", models.RoleReporter},
}

var messagePhrases = []string{
	"board region stable, continuing at full rate",
	"reconstructed position matches previous frame",
	"move candidate validated against rules",
	"evaluating candidate lines for current position",
	"awaiting next stable frame before committing state",
	"summary updated for operator view",
}

var toolNames = []string{
	"detect_board",
	"classify_cells",
	"validate_move",
	"best_move",
}

// Config controls a Generator's sequence parameters. Zero intervals fall
// back to the package defaults.
type Config struct {
	Seed            uint64
	StartTime       int64 // epoch milliseconds of the first event
	FrameIntervalMS int64
	AgentIntervalMS int64
}

// Generator produces deterministic synthetic event sequences. It is pure
// computation over its own PRNG and counters — no I/O, cannot fail.
//
// Not safe for concurrent use; the feed runner is the only caller.
type Generator struct {
	rng *rand.Rand
	cfg Config

	frameSeq      int
	nextFrameTime int64

	agentSeq      int
	agentStep     int
	nextAgentTime int64
	lastEventID   string
	pendingResult *models.AgentEvent
}

// NewGenerator creates a Generator seeded from cfg.Seed.
func NewGenerator(cfg Config) *Generator {
	if cfg.FrameIntervalMS <= 0 {
		cfg.FrameIntervalMS = DefaultFrameIntervalMS
	}
	if cfg.AgentIntervalMS <= 0 {
		cfg.AgentIntervalMS = DefaultAgentIntervalMS
	}
	return &Generator{
		rng:           rand.New(rand.NewPCG(cfg.Seed, 0)),
		cfg:           cfg,
		nextFrameTime: cfg.StartTime,
		nextAgentTime: cfg.StartTime,
	}
}

// PipelineEvents generates the next count frames of the sequence.
// Timestamps continue from where the previous call left off, strictly
// increasing by the configured frame interval. count < 0 yields nil.
func (g *Generator) PipelineEvents(count int) []models.PipelineFrameEvent {
	if count <= 0 {
		return nil
	}
	frames := make([]models.PipelineFrameEvent, 0, count)
	for i := 0; i < count; i++ {
		frames = append(frames, g.nextFrame())
	}
	return frames
}

func (g *Generator) nextFrame() models.PipelineFrameEvent {
	frame := models.PipelineFrameEvent{
		FrameID:   fmt.Sprintf("frame-%06d", g.frameSeq),
		Timestamp: g.nextFrameTime,
	}
	g.frameSeq++
	g.nextFrameTime += g.cfg.FrameIntervalMS

	frame.StageTimings = make(map[string]float64, len(stageRanges))
	for _, r := range stageRanges {
		frame.StageTimings[r.stage] = r.min + g.rng.Float64()*(r.max-r.min)
	}

	frame.BoardGeometry = g.boardGeometry()
	frame.CellScores = g.cellScores()

	if g.rng.Float64() < anomalyRate {
		g.injectAnomaly(&frame)
	}

	if g.frameSeq%acceptedStatePeriod == 1 {
		frame.AcceptedBoardState = &models.AcceptedBoardState{
			FEN: models.StartingFEN,
		}
	}

	return frame
}

// boardGeometry produces a near-square quadrilateral with per-corner jitter.
func (g *Generator) boardGeometry() *models.BoardGeometry {
	base := [4]models.Point{
		{X: 100, Y: 100},
		{X: 540, Y: 100},
		{X: 540, Y: 540},
		{X: 100, Y: 540},
	}
	var corners [4]models.Point
	for i, p := range base {
		corners[i] = models.Point{
			X: p.X + (g.rng.Float64()-0.5)*6,
			Y: p.Y + (g.rng.Float64()-0.5)*6,
		}
	}
	return &models.BoardGeometry{
		Corners:           corners,
		ReprojectionError: g.rng.Float64() * 1.5,
	}
}

// cellScores covers a random contiguous prefix of 32-64 cells in canonical
// board order, so every cell label is valid and distinct within the frame.
func (g *Generator) cellScores() []models.CellScore {
	cells := models.AllCells()
	n := 32 + g.rng.IntN(models.BoardCellCount-32+1)

	scores := make([]models.CellScore, 0, n)
	for _, cell := range cells[:n] {
		entropy := g.rng.Float64() * 1.2
		score := models.CellScore{
			Cell:           cell,
			Top1Class:      models.PieceClasses[g.rng.IntN(len(models.PieceClasses))],
			Top1Confidence: 0.7 + g.rng.Float64()*0.3,
			Entropy:        &entropy,
		}
		if g.rng.Float64() < 0.5 {
			delta := (g.rng.Float64() - 0.5) * 0.2
			score.DeltaVsPrevious = &delta
		}
		scores = append(scores, score)
	}
	return scores
}

// injectAnomaly redraws one score's confidence into the low band and
// attaches a matching anomaly entry. Severity is 70% warning / 30% error.
func (g *Generator) injectAnomaly(frame *models.PipelineFrameEvent) {
	idx := g.rng.IntN(len(frame.CellScores))
	frame.CellScores[idx].Top1Confidence = 0.3 + g.rng.Float64()*0.3

	anomalyType := models.AnomalyLowConfidence
	message := fmt.Sprintf("classifier confidence dropped to %.2f on %s",
		frame.CellScores[idx].Top1Confidence, frame.CellScores[idx].Cell)
	if g.rng.Float64() < 0.5 {
		anomalyType = models.AnomalyCornerDrift
		message = "board corner estimate drifted beyond reprojection tolerance"
	}

	severity := models.SeverityWarning
	if g.rng.Float64() >= 0.7 {
		severity = models.SeverityError
	}

	frame.Anomalies = append(frame.Anomalies, models.Anomaly{
		Type:          anomalyType,
		Severity:      severity,
		Message:       message,
		AffectedCells: []string{frame.CellScores[idx].Cell},
	})
}

// AgentEvents generates the next count agent events of the sequence.
//
// Each step emits either a plain message or a tool_call/tool_result pair.
// Every event's ParentID chains to the immediately preceding event, forming
// a linear causal chain; a tool_result's parent is its tool_call and its
// timestamp is the call timestamp plus the simulated tool latency.
//
// A pair may straddle the batch boundary: when count lands on the
// tool_call, the tool_result is held and opens the next batch, so every
// call completes regardless of batching (the sequence is invariant under
// batch size).
func (g *Generator) AgentEvents(count int) []models.AgentEvent {
	if count <= 0 {
		return nil
	}
	events := make([]models.AgentEvent, 0, count)
	if g.pendingResult != nil {
		events = append(events, *g.pendingResult)
		g.pendingResult = nil
	}
	for len(events) < count {
		stepTime := g.nextAgentTime
		g.nextAgentTime += g.cfg.AgentIntervalMS
		threadID := fmt.Sprintf("thread-%03d", g.agentStep/threadBucket)
		g.agentStep++

		if g.rng.Float64() < toolCallRate {
			call := g.newAgentEvent(stepTime, threadID)
			call.Agent = "tool-runner"
			call.Role = models.RoleToolRunner
			call.Kind = models.KindToolCall
			call.Tool = toolNames[g.rng.IntN(len(toolNames))]
			call.Args = map[string]any{"frame_id": fmt.Sprintf("frame-%06d", max(g.frameSeq-1, 0))}
			call.Status = models.StatusCallingTool
			events = append(events, call)

			latency := 20 + g.rng.Float64()*280
			result := g.newAgentEvent(stepTime+int64(latency), threadID)
			result.Agent = call.Agent
			result.Role = call.Role
			result.Kind = models.KindToolResult
			result.Tool = call.Tool
			result.Result = "ok"
			result.Status = models.StatusComplete
			result.LatencyMS = latency
			result.ParentID = call.ID
			if len(events) == count {
				g.pendingResult = &result
				break
			}
			events = append(events, result)
			continue
		}

		msg := g.newAgentEvent(stepTime, threadID)
		picked := agentPool[g.rng.IntN(len(agentPool))]
		msg.Agent = picked.name
		msg.Role = picked.role
		msg.Kind = models.KindMessage
		msg.Content = messagePhrases[g.rng.IntN(len(messagePhrases))]
		msg.Status = models.StatusThinking
		events = append(events, msg)
	}
	return events
}

// newAgentEvent allocates the next event in the chain with its ParentID
// pointing at the previously generated event.
func (g *Generator) newAgentEvent(timestamp int64, threadID string) models.AgentEvent {
	e := models.AgentEvent{
		ID:        fmt.Sprintf("agent-evt-%06d", g.agentSeq),
		Timestamp: timestamp,
		ThreadID:  threadID,
		ParentID:  g.lastEventID,
	}
	g.agentSeq++
	g.lastEventID = e.ID
	return e
}
