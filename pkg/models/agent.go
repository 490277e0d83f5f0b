package models

// AgentRole identifies an agent's function in the multi-agent pipeline.
type AgentRole string

const (
	RoleSystem              AgentRole = "system"
	RolePerception          AgentRole = "perception"
	RoleBoardReconstruction AgentRole = "board-reconstruction"
	RoleRulesEngine         AgentRole = "rules-engine"
	RoleChessEngine         AgentRole = "chess-engine"
	RolePlanner             AgentRole = "planner"
	RoleReporter            AgentRole = "reporter"
	RoleToolRunner          AgentRole = "tool-runner"
	RoleUser                AgentRole = "user"
)

// AgentEventKind classifies a unit of agent activity.
type AgentEventKind string

const (
	KindMessage    AgentEventKind = "message"
	KindToolCall   AgentEventKind = "tool_call"
	KindToolResult AgentEventKind = "tool_result"
	KindStatus     AgentEventKind = "status"
)

// AgentStatus is an agent's reported activity state.
type AgentStatus string

const (
	StatusIdle        AgentStatus = "idle"
	StatusThinking    AgentStatus = "thinking"
	StatusCallingTool AgentStatus = "calling_tool"
	StatusWaiting     AgentStatus = "waiting"
	StatusError       AgentStatus = "error"
	StatusComplete    AgentStatus = "complete"
)

// EventReferences cross-links an agent event to pipeline data.
type EventReferences struct {
	FrameID string   `json:"frame_id,omitempty"`
	Cells   []string `json:"cells,omitempty"`
}

// AgentError carries failure details for an agent event.
type AgentError struct {
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	RetryCount int    `json:"retry_count,omitempty"`
}

// AgentEvent represents one unit of agent activity.
//
// ParentID, when set, references an event with an earlier or equal
// timestamp (causal link). A tool_result's ParentID points at the
// originating tool_call. ThreadID groups events into a conversation.
type AgentEvent struct {
	ID         string           `json:"id"`
	Timestamp  int64            `json:"timestamp"` // epoch milliseconds
	Agent      string           `json:"agent"`
	Role       AgentRole        `json:"role"`
	Kind       AgentEventKind   `json:"kind"`
	Content    string           `json:"content,omitempty"`
	Tool       string           `json:"tool,omitempty"`
	Args       map[string]any   `json:"args,omitempty"`
	Result     string           `json:"result,omitempty"`
	Status     AgentStatus      `json:"status,omitempty"`
	ParentID   string           `json:"parent_id,omitempty"`
	ThreadID   string           `json:"thread_id,omitempty"`
	References *EventReferences `json:"references,omitempty"`
	LatencyMS  float64          `json:"latency_ms,omitempty"` // non-negative
	Error      *AgentError      `json:"error,omitempty"`
}

// EventTimestamp returns the event's timestamp in epoch milliseconds.
func (e AgentEvent) EventTimestamp() int64 {
	return e.Timestamp
}
