package api

// HealthCheck reports one subsystem's health.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Checks  map[string]HealthCheck `json:"checks"`
}

// VersionResponse is returned by GET /api/v1/version.
type VersionResponse struct {
	Name      string `json:"name"`
	GitCommit string `json:"git_commit"`
}
