package optimize

// ProcessRequest asks the pipeline to optimize one stored image
type ProcessRequest struct {
	Bucket     string `json:"bucket"`
	Key        string `json:"key"`
	MakePublic bool   `json:"make_public,omitempty"`
	Job        string `json:"job"`
}

// ProcessResponse is returned when processing is triggered
type ProcessResponse struct {
	RunID           string            `json:"run_id"`
	DedupeSeenCount int               `json:"dedupe_seen_count"`
	URLs            map[string]string `json:"urls,omitempty"`
}

// JobType constants
const (
	JobOptimize = "optimize"
)
