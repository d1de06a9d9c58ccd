package model

// StatusSnapshot is the listener state consumed by presentation layers
type StatusSnapshot struct {
	IsListening  bool     `json:"is_listening" firestore:"is_listening"`
	LastRun      string   `json:"last_run" firestore:"last_run"`
	LastStream   string   `json:"last_stream" firestore:"last_stream"`
	LastResult   string   `json:"last_result" firestore:"last_result"`
	LastKeywords []string `json:"last_keywords" firestore:"last_keywords"`
}

const (
	ResultChirpProcessed = "Chirp processed"
	ResultCaptureFailed  = "Capture failed"
	ResultStoreFailed    = "Store failed"
	ResultGerminated     = "Germinator executed"
)
