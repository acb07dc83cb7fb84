package photofailures

import "time"

// Failure represents one photo whose analysis degraded to the fallback finding
type Failure struct {
	ID        int64     `json:"id"`
	ClientID  string    `json:"client_id"`
	ReportID  string    `json:"report_id"`
	Photo     string    `json:"photo"`
	Phase     string    `json:"phase"` // decode | vision | parse | cancelled
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
