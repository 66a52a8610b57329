package schedule

import "fmt"

// BatchResult reports how many calls of a multi-visit mutation succeeded.
// Partial success is never rolled back; the counts are surfaced so the user
// sees exactly what state the schedule was left in.
type BatchResult struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
}

func (r BatchResult) Partial() bool {
	return r.Succeeded < r.Total
}

func (r BatchResult) String() string {
	return fmt.Sprintf("%d of %d", r.Succeeded, r.Total)
}
