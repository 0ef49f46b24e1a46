// Package domain defines core business entities and value objects for KaalSec.
//
// The domain layer is independent of infrastructure concerns and represents
// pure business logic and data structures.
package domain

import "time"

// Suggestion is one proposed command inside a batch. IDs are dense 1-based
// integers assigned in display order and are only meaningful within their
// batch's validity window.
type Suggestion struct {
	ID          int       `json:"id"`
	Tool        string    `json:"tool"`
	CommandText string    `json:"command_text"`
	Rationale   string    `json:"rationale"`
	RiskLevel   RiskLevel `json:"risk_level"`
}

// Batch groups the suggestions produced by a single suggest invocation.
type Batch struct {
	Handle    string       `json:"handle"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	Items     []Suggestion `json:"items"`
}

// Expired reports whether the batch validity window has elapsed.
func (b Batch) Expired(now time.Time) bool {
	return now.After(b.ExpiresAt)
}

// Lookup returns the suggestion with the given ID, if it exists.
func (b Batch) Lookup(id int) (Suggestion, bool) {
	if id < 1 || id > len(b.Items) {
		return Suggestion{}, false
	}
	return b.Items[id-1], true
}
