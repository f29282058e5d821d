package verifier

import "fmt"

// EnrollResult describes a completed enrollment.
type EnrollResult struct {
	SpeakerID string `json:"speaker_id"`
	Name      string `json:"name"`
	Enrolled  uint64 `json:"enrolled"`
}

// Message renders the enrollment confirmation shown in the UI.
func (r *EnrollResult) Message() string {
	return fmt.Sprintf("✅ Speaker '%s' enrolled. Currently enrolled speakers: %d", r.Name, r.Enrolled)
}

// VerifyResult describes a verification attempt against a claimed name.
// Threshold is the configured similarity threshold; it is informational
// only and was not applied to Verified.
type VerifyResult struct {
	ClaimedName string  `json:"claimed_name"`
	MatchedName string  `json:"matched_name"`
	Score       float32 `json:"score"`
	Threshold   float32 `json:"threshold"`
	Verified    bool    `json:"verified"`
}

// Message renders the verification outcome shown in the UI.
func (r *VerifyResult) Message() string {
	if r.Verified {
		return fmt.Sprintf("✅ Verified as '%s' (similarity=%.4f)", r.ClaimedName, r.Score)
	}
	return fmt.Sprintf("❌ Verification failed for '%s'", r.ClaimedName)
}

// AlreadyEnrolledMessage renders the duplicate-name warning.
func AlreadyEnrolledMessage(name string) string {
	return fmt.Sprintf("⚠️ Speaker '%s' is already enrolled.", name)
}

// NoMatchMessage renders the empty-collection failure.
func NoMatchMessage(name string) string {
	return fmt.Sprintf("❌ No embedding found for '%s'.", name)
}

// ClearedMessage is shown after the collection has been recreated.
const ClearedMessage = "🧹 Collection cleared (all vectors removed)."
