package moderation

// FilterResult is the outcome of screening one message.
type FilterResult struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason"` // "prohibited_term" or "spam_pattern"
	Term    string `json:"term"`   // the matched term or pattern name
}
