// Package ratelimit throttles case mutations per actor with a sliding window.
package ratelimit

import (
	"context"
	"time"
)

// Class groups endpoints that share a budget.
type Class string

const (
	// ClassWrite covers drafts, submissions, attachments and comments.
	ClassWrite Class = "write"
	// ClassDecision covers reviewer decisions and reopen.
	ClassDecision Class = "decision"
)

type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"`
}

// Store counts requests per key in a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// Policy is the budget for one class.
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicies are generous enough for a human at a form and low enough to
// stop a script replaying submissions.
func DefaultPolicies() map[Class]Policy {
	return map[Class]Policy{
		ClassWrite:    {Limit: 60, Window: time.Minute},
		ClassDecision: {Limit: 120, Window: time.Minute},
	}
}

func retryAfter(resetAt, now time.Time) int {
	secs := int(resetAt.Sub(now).Round(time.Second) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
