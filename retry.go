package compax

import (
	"time"

	"github.com/pkg/errors"
)

// RetryPolicy bounds how ProposeWithRetry re-runs failed rounds.
// Backoff is the wait after the first failed attempt; it doubles after every further failure.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// ProposeWithRetry calls p.Propose until a round succeeds or the policy's attempts are used up.
// A failed quorum and a transport error are both retried; every attempt is a new round with a fresh ballot.
// The result and error of the last attempt are returned.
func ProposeWithRetry(p *Proposer, value uint64, policy RetryPolicy) (Result, error) {
	if policy.Attempts < 1 {
		return Result{Status: Fail}, errors.Errorf("retry policy needs at least one attempt, got:%v", policy.Attempts)
	}

	var (
		result  Result
		err     error
		backoff = policy.Backoff
	)
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		result, err = p.Propose(value)
		if err == nil && result.Status == Ok {
			return result, nil
		}
		if IsMalformed(err) {
			// retrying will not fix the request.
			return result, err
		}
		if attempt < policy.Attempts && backoff > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return result, err
}
