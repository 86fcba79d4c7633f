package actor

import "golang.org/x/time/rate"

const (
	// externalCmdRate bounds how often an external caller (the admin
	// HTTP surface, actorctl) may invoke runcmd against a single worker.
	externalCmdRate  = 50
	externalCmdBurst = 10
)

// newCommandLimiter builds the token-bucket limiter a Worker attaches
// to its externally-triggered command path. Internal posts from other
// services are never subject to this limit.
func newCommandLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(externalCmdRate), externalCmdBurst)
}

// AllowExternalCommand reports whether an externally-triggered runcmd
// may proceed right now, consuming a token if so.
func (w *Worker) AllowExternalCommand() bool {
	return w.limiter.Allow()
}
