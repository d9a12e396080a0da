package handler

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is a backing service the bot cannot work without.
type Pinger interface {
	Ping(ctx context.Context) error
}

// checkAll pings every dependency and returns the failures by name.
func checkAll(ctx context.Context, checks map[string]Pinger) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	failures := make(map[string]string)
	for name, p := range checks {
		if err := p.Ping(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	return failures
}
