package payment

import (
	"context"
	"time"

	"vendo/internal/models"
)

// CardProcessor is a fixed-outcome stand-in for a real payment gateway: it
// waits the configured processing delay and approves. The sleep function is
// injectable so tests run without wall-clock time.
type CardProcessor struct {
	delay time.Duration
	sleep func(time.Duration)
}

// NewCardProcessor creates a card processor with the given simulated
// processing delay. A nil sleep falls back to time.Sleep.
func NewCardProcessor(delay time.Duration, sleep func(time.Duration)) *CardProcessor {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &CardProcessor{
		delay: delay,
		sleep: sleep,
	}
}

// Authorize simulates chip read and network authorization, then approves.
func (p *CardProcessor) Authorize(ctx context.Context, price float64, _ string) (*Outcome, error) {
	if p.delay > 0 {
		p.sleep(p.delay)
	}
	return &Outcome{Method: models.MethodCard}, nil
}
