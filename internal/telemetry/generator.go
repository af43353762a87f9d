package telemetry

import (
	"math"
	"math/rand"
	"time"
)

const (
	maxSentDelta = 9 // sent grows by U[0,9] per tick
	maxLossDelta = 2 // received trails sent by U[0,2]
)

// Generator advances the aggregate packet counters once per tick.
type Generator struct {
	rand *rand.Rand
}

// NewGenerator creates a generator. A nil source seeds from the wall clock.
func NewGenerator(r *rand.Rand) *Generator {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rand: r}
}

// Next returns the counters for the following tick. The two draws are
// independent; received is clamped to [0, sent] so the counters stay consistent.
func (g *Generator) Next(sent int64) (int64, int64) {
	if sent < 0 {
		sent = 0
	}
	nextSent := sent + int64(g.rand.Intn(maxSentDelta+1))
	nextReceived := nextSent - int64(g.rand.Intn(maxLossDelta+1))
	return nextSent, clamp(nextReceived, 0, nextSent)
}

// PacketLoss returns the loss percentage rounded to one decimal place.
// It is 0 when nothing was sent.
func PacketLoss(sent, received int64) float64 {
	if sent <= 0 {
		return 0
	}
	received = clamp(received, 0, sent)
	loss := float64(sent-received) / float64(sent) * 100
	return math.Round(loss*10) / 10
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
