package ltime

import (
	"math/rand"
	"time"
)

// JitteredDuration spreads duration by up to 20% in either direction.
func JitteredDuration(duration time.Duration) time.Duration {
	return time.Duration(float64(duration) * (0.8 + 0.4*rand.Float64()))
}

func Sleep(duration time.Duration) {
	time.Sleep(JitteredDuration(duration))
}
