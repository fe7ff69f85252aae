// Package jitter добавляет случайность к интервалам повторных попыток,
// чтобы переподключения воркеров не происходили синхронно.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultJitter стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

// Duration возвращает продолжительность в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	return DurationWithRand(d, jitterFactor, rand.Float64)
}

// DurationWithRand то же, что Duration, но с заданным источником случайных чисел в [0, 1).
func DurationWithRand(d time.Duration, jitterFactor float64, float64Fn func() float64) time.Duration {
	if d <= 0 || jitterFactor <= 0 {
		return d
	}

	return d + time.Duration(float64Fn()*jitterFactor*float64(d))
}

// ExponentialBackoff удваивает base на каждую попытку (attempt с нуля), не превышая max, и добавляет джиттер.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= max {
			backoff = max
			break
		}
	}

	return Duration(backoff, jitterFactor)
}
