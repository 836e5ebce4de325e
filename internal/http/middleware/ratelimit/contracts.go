package ratelimit

// Limiter decides per key whether a request may proceed.
type Limiter interface {
	Allow(key string) bool
}
