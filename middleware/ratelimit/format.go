package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"
)

// WriteRetryAfter grava Retry-After em segundos inteiros, arredondando para cima (mínimo 1).
func WriteRetryAfter(w http.ResponseWriter, d time.Duration) {
	w.Header().Set("Retry-After", formatInt(retryAfterSeconds(d)))
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

func formatInt(v int) string { return strconv.Itoa(v) }
