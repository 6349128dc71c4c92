package docker

import "plrcheck/internal/domain/validation"

func normalizeLimits(l validation.RunLimits) validation.RunLimits {
	if l.TimeLimit < 0 {
		l.TimeLimit = 0
	}
	if l.MemoryLimitBytes < 0 {
		l.MemoryLimitBytes = 0
	}
	return l
}
