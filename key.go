package windowlimiter

// deriveKey normalizes a raw key by substituting the placeholder for the
// first region matching the configured id pattern. A single substitution
// is applied per key; with no pattern configured the key passes through
// unchanged.
//
// Normalization is deterministic and side-effect free: the same raw key
// always yields the same derived key for one limiter instance, so repeat
// requests to the same logical resource accumulate against one counter
// regardless of which concrete identifier appears in the path.
func (l *WindowLimiter) deriveKey(raw string) string {
	if l.idPattern == nil {
		return raw
	}
	loc := l.idPattern.FindStringIndex(raw)
	if loc == nil {
		return raw
	}
	return raw[:loc[0]] + l.idPlaceholder + raw[loc[1]:]
}
