package windowlimiter

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveKey(t *testing.T) {
	t.Run("NoPattern", func(t *testing.T) {
		l := &WindowLimiter{}
		assert.Equal(t, "ip:GET:/items/42", l.deriveKey("ip:GET:/items/42"))
	})

	t.Run("FirstMatchOnly", func(t *testing.T) {
		l := &WindowLimiter{
			idPattern:     regexp.MustCompile(`/\d+`),
			idPlaceholder: "/:id",
		}
		// A single substitution is applied per raw key.
		assert.Equal(t, "ip:GET/:id/sub/7", l.deriveKey("ip:GET/42/sub/7"))
	})

	t.Run("NoMatch", func(t *testing.T) {
		l := &WindowLimiter{
			idPattern:     regexp.MustCompile(`/\d+`),
			idPlaceholder: "/:id",
		}
		assert.Equal(t, "ip:GET:/items", l.deriveKey("ip:GET:/items"))
	})

	t.Run("Deterministic", func(t *testing.T) {
		l := &WindowLimiter{
			idPattern:     regexp.MustCompile(`[0-9a-f]{8}`),
			idPlaceholder: "*",
		}
		first := l.deriveKey("ip:GET:/docs/deadbeef")
		second := l.deriveKey("ip:GET:/docs/deadbeef")
		assert.Equal(t, first, second)
	})
}
