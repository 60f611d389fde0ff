package windowlimiter_test

import (
	"context"
	"fmt"
	"regexp"
	"time"

	windowlimiter "github.com/windowlimit/go-window-limiter"
	"github.com/windowlimit/go-window-limiter/store"
)

// ExampleWindowLimiter demonstrates the admission sequence for one client:
// the quota is counted per derived key, so both item paths below share a
// single counter once the id is normalized away.
func ExampleWindowLimiter() {
	ctx := context.Background()

	limiter, err := windowlimiter.New(
		store.NewMemory(ctx, 0),
		2, time.Minute,
		windowlimiter.WithIDNormalizer(regexp.MustCompile(`/\d+`), "/:id"),
	)
	if err != nil {
		panic(err)
	}

	for _, key := range []string{
		"10.0.0.1:GET:/items/42",
		"10.0.0.1:GET:/items/97",
		"10.0.0.1:GET:/items/13",
	} {
		result, err := limiter.Allow(ctx, key)
		if err != nil {
			panic(err)
		}
		fmt.Printf("count=%d allowed=%v remaining=%d\n",
			result.Count, result.Allowed, result.Remaining)
	}

	// Output:
	// count=1 allowed=true remaining=1
	// count=2 allowed=true remaining=0
	// count=3 allowed=false remaining=0
}
