package engine

import (
	"fmt"
	"time"
)

// GenerationKey derives the idempotency key for one materialized task
// instance. It is a pure function of the template and the deadline at
// day granularity; re-deriving it for the same pair always yields the
// same key, which is what makes generation re-runnable.
func GenerationKey(templateID int64, deadline time.Time) string {
	return fmt.Sprintf("%d:%s", templateID, deadline.Format("2006-01-02"))
}
