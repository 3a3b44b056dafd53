package accounting

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// InconsistentError reports a closed day whose last event is still a start.
type InconsistentError struct {
	Date civil.Date
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("inconsistent data on %s: no end of workday", e.Date)
}
