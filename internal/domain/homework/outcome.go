package homework

import (
	"encoding/json"
	"fmt"
)

// OutcomeKind tags the result of one fetch from the homework API.
type OutcomeKind string

const (
	// OutcomeSuccess carries a JSON body ready for validation.
	OutcomeSuccess OutcomeKind = "SUCCESS"
	// OutcomeTransient means no data this cycle; the next cycle retries.
	OutcomeTransient OutcomeKind = "TRANSIENT"
	// OutcomeFatal aborts the current cycle with an error. The loop keeps running.
	OutcomeFatal OutcomeKind = "FATAL"
)

// FetchOutcome is the single result type of a fetch.
type FetchOutcome struct {
	Kind   OutcomeKind
	Body   json.RawMessage
	Reason error
}

func Success(body json.RawMessage) FetchOutcome {
	return FetchOutcome{Kind: OutcomeSuccess, Body: body}
}

func Transient(reason error) FetchOutcome {
	return FetchOutcome{Kind: OutcomeTransient, Reason: reason}
}

func Fatal(reason error) FetchOutcome {
	return FetchOutcome{Kind: OutcomeFatal, Reason: reason}
}

func (o FetchOutcome) String() string {
	if o.Reason != nil {
		return fmt.Sprintf("%s: %v", o.Kind, o.Reason)
	}
	return string(o.Kind)
}
