package application

import (
	"expvar"
	"strconv"
)

// outcomes counts results per operation and status, exposed at /debug/vars.
var outcomes = expvar.NewMap("lifecycle_outcomes")

func countOutcome(op string, status int) {
	outcomes.Add(op+":"+strconv.Itoa(status), 1)
}

// OutcomeCount returns the counter for op and status.
func OutcomeCount(op string, status int) int64 {
	if v, ok := outcomes.Get(op + ":" + strconv.Itoa(status)).(*expvar.Int); ok {
		return v.Value()
	}
	return 0
}
