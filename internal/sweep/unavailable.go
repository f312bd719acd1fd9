package sweep

import "context"

// Unavailable is a Runner standing in for a sweep tool that could not be
// resolved at startup. Every sweep attempt reports the original error and
// the session degrades instead of refusing to start.
type Unavailable struct {
	Err error
}

func (u Unavailable) Sweep(context.Context) ([]Row, error) {
	return nil, u.Err
}
