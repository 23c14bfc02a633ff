package behaviours

import (
	"context"
	"time"

	"github.com/losol/eventuras-idp/internal/logging"

	"github.com/The127/mediatr"
)

// Loggable is implemented by every mediator request. Requests carrying
// secrets return false from LogRequest to keep them out of the logs.
type Loggable interface {
	GetRequestName() string
	LogRequest() bool
}

func RequestLoggingBehaviour(ctx context.Context, request Loggable, next mediatr.Next) (any, error) {
	if !request.LogRequest() {
		return next()
	}

	start := time.Now()
	result, err := next()
	if err != nil {
		logging.Logger.Warnf("%s failed after %s: %v", request.GetRequestName(), time.Since(start), err)
		return result, err
	}

	logging.Logger.Debugf("%s handled in %s", request.GetRequestName(), time.Since(start))
	return result, nil
}
