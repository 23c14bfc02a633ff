package retry

import (
	"time"

	"github.com/losol/eventuras-idp/internal/logging"
)

// FiveTimes retries f with a fixed five second pause and panics when
// the last attempt still fails. Used for startup steps that depend on
// infrastructure coming up, like the database during a deploy.
func FiveTimes(f func() error, msg string) {
	var err error
	for i := 0; i < 5; i++ {
		err = f()
		if err == nil {
			return
		}

		logging.Logger.Infof(msg+": %v", err)
		logging.Logger.Infof("retrying in 5 seconds (attempt %d/5)", i+1)
		time.Sleep(5 * time.Second)
	}

	panic(err)
}
