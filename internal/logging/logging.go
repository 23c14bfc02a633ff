package logging

import (
	"fmt"

	"github.com/losol/eventuras-idp/internal/config"

	"go.uber.org/zap"
)

// Logger starts as a nop so library code can log before Init ran,
// Init swaps in the real logger during startup.
var Logger = zap.NewNop().Sugar()

func Init() {
	if config.IsProduction() {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(fmt.Errorf("failed to set up production logger: %w", err))
		}
		Logger = logger.Sugar()
	} else {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to set up development logger: %w", err))
		}
		Logger = logger.Sugar()
	}
}
