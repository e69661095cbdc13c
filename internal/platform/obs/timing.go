package obs

import (
	"time"

	"weekly-route-service/internal/logger"
)

// Time logs the duration of an operation when the returned func runs,
// including the error (if any) the operation finished with:
//
//	defer obs.Time(log, "batch.Run")(&err)
func Time(log logger.Logger, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Errorf("op=%s dur=%dms err=%v", name, dur.Milliseconds(), *errp)
			return
		}
		log.Infof("op=%s dur=%dms", name, dur.Milliseconds())
	}
}
