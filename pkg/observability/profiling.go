package observability

import (
	"os"

	"github.com/grafana/pyroscope-go"
)

// StartProfiling attaches continuous profiling when PYROSCOPE_SERVER_ADDRESS
// is set; otherwise it is a no-op so local runs need no collector.
func StartProfiling(serviceName string) {
	serverAddress := os.Getenv("PYROSCOPE_SERVER_ADDRESS")
	if serverAddress == "" {
		return
	}

	_, _ = pyroscope.Start(pyroscope.Config{
		ApplicationName: serviceName,
		ServerAddress:   serverAddress,
		Logger:          nil,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
}
