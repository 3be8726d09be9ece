package worker

import "videogen-service/pkg/manager"

func init() {
	manager.RegisterComponentPlugin(&VideoJobWorkerComponentPlugin{})
}
