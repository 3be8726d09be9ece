package component

import "videogen-service/pkg/manager"

func init() {
	manager.RegisterComponentPlugin(&VideoJobSubmissionConsumerPlugin{})
}
