package cqe

import "videogen-service/pkg/errno"

// SubmitVid2VidReq submits an uploaded video for frame-by-frame restyling.
type SubmitVid2VidReq struct {
	VideoID        uint64                 `json:"videoId" binding:"required"`
	ModelID        uint64                 `json:"modelId" binding:"required"`
	Prompt         string                 `json:"prompt" binding:"required"`
	NegativePrompt string                 `json:"negative_prompt"`
	CfgScale       float64                `json:"cfgScale" binding:"required"`
	Denoising      float64                `json:"denoising" binding:"required"`
	FrameCount     int                    `json:"frameCount"`
	Seed           int64                  `json:"seed"`
	Controlnet     map[string]interface{} `json:"controlnet"`
}

func (req *SubmitVid2VidReq) Validate() error {
	if req.VideoID == 0 {
		return errno.ErrJobIDRequired
	}
	if req.ModelID == 0 {
		return errno.ErrModelIDRequired
	}
	if req.Prompt == "" {
		return errno.ErrPromptRequired
	}
	if req.CfgScale < 2 || req.CfgScale > 10 {
		return errno.ErrCfgScaleOutOfRange
	}
	if req.Denoising < 0.1 || req.Denoising > 1.0 {
		return errno.ErrDenoisingOutOfRange
	}
	if req.FrameCount == 0 {
		req.FrameCount = 1
	}
	if req.FrameCount < 1 || req.FrameCount > 20 {
		return errno.ErrFrameCountOutOfRange
	}
	if req.Seed == 0 {
		req.Seed = -1
	}
	return nil
}

// SubmitDeforumReq submits an uploaded init image for animation rendering.
type SubmitDeforumReq struct {
	VideoID        uint64  `json:"videoId" binding:"required"`
	ModelID        uint64  `json:"modelId" binding:"required"`
	Prompt         string  `json:"prompt" binding:"required"`
	NegativePrompt string  `json:"negative_prompt"`
	Preset         string  `json:"preset" binding:"required"`
	Length         float64 `json:"length"`
	FrameCount     int     `json:"frameCount"`
	Seed           int64   `json:"seed"`
	Denoising      float64 `json:"denoising"`
}

func (req *SubmitDeforumReq) Validate() error {
	if req.VideoID == 0 {
		return errno.ErrJobIDRequired
	}
	if req.ModelID == 0 {
		return errno.ErrModelIDRequired
	}
	if req.Prompt == "" {
		return errno.ErrPromptRequired
	}
	if req.Length == 0 {
		req.Length = 4
	}
	if req.Length < 1 || req.Length > 20 {
		return errno.ErrLengthOutOfRange
	}
	if req.FrameCount == 0 {
		req.FrameCount = 1
	}
	if req.FrameCount < 1 || req.FrameCount > 20 {
		return errno.ErrFrameCountOutOfRange
	}
	if req.Seed == 0 {
		req.Seed = -1
	}
	return nil
}

// FinalizeReq requests the full-quality render of a previewed job.
type FinalizeReq struct {
	VideoID uint64 `json:"videoId" binding:"required"`
}

func (req *FinalizeReq) Validate() error {
	if req.VideoID == 0 {
		return errno.ErrJobIDRequired
	}
	return nil
}

// FinalizeDeforumReq finalizes an animation job, optionally amending its
// parameters before the full render.
type FinalizeDeforumReq struct {
	VideoID        uint64  `json:"videoId" binding:"required"`
	ModelID        uint64  `json:"modelId"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Preset         string  `json:"preset"`
	Length         float64 `json:"length"`
	Seed           int64   `json:"seed"`
}

func (req *FinalizeDeforumReq) Validate() error {
	if req.VideoID == 0 {
		return errno.ErrJobIDRequired
	}
	if req.Length != 0 && (req.Length < 1 || req.Length > 20) {
		return errno.ErrLengthOutOfRange
	}
	if req.Seed == 0 {
		req.Seed = -1
	}
	return nil
}

// CancelJobReq cancels a job.
type CancelJobReq struct {
	VideoID uint64 `json:"videoId" binding:"required"`
}

func (req *CancelJobReq) Validate() error {
	if req.VideoID == 0 {
		return errno.ErrJobIDRequired
	}
	return nil
}

// JobStatusReq fetches the live status of a job.
type JobStatusReq struct {
	ID uint64 `uri:"id" binding:"required"`
}

func (req *JobStatusReq) Validate() error {
	if req.ID == 0 {
		return errno.ErrJobIDRequired
	}
	return nil
}
