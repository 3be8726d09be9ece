package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"videogen-service/ddd/application/app"
	"videogen-service/ddd/application/cqe"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/restapi"
)

// VideoJobController exposes the job pipeline endpoints.
type VideoJobController struct {
	videoJobApp app.VideoJobApp
}

func NewVideoJobController(videoJobApp app.VideoJobApp) *VideoJobController {
	return &VideoJobController{videoJobApp: videoJobApp}
}

// Submit accepts vid2vid generation parameters and queues a preview attempt.
func (c *VideoJobController) Submit(ctx *gin.Context) {
	var req cqe.SubmitVid2VidReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}

	resp, err := c.videoJobApp.SubmitVid2Vid(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// SubmitDeforum accepts animation parameters and queues a preview attempt.
func (c *VideoJobController) SubmitDeforum(ctx *gin.Context) {
	var req cqe.SubmitDeforumReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}

	resp, err := c.videoJobApp.SubmitDeforum(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// Finalize queues the full-quality render.
func (c *VideoJobController) Finalize(ctx *gin.Context) {
	var req cqe.FinalizeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}

	resp, err := c.videoJobApp.Finalize(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// FinalizeDeforum amends parameters and queues the full animation render.
func (c *VideoJobController) FinalizeDeforum(ctx *gin.Context) {
	var req cqe.FinalizeDeforumReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}

	resp, err := c.videoJobApp.FinalizeDeforum(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// Cancel cancels a job; always accepted, idempotent.
func (c *VideoJobController) Cancel(ctx *gin.Context) {
	var req cqe.CancelJobReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}

	resp, err := c.videoJobApp.Cancel(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

// Status reports the latest persisted state of a job.
func (c *VideoJobController) Status(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}

	resp, err := c.videoJobApp.Status(ctx.Request.Context(), id)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}
