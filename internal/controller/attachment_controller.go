package controller

import (
	"errors"
	"paper_review_backend/internal/service"
	"paper_review_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AttachmentController 题目附件的上传与删除
type AttachmentController struct {
	AttachmentService *service.AttachmentService
}

func NewAttachmentController(attachmentService *service.AttachmentService) *AttachmentController {
	return &AttachmentController{AttachmentService: attachmentService}
}

// Upload godoc
// @Summary 上传附件
// @Description 为题目节点上传附件，按序校验文件数量、单文件大小、媒体类型，任一失败整体拒绝
// @Tags 附件
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param files formData file true "附件文件，可多个"
// @Success 201 {object} util.Response{data=[]model.Attachment} "上传成功"
// @Failure 400 {object} util.Response "校验失败"
// @Failure 404 {object} util.Response "题目不存在"
// @Failure 409 {object} util.Response "试卷已导入"
// @Router /api/teacher/questions/{id}/attachments [post]
func (c *AttachmentController) Upload(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "题目ID无效")
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		util.BadRequest(ctx, "no files provided")
		return
	}

	saved, err := c.AttachmentService.Upload(ctx.Request.Context(), uint(id), files)
	if err != nil {
		var validationErr *service.UploadValidationError
		switch {
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPaperImported):
			util.Conflict(ctx, err.Error())
		case errors.As(err, &validationErr):
			util.BadRequest(ctx, validationErr.Message)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, saved)
}

// Delete godoc
// @Summary 删除附件
// @Tags 附件
// @Produce json
// @Security BearerAuth
// @Param id path int true "附件ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "附件不存在"
// @Router /api/teacher/attachments/{id} [delete]
func (c *AttachmentController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "附件ID无效")
		return
	}

	if err := c.AttachmentService.Delete(ctx.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, util.ErrAttachmentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
