package controller

import (
	"errors"
	"net/http"
	"paper_review_backend/internal/service"
	"paper_review_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ImportController 试卷导入定稿
type ImportController struct {
	ImportService *service.ImportService
}

func NewImportController(importService *service.ImportService) *ImportController {
	return &ImportController{ImportService: importService}
}

// Import godoc
// @Summary 导入试卷
// @Description 检查清单过关后定稿试卷并写入审计批次；applyFixes 为 true 时先执行自动修复再复查
// @Tags 导入
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Param request body service.ImportInput false "导入选项"
// @Success 200 {object} util.Response{data=service.ImportResult} "成功"
// @Failure 404 {object} util.Response "试卷不存在"
// @Failure 409 {object} util.Response "试卷已导入"
// @Failure 422 {object} util.Response "清单未过关，导入被拒绝"
// @Router /api/teacher/papers/{id}/import [post]
func (c *ImportController) Import(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "试卷ID无效")
		return
	}

	var input service.ImportInput
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&input); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	result, err := c.ImportService.Import(ctx.Request.Context(), uint(id), user.UserID, input)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPaperNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPaperImported):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrImportBlocked):
			util.Error(ctx, http.StatusUnprocessableEntity, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// History godoc
// @Summary 导入历史
// @Description 试卷的历史导入批次，含当时的统计与清单快照
// @Tags 导入
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Success 200 {object} util.Response{data=[]model.ImportBatch} "成功"
// @Router /api/teacher/papers/{id}/import/history [get]
func (c *ImportController) History(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "试卷ID无效")
		return
	}

	batches, err := c.ImportService.History(ctx.Request.Context(), uint(id))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, batches)
}
