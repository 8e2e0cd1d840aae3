package controller

import (
	"errors"
	"fmt"
	"net/http"
	"paper_review_backend/internal/service"
	"paper_review_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReviewController 导入前审核视图与自动修复
type ReviewController struct {
	ReviewService *service.ReviewService
	ImportService *service.ImportService
	ExportService *service.ExportService
}

func NewReviewController(reviewService *service.ReviewService, importService *service.ImportService, exportService *service.ExportService) *ReviewController {
	return &ReviewController{
		ReviewService: reviewService,
		ImportService: importService,
		ExportService: exportService,
	}
}

// GetSummary godoc
// @Summary 试卷审核视图
// @Description 返回层级树、统计、检查清单、校验问题与导入许可
// @Tags 审核
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Success 200 {object} util.Response{data=service.ReviewSummary} "成功"
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /api/teacher/papers/{id}/review [get]
func (c *ReviewController) GetSummary(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "试卷ID无效")
		return
	}

	summary, err := c.ReviewService.GetSummary(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// ApplyFixes godoc
// @Summary 自动修复
// @Description 空题干补占位文本、零分补 1 分，返回改动数量与节点键。只在用户显式触发时执行。
// @Tags 审核
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Success 200 {object} util.Response{data=service.FixReport} "成功"
// @Failure 404 {object} util.Response "试卷不存在"
// @Failure 409 {object} util.Response "试卷已导入"
// @Router /api/teacher/papers/{id}/review/fix [post]
func (c *ReviewController) ApplyFixes(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "试卷ID无效")
		return
	}

	report, err := c.ImportService.ApplyFixes(ctx.Request.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPaperNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPaperImported):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, report)
}

// ExportReport godoc
// @Summary 导出审核报告
// @Description 生成 xlsx 格式的审核报告并下载
// @Tags 审核
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Success 200 {file} binary "xlsx 文件"
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /api/teacher/papers/{id}/review/export [get]
func (c *ReviewController) ExportReport(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "试卷ID无效")
		return
	}

	buf, filename, err := c.ExportService.ExportReviewReport(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
