package controller

import (
	"errors"
	"paper_review_backend/internal/model"
	"paper_review_backend/internal/service"
	"paper_review_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaperController 试卷工作副本的增删改查
type PaperController struct {
	PaperService *service.PaperService
}

func NewPaperController(paperService *service.PaperService) *PaperController {
	return &PaperController{PaperService: paperService}
}

// ListPapersRequest 试卷列表查询参数
// swagger:model ListPapersRequest
type ListPapersRequest struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search"`
}

// Create godoc
// @Summary 新建试卷
// @Description 创建一份草稿状态的试卷工作副本
// @Tags 试卷管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePaperInput true "试卷信息"
// @Success 201 {object} util.Response{data=model.Paper} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/teacher/papers [post]
func (c *PaperController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var input service.CreatePaperInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	paper, err := c.PaperService.Create(ctx.Request.Context(), user.UserID, input)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, paper)
}

// List godoc
// @Summary 试卷列表
// @Description 分页查询当前教师的试卷，支持按科目或编号搜索
// @Tags 试卷管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param search query string false "搜索关键字"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/teacher/papers [get]
func (c *PaperController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var request ListPapersRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if request.Page == 0 {
		request.Page = 1
	}
	if request.Limit == 0 {
		request.Limit = 20
	}

	papers, total, err := c.PaperService.List(ctx.Request.Context(), user.UserID, request.Page, request.Limit, request.Search)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  papers,
		Total: int64(total),
		Page:  request.Page,
		Limit: request.Limit,
	})
}

// Get godoc
// @Summary 试卷详情
// @Tags 试卷管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Success 200 {object} util.Response{data=model.Paper} "成功"
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /api/teacher/papers/{id} [get]
func (c *PaperController) Get(ctx *gin.Context) {
	paper, ok := c.loadOwnedPaper(ctx)
	if !ok {
		return
	}
	util.Success(ctx, paper)
}

// Update godoc
// @Summary 更新试卷元数据
// @Description 已导入的试卷不可再修改
// @Tags 试卷管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Param request body service.UpdatePaperInput true "待更新字段"
// @Success 200 {object} util.Response{data=model.Paper} "成功"
// @Failure 404 {object} util.Response "试卷不存在"
// @Failure 409 {object} util.Response "试卷已导入"
// @Router /api/teacher/papers/{id} [put]
func (c *PaperController) Update(ctx *gin.Context) {
	paper, ok := c.loadOwnedPaper(ctx)
	if !ok {
		return
	}

	var input service.UpdatePaperInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.PaperService.Update(ctx.Request.Context(), paper.ID, input)
	if err != nil {
		if errors.Is(err, util.ErrPaperImported) {
			util.Conflict(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// Delete godoc
// @Summary 删除试卷
// @Description 连带删除全部题目、答案与附件记录
// @Tags 试卷管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "试卷不存在"
// @Failure 409 {object} util.Response "试卷已导入"
// @Router /api/teacher/papers/{id} [delete]
func (c *PaperController) Delete(ctx *gin.Context) {
	paper, ok := c.loadOwnedPaper(ctx)
	if !ok {
		return
	}

	if err := c.PaperService.Delete(ctx.Request.Context(), paper.ID); err != nil {
		if errors.Is(err, util.ErrPaperImported) {
			util.Conflict(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// loadOwnedPaper 解析路径参数并做归属校验，失败时已写响应
func (c *PaperController) loadOwnedPaper(ctx *gin.Context) (*model.Paper, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return nil, false
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "试卷ID无效")
		return nil, false
	}

	p, err := c.PaperService.Get(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, util.ErrPaperNotFound) {
			util.NotFound(ctx)
			return nil, false
		}
		util.LogInternalError(ctx, err)
		return nil, false
	}

	if err := c.PaperService.EnsureOwner(p, user.UserID, string(user.Role)); err != nil {
		util.Forbidden(ctx)
		return nil, false
	}
	return p, true
}
