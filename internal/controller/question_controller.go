package controller

import (
	"errors"
	"paper_review_backend/internal/service"
	"paper_review_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// QuestionController 题目节点的增删改查
type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// Create godoc
// @Summary 新建题目节点
// @Description 在试卷下新建题/小题/子小题，层级由 kind 与 parentId 决定
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Param request body service.QuestionInput true "题目内容"
// @Success 201 {object} util.Response{data=model.PaperQuestion} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误或层级非法"
// @Failure 404 {object} util.Response "试卷不存在"
// @Failure 409 {object} util.Response "试卷已导入"
// @Router /api/teacher/papers/{id}/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	paperID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "试卷ID无效")
		return
	}

	var input service.QuestionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.Create(ctx.Request.Context(), uint(paperID), input)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPaperNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPaperImported):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrInvalidNode):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, question)
}

// Get godoc
// @Summary 题目详情
// @Tags 题目管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.PaperQuestion} "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/teacher/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "题目ID无效")
		return
	}

	question, err := c.QuestionService.Get(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// Update godoc
// @Summary 更新题目
// @Description 层级（kind/parentId）不可修改；answers 传入时整体替换
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param request body service.QuestionInput true "题目内容"
// @Success 200 {object} util.Response{data=model.PaperQuestion} "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Failure 409 {object} util.Response "试卷已导入"
// @Router /api/teacher/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "题目ID无效")
		return
	}

	var input service.QuestionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.Update(ctx.Request.Context(), uint(id), input)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPaperImported):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, question)
}

// Delete godoc
// @Summary 删除题目
// @Description 连带删除子节点、参考答案与附件记录
// @Tags 题目管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Failure 409 {object} util.Response "试卷已导入"
// @Router /api/teacher/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "题目ID无效")
		return
	}

	if err := c.QuestionService.Delete(ctx.Request.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPaperImported):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
