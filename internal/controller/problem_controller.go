package controller

import (
	"errors"
	"strconv"

	"code_mentor_backend/internal/model"
	"code_mentor_backend/internal/service"
	"code_mentor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProblemController struct {
	ProblemService *service.ProblemService
}

func NewProblemController(problemService *service.ProblemService) *ProblemController {
	return &ProblemController{ProblemService: problemService}
}

// List godoc
// @Summary 题目列表
// @Description 分页列出已发布题目，支持按主题/题型/难度筛选
// @Tags 题库
// @Produce  json
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Param   topic query string false "主题"
// @Param   type query string false "题型 cloze/block/free_code"
// @Param   level query int false "难度"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/problems [get]
func (c *ProblemController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	level, _ := strconv.Atoi(ctx.DefaultQuery("level", "0"))
	topic := ctx.Query("topic")
	problemType := model.ProblemType(ctx.Query("type"))

	problems, total, err := c.ProblemService.ListPublished(page, limit, topic, problemType, level)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  problems,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Get godoc
// @Summary 题目详情
// @Tags 题库
// @Produce  json
// @Param   id path int true "题目 ID"
// @Success 200 {object} util.Response{data=model.Problem}
// @Failure 404 {object} util.Response
// @Router /api/problems/{id} [get]
func (c *ProblemController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid problem id")
		return
	}

	problem, err := c.ProblemService.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrProblemNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	if !problem.IsPublished {
		claims := util.GetUserFromContext(ctx)
		if claims == nil || (claims.Role != model.Admin && claims.UserID != problem.CreatorID) {
			util.NotFound(ctx)
			return
		}
	}

	util.Success(ctx, problem)
}

// Create godoc
// @Summary 创建题目
// @Description 教师/管理员创建题目，入库前校验答案槽结构
// @Tags 题库
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.ProblemInput true "题目内容"
// @Success 201 {object} util.Response{data=model.Problem}
// @Failure 400 {object} util.Response "答案槽结构不合法"
// @Router /api/teacher/problems [post]
func (c *ProblemController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var input service.ProblemInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	problem, err := c.ProblemService.Create(claims.UserID, &input)
	if err != nil {
		if errors.Is(err, util.ErrValidation) {
			util.BadRequest(ctx, "题目答案槽结构不合法")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, problem)
}

// Update godoc
// @Summary 更新题目
// @Tags 题库
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "题目 ID"
// @Param   body body service.ProblemInput true "题目内容"
// @Success 200 {object} util.Response{data=model.Problem}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/teacher/problems/{id} [put]
func (c *ProblemController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid problem id")
		return
	}

	var input service.ProblemInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	problem, err := c.ProblemService.Update(uint(id), claims.UserID, claims.Role, &input)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrProblemNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrValidation):
			util.BadRequest(ctx, "题目答案槽结构不合法")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, problem)
}

// Delete godoc
// @Summary 删除题目
// @Tags 题库
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "题目 ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/teacher/problems/{id} [delete]
func (c *ProblemController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid problem id")
		return
	}

	if err := c.ProblemService.Delete(uint(id), claims.UserID, claims.Role); err != nil {
		switch {
		case errors.Is(err, util.ErrProblemNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}
