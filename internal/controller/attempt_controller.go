package controller

import (
	"errors"

	"code_mentor_backend/internal/service"
	"code_mentor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// Submit godoc
// @Summary 提交答案
// @Description 判分一次提交并结算经验。题目数据损坏返回 422 而不是 0 分，
// @Description 前端必须把它展示为内容问题而非用户答错。
// @Tags 答题
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.SubmitRequest true "提交内容"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response "提交结构与题型不符"
// @Failure 404 {object} util.Response "题目不存在或未发布"
// @Failure 422 {object} util.Response "题目数据损坏"
// @Router /api/attempts [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AttemptService.Submit(ctx.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrProblemNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrValidation):
			util.BadRequest(ctx, "提交结构与题型不符")
		case errors.Is(err, util.ErrProblemMisconfigured):
			util.UnprocessableEntity(ctx, "题目数据损坏，已记录，请稍后重试其他题目")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}
