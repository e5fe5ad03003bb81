package controller

import (
	"errors"
	"strconv"

	"code_mentor_backend/internal/model"
	"code_mentor_backend/internal/service"
	"code_mentor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PerformanceController struct {
	Performance *service.PerformanceService
	Assignment  *service.AssignmentService
}

func NewPerformanceController(performance *service.PerformanceService, assignment *service.AssignmentService) *PerformanceController {
	return &PerformanceController{
		Performance: performance,
		Assignment:  assignment,
	}
}

// Report godoc
// @Summary 表现报告
// @Description 聚合窗口内的尝试得出表现快照，不落库
// @Tags 表现
// @Produce  json
// @Security BearerAuth
// @Param   days query int false "时间窗口（天），默认用评估窗口"
// @Param   type query string false "题型过滤 cloze/block/free_code"
// @Success 200 {object} util.Response{data=model.PerformanceSnapshot}
// @Router /api/performance [get]
func (c *PerformanceController) Report(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	days, _ := strconv.Atoi(ctx.DefaultQuery("days", "0"))
	problemType := model.ProblemType(ctx.Query("type"))

	snap, err := c.Performance.Report(claims.UserID, days, problemType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, snap)
}

// Assess godoc
// @Summary 重估技能档位
// @Description 基于最近窗口评定 beginner/intermediate/advanced 并落库评定记录
// @Tags 表现
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.LevelAssignment}
// @Failure 422 {object} util.Response "近期尝试不足，无法评定"
// @Router /api/performance/assess [post]
func (c *PerformanceController) Assess(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	assignment, err := c.Assignment.Assess(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrInsufficientData) {
			util.UnprocessableEntity(ctx, "近期练习次数不足，继续做题后再来评定")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, assignment)
}

// History godoc
// @Summary 评定历史
// @Tags 表现
// @Produce  json
// @Security BearerAuth
// @Param   limit query int false "条数，默认 10"
// @Success 200 {object} util.Response{data=[]model.LevelAssessment}
// @Router /api/performance/history [get]
func (c *PerformanceController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	history, err := c.Assignment.History(claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, history)
}
