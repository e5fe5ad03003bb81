package controller

import (
	"strconv"

	"code_mentor_backend/internal/model"
	"code_mentor_backend/internal/repository"
	"code_mentor_backend/internal/service"
	"code_mentor_backend/internal/util"
	"code_mentor_backend/pkg/progression"

	"github.com/gin-gonic/gin"
)

type ProgressionController struct {
	ProgressionRepo *repository.ProgressionRepository
	Experience      *service.ExperienceService
}

func NewProgressionController(progressionRepo *repository.ProgressionRepository, experience *service.ExperienceService) *ProgressionController {
	return &ProgressionController{
		ProgressionRepo: progressionRepo,
		Experience:      experience,
	}
}

// Get godoc
// @Summary 当前用户进阶状态
// @Description 等级由总经验实时推导，存储的等级仅是缓存，读取时校正
// @Tags 进阶
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/progression [get]
func (c *ProgressionController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	prog, err := c.ProgressionRepo.FindByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if prog == nil {
		prog = &model.UserProgression{UserID: claims.UserID, Level: 1, HighestLevelReached: 1}
	}

	info := progression.LevelFromExperience(prog.TotalExperience)
	if info.Level != prog.Level {
		// 缓存的等级与曲线不一致时以曲线为准并回写修复
		prog.Level = info.Level
		if prog.ID != 0 {
			_ = c.ProgressionRepo.Save(prog)
		}
	}

	util.Success(ctx, gin.H{
		"progression": prog,
		"levelInfo":   info,
	})
}

// Leaderboard godoc
// @Summary 经验排行榜
// @Description redis ZSET 维护的总经验榜
// @Tags 进阶
// @Produce  json
// @Param   limit query int false "榜单长度，默认 10"
// @Success 200 {object} util.Response{data=object}
// @Router /api/progression/leaderboard [get]
func (c *ProgressionController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	entries, err := c.Experience.Leaderboard(ctx.Request.Context(), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	type row struct {
		UserID  string `json:"userId"`
		TotalXP int    `json:"totalXp"`
		Rank    int    `json:"rank"`
	}
	rows := make([]row, 0, len(entries))
	for i, e := range entries {
		member, _ := e.Member.(string)
		rows = append(rows, row{
			UserID:  member,
			TotalXP: int(e.Score),
			Rank:    i + 1,
		})
	}

	util.Success(ctx, gin.H{"leaderboard": rows})
}
