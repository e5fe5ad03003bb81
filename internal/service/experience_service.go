package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"code_mentor_backend/internal/config"
	"code_mentor_backend/internal/model"
	"code_mentor_backend/pkg/monitoring"
	"code_mentor_backend/pkg/progression"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// LeaderboardKey 按总经验排序的 redis ZSET
	LeaderboardKey = "leaderboard:xp"

	progressionLockTTL = 5 * time.Second
)

// 里程碑等级的命名奖励，未命中时合成 "Level N reached"
var milestoneRewards = map[int]string{
	5:   "Bronze Coder",
	10:  "Silver Coder",
	20:  "Gold Coder",
	50:  "Platinum Coder",
	100: "Coding Legend",
}

// Reward 升级时发放的奖励
type Reward struct {
	Level   int    `json:"level"`
	Kind    string `json:"kind"` // milestone 或 level
	Name    string `json:"name"`
	BonusXP int    `json:"bonusXp"`
}

// ProgressionUpdate 一次经验结算的结果
type ProgressionUpdate struct {
	GainedXP        int                   `json:"gainedXp"`
	TotalExperience int                   `json:"totalExperience"`
	LevelInfo       progression.LevelInfo `json:"levelInfo"`
	LeveledUp       bool                  `json:"leveledUp"`
	LevelUpCount    int                   `json:"levelUpCount"`
	Rewards         []Reward              `json:"rewards,omitempty"`
}

// progressionStore 经验结算需要的持久化能力
type progressionStore interface {
	FindByUser(userID uint) (*model.UserProgression, error)
	Create(p *model.UserProgression) error
	Save(p *model.UserProgression) error
	AddExperience(userID uint, delta int) (int, error)
}

// ExperienceService 把判分结果换算成经验并推进用户等级。
// 经验累加走数据库原子自增，等级与窗口计数的读改写用 redis
// 按用户加锁串行化，并发提交不会互相丢更新。
type ExperienceService struct {
	store  progressionStore
	rdb    *redis.Client
	engine config.EngineConfig
	log    *zap.Logger
}

func NewExperienceService(store progressionStore, rdb *redis.Client, engine config.EngineConfig, log *zap.Logger) *ExperienceService {
	return &ExperienceService{
		store:  store,
		rdb:    rdb,
		engine: engine,
		log:    log,
	}
}

// ComputeGain 单次尝试的经验值，固定顺序的乘法加成链。
// 纯函数，只读 attempt 字段不做任何校验。
func (s *ExperienceService) ComputeGain(attempt *model.Attempt) int {
	base := float64(10 + attempt.Level*5)

	correctness := 0.3
	if attempt.IsCorrect {
		correctness = 1.5
	}

	scoreBonus := 1.0
	switch {
	case attempt.Score >= 90:
		scoreBonus = 1.2
	case attempt.Score >= 80:
		scoreBonus = 1.1
	}

	firstBonus := 1.0
	if attempt.IsFirstAttempt && attempt.IsCorrect {
		firstBonus = 1.3
	}

	typeMultiplier := s.typeMultiplier(attempt.ProblemType)

	// 慢答惩罚下限 0.8，再慢也不会归零
	timeFactor := math.Max(0.8, 1.0-float64(attempt.ResponseTimeMs)/300000.0)

	return int(math.Round(base * correctness * scoreBonus * firstBonus * typeMultiplier * timeFactor))
}

func (s *ExperienceService) typeMultiplier(t model.ProblemType) float64 {
	switch t {
	case model.FreeCode:
		return s.engine.FreeCodeMultiplier
	case model.Cloze:
		return s.engine.ClozeMultiplier
	case model.Block:
		return s.engine.BlockMultiplier
	}
	return 1.0
}

// ApplyAttempt 结算一次尝试：累加经验、推进等级、滚动窗口计数、发奖励。
// 进阶行不存在时惰性创建，首次提交必定成功。
func (s *ExperienceService) ApplyAttempt(ctx context.Context, userID uint, attempt *model.Attempt) (*ProgressionUpdate, error) {
	unlock, err := s.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	prog, err := s.store.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if prog == nil {
		prog = &model.UserProgression{
			UserID:              userID,
			Level:               1,
			HighestLevelReached: 1,
		}
		if err := s.store.Create(prog); err != nil {
			return nil, err
		}
	}
	previousLevel := prog.Level

	gained := s.ComputeGain(attempt)
	newTotal, err := s.store.AddExperience(userID, gained)
	if err != nil {
		return nil, err
	}

	info := progression.LevelFromExperience(newTotal)
	leveledUp := info.Level > previousLevel
	levelUpCount := 0
	if leveledUp {
		levelUpCount = info.Level - previousLevel
	}

	var rewards []Reward
	for lv := previousLevel + 1; lv <= info.Level; lv++ {
		rewards = append(rewards, rewardForLevel(lv))
	}

	now := time.Now()
	s.rollWindows(prog, gained, now)
	prog.TotalExperience = newTotal
	prog.Level = info.Level
	if info.Level > prog.HighestLevelReached {
		prog.HighestLevelReached = info.Level
	}
	prog.LastXPAt = now

	if err := s.store.Save(prog); err != nil {
		return nil, err
	}

	s.updateLeaderboard(ctx, userID, newTotal)

	monitoring.ExperienceAwarded.Add(float64(gained))
	if leveledUp {
		for i := 0; i < levelUpCount; i++ {
			monitoring.LevelUps.Inc()
		}
		s.log.Info("user leveled up",
			zap.Uint("userId", userID),
			zap.Int("from", previousLevel),
			zap.Int("to", info.Level))
	}

	return &ProgressionUpdate{
		GainedXP:        gained,
		TotalExperience: newTotal,
		LevelInfo:       info,
		LeveledUp:       leveledUp,
		LevelUpCount:    levelUpCount,
		Rewards:         rewards,
	}, nil
}

// rollWindows 按日历边界滚动日/周/月经验计数。
// 上次结算与本次不在同一个日历周期时，计数重置为本次所得而不是累加。
func (s *ExperienceService) rollWindows(prog *model.UserProgression, gained int, now time.Time) {
	last := prog.LastXPAt

	if sameDay(last, now) {
		prog.DailyXP += gained
	} else {
		prog.DailyXP = gained
	}

	lastYear, lastWeek := last.ISOWeek()
	nowYear, nowWeek := now.ISOWeek()
	if lastYear == nowYear && lastWeek == nowWeek {
		prog.WeeklyXP += gained
	} else {
		prog.WeeklyXP = gained
	}

	if last.Year() == now.Year() && last.Month() == now.Month() {
		prog.MonthlyXP += gained
	} else {
		prog.MonthlyXP = gained
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func rewardForLevel(level int) Reward {
	if name, ok := milestoneRewards[level]; ok {
		return Reward{Level: level, Kind: "milestone", Name: name, BonusXP: level * 2}
	}
	return Reward{Level: level, Kind: "level", Name: fmt.Sprintf("Level %d reached", level), BonusXP: level * 2}
}

// lockUser 通过 redis SETNX 按用户串行化结算，redis 未配置时退化为无锁
func (s *ExperienceService) lockUser(ctx context.Context, userID uint) (func(), error) {
	if s.rdb == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("lock:progression:%d", userID)
	for i := 0; i < 50; i++ {
		ok, err := s.rdb.SetNX(ctx, key, 1, progressionLockTTL).Result()
		if err != nil {
			// redis 故障时不阻断结算，数据库自增仍保证总经验不丢
			s.log.Warn("progression lock unavailable", zap.Error(err))
			return func() {}, nil
		}
		if ok {
			return func() { s.rdb.Del(context.Background(), key) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("progression busy for user %d", userID)
}

func (s *ExperienceService) updateLeaderboard(ctx context.Context, userID uint, total int) {
	if s.rdb == nil {
		return
	}
	err := s.rdb.ZAdd(ctx, LeaderboardKey, &redis.Z{
		Score:  float64(total),
		Member: fmt.Sprintf("%d", userID),
	}).Err()
	if err != nil {
		s.log.Warn("leaderboard update failed", zap.Uint("userId", userID), zap.Error(err))
	}
}

// Leaderboard 总经验榜前 N 名，返回 userId 与分值
func (s *ExperienceService) Leaderboard(ctx context.Context, limit int) ([]redis.Z, error) {
	if s.rdb == nil {
		return nil, nil
	}
	return s.rdb.ZRevRangeWithScores(ctx, LeaderboardKey, 0, int64(limit-1)).Result()
}
