package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrPermissionDenied = errors.New("permission denied")
	ErrProblemNotFound  = errors.New("problem not found")

	// ErrProblemMisconfigured：题目数据本身损坏（答案槽为空或无可解析答案），
	// 必须与"用户答错"区分开，不可重试
	ErrProblemMisconfigured = errors.New("problem answer key is misconfigured")

	// ErrValidation：请求结构不合法，在任何判分发生之前拒绝
	ErrValidation = errors.New("invalid submission payload")

	// ErrInsufficientData：近期尝试数不足，等级重估被拒；属预期业务状态而非系统故障
	ErrInsufficientData = errors.New("not enough recent attempts for level assessment")
)
