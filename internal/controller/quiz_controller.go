package controller

import (
	"errors"

	"quiz_admin_backend/internal/repository"
	"quiz_admin_backend/internal/service"
	"quiz_admin_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Questions    *repository.QuestionRepository
	ScoreService *service.ScoreService
}

func NewQuizController(questions *repository.QuestionRepository, scoreService *service.ScoreService) *QuizController {
	return &QuizController{
		Questions:    questions,
		ScoreService: scoreService,
	}
}

// GetQuestions godoc
// @Summary 获取题目列表
// @Description 返回全部题目（不含正确答案），顺序与题库一致
// @Tags 测验
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /questions [get]
func (c *QuizController) GetQuestions(ctx *gin.Context) {
	util.OK(ctx, gin.H{
		"questions": c.Questions.List(),
	})
}

type SubmitRequest struct {
	Username string            `json:"username" binding:"required"`
	Answers  map[string]string `json:"answers"`
}

// Submit godoc
// @Summary 提交答卷
// @Description 一次性提交，逐题精确比对计分；重复提交会被拒绝且首次结果不变
// @Tags 测验
// @Accept json
// @Produce json
// @Param body body SubmitRequest true "学生答案"
// @Success 200 {object} map[string]interface{} "最终得分"
// @Failure 401 {object} util.Response "学生未登录过"
// @Failure 403 {object} util.Response "已提交过"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	score, err := c.ScoreService.Submit(req.Username, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAlreadySubmitted):
			util.Forbidden(ctx, "You have already submitted the quiz.")
		case errors.Is(err, util.ErrStudentNotFound):
			util.Unauthorized(ctx, "Unknown student")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.OK(ctx, gin.H{
		"score": score,
	})
}

// GetScore godoc
// @Summary 查询成绩
// @Description 未知学生或未提交时返回0
// @Tags 测验
// @Produce json
// @Param username path string true "学生用户名"
// @Success 200 {object} map[string]interface{}
// @Router /score/{username} [get]
func (c *QuizController) GetScore(ctx *gin.Context) {
	username := ctx.Param("username")
	util.OK(ctx, gin.H{
		"score": c.ScoreService.GetScore(username),
	})
}
