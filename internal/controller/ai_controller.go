package controller

import (
	"errors"

	"quiz_admin_backend/internal/service"
	"quiz_admin_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AIController struct {
	UsageService *service.AIUsageService
}

func NewAIController(usageService *service.AIUsageService) *AIController {
	return &AIController{UsageService: usageService}
}

type HintRequest struct {
	Username     string `json:"username" binding:"required"`
	Question     string `json:"question" binding:"required"`
	UserQuestion string `json:"userQuestion"`
}

// RequestHint godoc
// @Summary AI求助
// @Description 额度内（最多3道题、每题3次）向AI请求提示；AI调用失败不扣额度
// @Tags AI
// @Accept json
// @Produce json
// @Param body body HintRequest true "题目ID与学生追问"
// @Success 200 {object} map[string]interface{} "提示内容"
// @Failure 400 {object} util.Response "题目不存在"
// @Failure 401 {object} util.Response "学生未登录过"
// @Failure 403 {object} util.Response "额度已用尽"
// @Failure 500 {object} util.Response "AI服务不可用"
// @Router /ai-help [post]
func (c *AIController) RequestHint(ctx *gin.Context) {
	var req HintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	hint, err := c.UsageService.RequestHint(ctx.Request.Context(), req.Username, req.Question, req.UserQuestion)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuotaExceeded):
			util.Forbidden(ctx, "AI help allowed for only 3 questions.")
		case errors.Is(err, util.ErrPromptsExhausted):
			util.Forbidden(ctx, "No more AI prompts for this question.")
		case errors.Is(err, util.ErrProviderUnavailable):
			util.Fail(ctx, 500, "AI error")
		case errors.Is(err, util.ErrStudentNotFound):
			util.Unauthorized(ctx, "Unknown student")
		case errors.Is(err, util.ErrQuestionNotFound):
			util.BadRequest(ctx, "Unknown question")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.OK(ctx, gin.H{
		"hint": hint,
	})
}

// GetUsage godoc
// @Summary 查询AI用量
// @Description 前端轮询用，未知学生返回零值快照
// @Tags AI
// @Produce json
// @Param username path string true "学生用户名"
// @Success 200 {object} model.UsageSnapshot
// @Router /ai-usage/{username} [get]
func (c *AIController) GetUsage(ctx *gin.Context) {
	username := ctx.Param("username")

	snapshot, err := c.UsageService.GetUsage(ctx.Request.Context(), username)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.JSON(200, snapshot)
}
