package controller

import (
	"bytes"
	"net/http"

	"quiz_admin_backend/internal/service"
	"quiz_admin_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// DownloadReport godoc
// @Summary 下载成绩报表
// @Description 导出CSV：每个学生每道题的答案、对错和AI提示用量
// @Tags 报表
// @Produce text/csv
// @Success 200 {string} string "CSV文件"
// @Failure 500 {object} util.Response
// @Router /download-report [get]
func (c *ReportController) DownloadReport(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := c.ReportService.WriteCSV(&buf); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="quiz_report.csv"`)
	ctx.Data(http.StatusOK, "text/csv", buf.Bytes())
}
