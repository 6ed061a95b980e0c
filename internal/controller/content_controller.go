package controller

import (
	"language_gems_backend/internal/service"
	"language_gems_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// @Summary 语法主题列表
// @Tags 语法目录
// @Produce json
// @Param language query string false "语言代码 (es, fr, de)"
// @Success 200 {object} util.Response
// @Router /api/grammar/topics [get]
func (c *ContentController) ListTopics(ctx *gin.Context) {
	topics, err := c.ContentService.ListTopics(ctx.Query("language"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, topics)
}

// @Summary 主题详情
// @Tags 语法目录
// @Produce json
// @Param id path string true "主题ID"
// @Success 200 {object} util.Response
// @Router /api/grammar/topics/{id} [get]
func (c *ContentController) GetTopic(ctx *gin.Context) {
	topic, err := c.ContentService.GetTopic(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, topic)
}

// @Summary 主题内容列表
// @Tags 语法目录
// @Produce json
// @Param id path string true "主题ID"
// @Success 200 {object} util.Response
// @Router /api/grammar/topics/{id}/content [get]
func (c *ContentController) ListTopicContent(ctx *gin.Context) {
	content, err := c.ContentService.ListTopicContent(ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, content)
}
