package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/constant"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/webhook"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/dtos"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/state"
)

func WebhookRoutes(r *gin.RouterGroup, s webhook.Service) {
	r.GET("", listWebhooks(s))
	r.POST("", createWebhook(s))
	r.PATCH("/:id", toggleWebhook(s))
	r.DELETE("/:id", deleteWebhook(s))
}

// @Summary Register a webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dtos.WebhookCreateDTO true "webhook"
// @Success 201 {object} entities.Webhook
// @Router /webhooks [post]
func createWebhook(s webhook.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req dtos.WebhookCreateDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}
		hook, err := s.CreateWebhook(c, state.CurrentUser(c), req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(201, gin.H{"message": fmt.Sprintf(constant.CREATED, "Webhook"), "data": hook})
	}
}

func listWebhooks(s webhook.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		hooks, err := s.ListWebhooks(c, state.CurrentUser(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"data": hooks})
	}
}

func toggleWebhook(s webhook.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req dtos.WebhookToggleDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}
		if err := s.ToggleWebhook(c, state.CurrentUser(c), c.Param("id"), *req.Active); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"message": fmt.Sprintf(constant.UPDATED, "Webhook")})
	}
}

func deleteWebhook(s webhook.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		if err := s.DeleteWebhook(c, state.CurrentUser(c), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"message": fmt.Sprintf(constant.DELETED, "Webhook")})
	}
}
