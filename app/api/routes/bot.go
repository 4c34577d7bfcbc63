package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/constant"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/bot"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/session"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/dtos"
)

// BotRoutes mounts bot configuration and auto-reply rules under a session.
func BotRoutes(r *gin.RouterGroup, sessions session.Service, s bot.Service) {
	g := r.Group("/:id", sessionOwner(sessions))
	{
		g.GET("/bot", getBotConfig(s))
		g.PATCH("/bot", updateBotConfig(s))
		g.GET("/autoreplies", listRules(s))
		g.POST("/autoreplies", createRule(s))
		g.DELETE("/autoreplies/:rule", deleteRule(s))
	}
}

func getBotConfig(s bot.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		cfg, err := s.GetConfig(c, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"data": cfg})
	}
}

func updateBotConfig(s bot.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req dtos.BotConfigUpdateDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}
		cfg, err := s.UpdateConfig(c, c.Param("id"), req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"message": fmt.Sprintf(constant.UPDATED, "Bot config"), "data": cfg})
	}
}

func listRules(s bot.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		rules, err := s.ListRules(c, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"data": rules})
	}
}

// @Summary Add a keyword auto-reply rule
// @Tags bot
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "session id"
// @Param body body dtos.AutoReplyCreateDTO true "rule"
// @Success 201 {object} entities.AutoReplyRule
// @Router /sessions/{id}/autoreplies [post]
func createRule(s bot.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req dtos.AutoReplyCreateDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}
		rule, err := s.CreateRule(c, c.Param("id"), req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(201, gin.H{"message": fmt.Sprintf(constant.ADDED, "Auto reply"), "data": rule})
	}
}

func deleteRule(s bot.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		id, ok := idParam(c, "rule")
		if !ok {
			return
		}
		if err := s.DeleteRule(c, c.Param("id"), id); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"message": fmt.Sprintf(constant.DELETED, "Auto reply")})
	}
}
