package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/constant"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/scheduler"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/session"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/dtos"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/state"
)

func ScheduleRoutes(r *gin.RouterGroup, sessions session.Service, s scheduler.Service) {
	g := r.Group("/:id", sessionOwner(sessions))
	{
		g.GET("/schedules", listSchedules(s))
		g.POST("/schedules", createSchedule(s))
		g.DELETE("/schedules/:schedule", deleteSchedule(s))
	}
}

// @Summary Schedule a message
// @Tags schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "session id"
// @Param body body dtos.ScheduleCreateDTO true "scheduled message"
// @Success 201 {object} entities.ScheduledMessage
// @Router /sessions/{id}/schedules [post]
func createSchedule(s scheduler.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req dtos.ScheduleCreateDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}
		m, err := s.CreateSchedule(c, state.CurrentUser(c), c.Param("id"), req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(201, gin.H{"message": fmt.Sprintf(constant.ADDED, "Scheduled message"), "data": m})
	}
}

func listSchedules(s scheduler.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		list, err := s.ListSchedules(c, state.CurrentUser(c), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"data": list})
	}
}

func deleteSchedule(s scheduler.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		id, ok := idParam(c, "schedule")
		if !ok {
			return
		}
		if err := s.DeleteSchedule(c, state.CurrentUser(c), c.Param("id"), id); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"message": fmt.Sprintf(constant.DELETED, "Scheduled message")})
	}
}
