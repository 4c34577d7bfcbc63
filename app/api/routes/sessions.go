package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/broadcast"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/constant"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/session"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/dtos"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/state"
	"github.com/rs/zerolog"
)

func SessionRoutes(r *gin.RouterGroup, s session.Service, hub *broadcast.Hub, log zerolog.Logger) {
	r.POST("", createSession(s))
	r.GET("", listSessions(s))

	one := r.Group("/:id", sessionOwner(s))
	{
		one.GET("", getSession(s))
		one.DELETE("", deleteSession(s))
		one.POST("/start", startSession(s))
		one.POST("/stop", stopSession(s))
		one.POST("/restart", restartSession(s))
		one.PATCH("/config", updateSessionConfig(s))
		one.GET("/qr", qrCode(s))
		one.POST("/messages", sendMessage(s))
		one.GET("/messages", listMessages(s))
		one.GET("/contacts", listContacts(s))
		one.GET("/groups", listGroups(s))
		one.GET("/events", observe(hub, log))
	}
}

// @Summary Create a session and start pairing
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dtos.SessionCreateDTO true "session"
// @Success 201 {object} entities.Session
// @Router /sessions [post]
func createSession(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req dtos.SessionCreateDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}

		created, err := s.CreateSession(c, state.CurrentUser(c), req)
		if created.ID == "" {
			fail(c, err)
			return
		}
		resp := gin.H{
			"message": fmt.Sprintf(constant.CREATED, "Session"),
			"data":    created,
		}
		if err != nil {
			resp["warning"] = err.Error()
		}
		c.JSON(201, resp)
	}
}

func listSessions(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		list, err := s.ListSessions(c, state.CurrentUser(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"data": list})
	}
}

func getSession(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		got, err := s.GetSession(c, state.CurrentUser(c), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"data": got})
	}
}

// @Summary Delete a session, its credentials and all its data
// @Tags sessions
// @Security BearerAuth
// @Param id path string true "session id"
// @Success 200 {object} map[string]string
// @Router /sessions/{id} [delete]
func deleteSession(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		if err := s.DeleteSession(c, state.CurrentUser(c), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"message": fmt.Sprintf(constant.DELETED, "Session")})
	}
}

func startSession(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		got, err := s.StartSession(c, state.CurrentUser(c), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"message": constant.SESSION_STARTED, "data": got})
	}
}

func stopSession(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		got, err := s.StopSession(c, state.CurrentUser(c), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"message": constant.SESSION_STOPPED, "data": got})
	}
}

func restartSession(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		got, err := s.RestartSession(c, state.CurrentUser(c), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"message": constant.SESSION_STARTED, "data": got})
	}
}

func updateSessionConfig(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req dtos.SessionConfigDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}
		got, err := s.UpdateConfig(c, state.CurrentUser(c), c.Param("id"), req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"message": fmt.Sprintf(constant.UPDATED, "Session config"), "data": got})
	}
}

// @Summary Current pairing code as a PNG image
// @Tags sessions
// @Produce png
// @Security BearerAuth
// @Param id path string true "session id"
// @Success 200 {file} binary
// @Router /sessions/{id}/qr [get]
func qrCode(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		png, err := s.QRCode(c, state.CurrentUser(c), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.Data(200, "image/png", png)
	}
}

// @Summary Send a text or media message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "session id"
// @Param body body dtos.SendMessageDTO true "message"
// @Success 200 {object} dtos.MessageResponseDTO
// @Router /sessions/{id}/messages [post]
func sendMessage(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req dtos.SendMessageDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}

		res, err := s.SendMessage(c, state.CurrentUser(c), c.Param("id"), req)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(200, gin.H{
			"message": constant.MESSAGE_SENT,
			"data": dtos.MessageResponseDTO{
				MessageID: res.MessageID,
				Timestamp: res.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
				To:        req.To,
			},
		})
	}
}

func listMessages(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		page, size, ok := paging(c)
		if !ok {
			return
		}
		list, pages, err := s.ListMessages(c, state.CurrentUser(c), c.Param("id"), c.Query("chat"), page, size)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"data": list, "page": page, "total_pages": pages})
	}
}

func listContacts(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		page, size, ok := paging(c)
		if !ok {
			return
		}
		list, pages, err := s.ListContacts(c, state.CurrentUser(c), c.Param("id"), page, size)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"data": list, "page": page, "total_pages": pages})
	}
}

func listGroups(s session.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		page, size, ok := paging(c)
		if !ok {
			return
		}
		list, pages, err := s.ListGroups(c, state.CurrentUser(c), c.Param("id"), page, size)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"data": list, "page": page, "total_pages": pages})
	}
}

// observe streams the session's events over a websocket.
func observe(hub *broadcast.Hub, log zerolog.Logger) func(c *gin.Context) {
	return func(c *gin.Context) {
		if err := hub.ServeWS(c.Writer, c.Request, c.Param("id")); err != nil {
			log.Debug().Err(err).Str("session", c.Param("id")).Msg("observer closed")
		}
	}
}
