package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/constant"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/auth"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/dtos"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/state"
)

func AuthRoutes(r *gin.RouterGroup, protected gin.HandlerFunc, s auth.Service) {
	r.POST("/register", register(s))
	r.POST("/login", login(s))
	r.GET("/me", protected, profile(s))
	r.POST("/change-password", protected, changePassword(s))
}

// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dtos.DTOForUserCreate true "account"
// @Success 201 {object} map[string]string
// @Router /auth/register [post]
func register(s auth.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req dtos.DTOForUserCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}

		token, err := s.Register(c, req)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		c.JSON(201, gin.H{
			"message": fmt.Sprintf(constant.CREATED, "User"),
			"token":   token,
		})
	}
}

// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dtos.DTOForUserLogin true "credentials"
// @Success 200 {object} map[string]string
// @Router /auth/login [post]
func login(s auth.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req dtos.DTOForUserLogin
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}

		token, err := s.Login(c, req)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"token": token})
	}
}

func profile(s auth.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		user, err := s.Profile(c, state.CurrentUser(c))
		if err != nil {
			c.JSON(404, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"data": user})
	}
}

func changePassword(s auth.Service) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req dtos.ChangePasswordDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
			return
		}
		if err := s.ChangePassword(c, state.CurrentUser(c), req); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"message": constant.PASSWORD_CHANGED})
	}
}
