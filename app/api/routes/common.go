package routes

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/constant"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/bot"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/scheduler"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/session"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/webhook"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/state"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/storage"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/utils"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, webhook.ErrWebhookNotFound),
		errors.Is(err, webhook.ErrSessionNotFound),
		errors.Is(err, bot.ErrRuleNotFound),
		errors.Is(err, scheduler.ErrScheduleNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, session.ErrNoQRCode):
		return 404
	case errors.Is(err, session.ErrSessionExists):
		return 409
	case errors.Is(err, session.ErrNotConnected):
		return 503
	case errors.Is(err, bot.ErrInvalidMode),
		errors.Is(err, bot.ErrInvalidMatch),
		errors.Is(err, bot.ErrInvalidPattern),
		errors.Is(err, webhook.ErrUnknownEvent),
		errors.Is(err, scheduler.ErrInvalidRecipient),
		errors.Is(err, storage.ErrTooLarge),
		errors.Is(err, utils.ErrPageOutOfRange):
		return 400
	}
	return 500
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// sessionOwner rejects requests for sessions the caller does not own.
func sessionOwner(s session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Authorize(c, state.CurrentUser(c), c.Param("id")); err != nil {
			fail(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// paging reads page and page_size query parameters.
func paging(c *gin.Context) (int, int, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(400, gin.H{"error": constant.INVALID_PAGE_NUMBER})
		return 0, 0, false
	}
	size, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(utils.DefaultPageSize)))
	if err != nil || size < 1 || size > 200 {
		c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
		return 0, 0, false
	}
	return page, size, true
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": constant.INVALID_REQUEST})
		return 0, false
	}
	return uint(id), true
}
