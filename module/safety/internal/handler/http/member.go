package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
)

// Identity arrives from the auth gateway as trusted headers; the engine
// never authenticates on its own.
const (
	headerMemberID    = "X-Member-ID"
	headerMemberName  = "X-Member-Name"
	headerCommunityID = "X-Community-ID"
)

func memberFromHeaders(c *gin.Context) (domain.Member, bool) {
	m := domain.Member{
		ID:          c.GetHeader(headerMemberID),
		DisplayName: c.GetHeader(headerMemberName),
		CommunityID: c.GetHeader(headerCommunityID),
	}
	if m.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing member identity"})
		return domain.Member{}, false
	}
	return m, true
}
