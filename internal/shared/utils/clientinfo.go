package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/shared/constants"
)

const maxUserAgentLength = 512

// ClientInfo is the requester network metadata recorded with audit entries.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// GetClientInfo extracts the client ip (honouring gin's trusted proxies) and
// a truncated user agent.
func GetClientInfo(c *gin.Context) ClientInfo {
	ua := c.GetHeader(constants.HeaderUserAgent)
	if len(ua) > maxUserAgentLength {
		ua = ua[:maxUserAgentLength]
	}
	return ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: ua,
	}
}
