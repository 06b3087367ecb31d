package authgw

import (
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/clientip"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// DeviceFromRequest captures the device descriptor stored with a session:
// user agent, client IP and the client-hint platform.
func DeviceFromRequest(r *http.Request) session.DeviceInfo {
	return session.DeviceInfo{
		UserAgent: r.UserAgent(),
		IPAddress: clientip.FromRequest(r),
		Platform:  r.Header.Get("Sec-CH-UA-Platform"),
	}
}
