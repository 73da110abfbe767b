package utils

import (
	"net/http"

	"techrobotics-site/internal/models"

	"github.com/mileusna/useragent"
)

// ClientInfo describes the browser behind a request.
func ClientInfo(r *http.Request, ip string) models.ClientInfo {
	ua := useragent.Parse(r.UserAgent())

	info := models.ClientInfo{
		IP:      ip,
		Browser: ua.Name,
		OS:      ua.OS,
	}

	if ua.Version != "" && ua.Name != "" {
		info.Browser = ua.Name + " " + ua.Version
	}

	switch {
	case ua.Bot:
		info.Device = "bot"
	case ua.Tablet:
		info.Device = "tablet"
	case ua.Mobile:
		info.Device = "mobile"
	case ua.Desktop:
		info.Device = "desktop"
	}

	return info
}
