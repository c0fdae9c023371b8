package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
)

// AuthTemplateData holds authentication info for templates.
type AuthTemplateData struct {
	Mode          config.AuthMode
	LoginEnabled  bool   // false in "none" mode
	Maintainer    string // empty for anonymous readers
	CSRFToken     string // empty when CSRF protection is off
	CSRFFieldName string
}

// authTemplateData builds the auth block every page template receives as .Auth.
func authTemplateData(c *gin.Context) AuthTemplateData {
	mode := auth.GetAuthMode(c)
	return AuthTemplateData{
		Mode:          mode,
		LoginEnabled:  mode != config.AuthModeNone,
		Maintainer:    auth.GetMaintainer(c),
		CSRFToken:     auth.GetCSRFToken(c),
		CSRFFieldName: auth.CSRFFieldName,
	}
}
