package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
)

// Flash kinds
const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashDanger  = "danger"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// views renders pages with the data every template expects. The session
// manager is optional; without it flash messages are dropped.
type views struct {
	sessions *auth.SessionManager
}

// render executes a named template. data may be nil.
func (v *views) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Auth"] = authTemplateData(c)
	if v.sessions != nil {
		if flash := v.sessions.PopFlash(c.Request); flash != nil {
			data["Flash"] = flash
		}
	}
	c.HTML(status, name, data)
}

// flash queues a message for the next page.
func (v *views) flash(c *gin.Context, kind, message string) {
	if v.sessions != nil {
		v.sessions.AddFlash(c.Request, kind, message)
	}
}

// redirectWithFlash finishes a successful write.
func (v *views) redirectWithFlash(c *gin.Context, location, kind, message string) {
	v.flash(c, kind, message)
	c.Redirect(http.StatusFound, location)
}

// renderError maps catalog errors to an error page: not found is 404,
// validation is 400, anything else is logged and shown as 500.
func (v *views) renderError(c *gin.Context, err error, context string) {
	status, message := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(contextKeyRequestID)).
			Str("context", context).
			Msg("request failed")
	}

	v.render(c, status, "error", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// respondJSONError is renderError for JSON endpoints.
func respondJSONError(c *gin.Context, err error, context string) {
	status, message := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("context", context).Msg("request failed")
	}

	resp := ErrorResponse{Error: message}
	var ve *catalog.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	c.JSON(status, resp)
}

func errorStatus(err error) (int, string) {
	var ve *catalog.ValidationError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "The page you are looking for does not exist."
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	default:
		return http.StatusInternalServerError, "Something went very wrong."
	}
}

// parsePage reads a 1-based page number from the query string.
func parsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func totalPages(total int64, limit int) int {
	pages := (int(total) + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}
