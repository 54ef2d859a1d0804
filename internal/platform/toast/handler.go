package toast

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/esf/gestao-esf/internal/platform/auth"
)

// AnonymousSession is the session key used when a request carries no user.
const AnonymousSession = "anonymous"

type Handler struct {
	registry *Registry
}

func NewHandler(r *Registry) *Handler {
	return &Handler{registry: r}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/toasts")
	g.GET("", h.List)
	g.POST("", h.Show)
	g.DELETE("/:id", h.Dismiss)
}

type showRequest struct {
	Message string `json:"message"`
	Type    Type   `json:"type"`
}

func sessionKey(c echo.Context) string {
	if key := auth.UserIDFromContext(c.Request().Context()); key != "" {
		return key
	}
	return AnonymousSession
}

func (h *Handler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.registry.Active(sessionKey(c)))
}

func (h *Handler) Show(c echo.Context) error {
	var req showRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, h.registry.Show(sessionKey(c), req.Message, req.Type))
}

func (h *Handler) Dismiss(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !h.registry.Dismiss(sessionKey(c), id) {
		return echo.NewHTTPError(http.StatusNotFound, "toast not found")
	}
	return c.NoContent(http.StatusNoContent)
}
