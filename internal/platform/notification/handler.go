package notification

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/esf/gestao-esf/internal/platform/auth"
)

type Handler struct {
	publisher *Publisher
}

func NewHandler(p *Publisher) *Handler {
	return &Handler{publisher: p}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/notifications", h.Create, auth.RequireRole(auth.TeamRoles...))
	api.GET("/notifications/types", h.ListTypes)
}

type createRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Create answers 202 whether or not the store accepted the write; the
// result body says which.
func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	category, err := ParseCategory(req.Type)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res := h.publisher.Publish(c.Request().Context(), req.Title, req.Message, category)
	return c.JSON(http.StatusAccepted, res)
}

func (h *Handler) ListTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, Categories())
}
