package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/esf/gestao-esf/pkg/pagination"
)

type Handler struct {
	provider *Provider
}

func NewHandler(p *Provider) *Handler {
	return &Handler{provider: p}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/app-info", h.GetAppInfo)
	api.GET("/changelog", h.ListChangelog)

	g := api.Group("/catalog")
	g.GET("", h.GetAll)
	g.GET("/professions", h.ListProfessions)
	g.GET("/microareas", h.ListMicroareas)
	g.GET("/conditions", h.ListConditions)
	g.GET("/conditions/:code/style", h.GetConditionStyle)
	g.GET("/appointment-types", h.ListAppointmentTypes)
	g.GET("/prescription-types", h.ListPrescriptionTypes)
}

type catalogResponse struct {
	App               AppInfo            `json:"app"`
	Professions       []string           `json:"professions"`
	Microareas        []Microarea        `json:"microareas"`
	Conditions        []ConditionTag     `json:"conditions"`
	AppointmentTypes  []AppointmentType  `json:"appointmentTypes"`
	PrescriptionTypes []PrescriptionType `json:"prescriptionTypes"`
}

func (h *Handler) GetAll(c echo.Context) error {
	return c.JSON(http.StatusOK, catalogResponse{
		App:               App(),
		Professions:       Professions(),
		Microareas:        Microareas(),
		Conditions:        ConditionTags(),
		AppointmentTypes:  AppointmentTypes(),
		PrescriptionTypes: PrescriptionTypes(),
	})
}

func (h *Handler) GetAppInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, App())
}

func (h *Handler) ListProfessions(c echo.Context) error {
	return c.JSON(http.StatusOK, Professions())
}

func (h *Handler) ListMicroareas(c echo.Context) error {
	return c.JSON(http.StatusOK, Microareas())
}

func (h *Handler) ListConditions(c echo.Context) error {
	return c.JSON(http.StatusOK, ConditionTags())
}

// GetConditionStyle answers 404 for unmapped codes unless ?fallback=true,
// in which case the default style is returned.
func (h *Handler) GetConditionStyle(c echo.Context) error {
	code := c.Param("code")
	if c.QueryParam("fallback") == "true" {
		style := h.provider.StyleFor(code)
		return c.JSON(http.StatusOK, ConditionTag{Code: normalizeCode(code), Style: style})
	}
	style, err := LookupStyle(code)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, ConditionTag{Code: normalizeCode(code), Style: style})
}

func (h *Handler) ListAppointmentTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, AppointmentTypes())
}

func (h *Handler) ListPrescriptionTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, PrescriptionTypes())
}

func (h *Handler) ListChangelog(c echo.Context) error {
	pg := pagination.FromContext(c)
	all := Changelog()
	total := len(all)
	start, end := pg.Window(total)
	return c.JSON(http.StatusOK, pagination.NewResponse(all[start:end], total, pg.Limit, pg.Offset))
}
