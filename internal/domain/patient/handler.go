package patient

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinica/clinica/internal/platform/auth"
	"github.com/clinica/clinica/internal/platform/httperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/patients", auth.RequireSession(), auth.RequireRole("doctor"))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/by-national-id/:nid", h.GetByNationalID)
	g.POST("", h.Create, auth.RequireFields("first_name", "last_name"))
	g.POST("/minimal", h.CreateMinimal, auth.RequireFields("first_name", "last_name"))
	g.PUT("/:id", h.Update, auth.RequireFields("first_name", "last_name"))
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	id := auth.IdentityFromContext(c.Request().Context())
	patients, err := h.svc.List(c.Request().Context(), id.AccountID, c.QueryParam("search"))
	if err != nil {
		return httperr.ToHTTP(err)
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) Get(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	p, err := h.svc.Get(c.Request().Context(), id.AccountID, pid)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetByNationalID(c echo.Context) error {
	id := auth.IdentityFromContext(c.Request().Context())
	p, err := h.svc.GetByNationalID(c.Request().Context(), id.AccountID, c.Param("nid"))
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Create(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	created, err := h.svc.Create(c.Request().Context(), id.AccountID, &p)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) CreateMinimal(c echo.Context) error {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	created, err := h.svc.CreateMinimal(c.Request().Context(), id.AccountID, body.FirstName, body.LastName)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	updated, err := h.svc.Update(c.Request().Context(), id.AccountID, pid, &p)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), id.AccountID, pid); err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "patient deleted"})
}
