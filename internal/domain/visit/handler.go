package visit

import (
	"net/http"
	"time"

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
	g := api.Group("/visits", auth.RequireSession(), auth.RequireRole("doctor"))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/by-patient/:patientId", h.ListByPatient)
	g.GET("/by-date/:date", h.ListByDate)
	g.POST("", h.Create, auth.RequireFields("patient_id"))
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// Dates travel as plain YYYY-MM-DD strings.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

type visitRequest struct {
	PatientID  uuid.UUID `json:"patient_id"`
	VisitDate  string    `json:"visit_date"`
	VisitTime  string    `json:"visit_time"`
	Reason     *string   `json:"reason"`
	Report     *string   `json:"report"`
	Diagnosis  *string   `json:"diagnosis"`
	Treatment  *string   `json:"treatment"`
	Studies    *string   `json:"studies"`
	Attachment *string   `json:"attachment"`
}

func (h *Handler) List(c echo.Context) error {
	id := auth.IdentityFromContext(c.Request().Context())
	visits, err := h.svc.List(c.Request().Context(), id.AccountID)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	if visits == nil {
		visits = []*Visit{}
	}
	return c.JSON(http.StatusOK, visits)
}

func (h *Handler) Get(c echo.Context) error {
	vid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	v, err := h.svc.Get(c.Request().Context(), id.AccountID, vid)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	visits, err := h.svc.ListByPatient(c.Request().Context(), id.AccountID, pid)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	if visits == nil {
		visits = []*Visit{}
	}
	return c.JSON(http.StatusOK, visits)
}

func (h *Handler) ListByDate(c echo.Context) error {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	visits, err := h.svc.ListByDate(c.Request().Context(), id.AccountID, date)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	if visits == nil {
		visits = []*Visit{}
	}
	return c.JSON(http.StatusOK, visits)
}

func (h *Handler) Create(c echo.Context) error {
	var body visitRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}

	v := &Visit{
		PatientID:  body.PatientID,
		VisitTime:  body.VisitTime,
		Reason:     body.Reason,
		Report:     body.Report,
		Diagnosis:  body.Diagnosis,
		Treatment:  body.Treatment,
		Studies:    body.Studies,
		Attachment: body.Attachment,
	}
	if body.VisitDate != "" {
		date, err := parseDate(body.VisitDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid visit_date, expected YYYY-MM-DD")
		}
		v.VisitDate = date
	}

	id := auth.IdentityFromContext(c.Request().Context())
	created, err := h.svc.Create(c.Request().Context(), id.AccountID, v)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	vid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body visitRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}

	id := auth.IdentityFromContext(c.Request().Context())
	updated, err := h.svc.Update(c.Request().Context(), id.AccountID, vid, &Visit{
		Reason:     body.Reason,
		Report:     body.Report,
		Diagnosis:  body.Diagnosis,
		Treatment:  body.Treatment,
		Studies:    body.Studies,
		Attachment: body.Attachment,
	})
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	vid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), id.AccountID, vid); err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "visit deleted"})
}
