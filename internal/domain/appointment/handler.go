package appointment

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
	g := api.Group("/appointments", auth.RequireSession(), auth.RequireRole("doctor"))
	g.GET("", h.List)
	g.GET("/today", h.ListToday)
	g.GET("/:id", h.Get)
	g.GET("/by-date/:date", h.ListByDate)
	g.GET("/by-patient/:patientId", h.ListByPatient)
	g.POST("", h.Create, auth.RequireFields("day", "time_of_day"))
	g.PUT("/:id", h.Update, auth.RequireFields("day", "time_of_day"))
	g.PUT("/:id/status", h.SetStatus, auth.RequireFields("status"))
	g.DELETE("/:id", h.Delete)
}

type appointmentRequest struct {
	PatientID     *uuid.UUID `json:"patient_id"`
	Day           string     `json:"day"`
	TimeOfDay     string     `json:"time_of_day"`
	Coverage      *string    `json:"coverage"`
	Status        string     `json:"status"`
	ArrivalTime   *string    `json:"arrival_time"`
	Detail        *string    `json:"detail"`
	FirstVisit    bool       `json:"first_visit"`
	VisitID       *uuid.UUID `json:"visit_id"`
	TempFirstName *string    `json:"temp_first_name"`
	TempLastName  *string    `json:"temp_last_name"`
}

func (b *appointmentRequest) toModel() (*Appointment, error) {
	a := &Appointment{
		PatientID:     b.PatientID,
		TimeOfDay:     b.TimeOfDay,
		Coverage:      b.Coverage,
		Status:        b.Status,
		ArrivalTime:   b.ArrivalTime,
		Detail:        b.Detail,
		FirstVisit:    b.FirstVisit,
		VisitID:       b.VisitID,
		TempFirstName: b.TempFirstName,
		TempLastName:  b.TempLastName,
	}
	if b.Day != "" {
		day, err := time.Parse("2006-01-02", b.Day)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid day, expected YYYY-MM-DD")
		}
		a.Day = day
	}
	return a, nil
}

func (h *Handler) List(c echo.Context) error {
	id := auth.IdentityFromContext(c.Request().Context())
	appts, err := h.svc.List(c.Request().Context(), id.AccountID)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) ListToday(c echo.Context) error {
	id := auth.IdentityFromContext(c.Request().Context())
	appts, err := h.svc.ListToday(c.Request().Context(), id.AccountID)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) Get(c echo.Context) error {
	aid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	a, err := h.svc.Get(c.Request().Context(), id.AccountID, aid)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListByDate(c echo.Context) error {
	day, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	appts, err := h.svc.ListByDate(c.Request().Context(), id.AccountID, day)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	pid, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	appts, err := h.svc.ListByPatient(c.Request().Context(), id.AccountID, pid)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) Create(c echo.Context) error {
	var body appointmentRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}
	a, err := body.toModel()
	if err != nil {
		return err
	}

	id := auth.IdentityFromContext(c.Request().Context())
	created, err := h.svc.Create(c.Request().Context(), id.AccountID, a)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	aid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body appointmentRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}
	a, err := body.toModel()
	if err != nil {
		return err
	}

	id := auth.IdentityFromContext(c.Request().Context())
	updated, err := h.svc.Update(c.Request().Context(), id.AccountID, aid, a)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) SetStatus(c echo.Context) error {
	aid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Status      string  `json:"status"`
		ArrivalTime *string `json:"arrival_time"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}

	id := auth.IdentityFromContext(c.Request().Context())
	updated, err := h.svc.SetStatus(c.Request().Context(), id.AccountID, aid, body.Status, body.ArrivalTime)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	aid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	id := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), id.AccountID, aid); err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "appointment deleted"})
}
