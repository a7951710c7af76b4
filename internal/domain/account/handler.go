package account

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

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/login", h.Login, auth.RequireFields("email", "password"))
	g.POST("/logout", h.Logout)
	g.GET("/session", h.Session)
	g.POST("/recover/request", h.RecoverRequest, auth.RequireFields("email"))
	g.POST("/recover/confirm", h.RecoverConfirm, auth.RequireFields("email", "code", "newPassword"))

	authed := g.Group("", auth.RequireSession())
	authed.GET("/profile", h.Profile)
	authed.PUT("/profile", h.UpdateProfile)
	authed.PUT("/password", h.ChangePassword, auth.RequireFields("currentPassword", "newPassword"))

	admin := g.Group("", auth.RequireSession(), auth.RequireRole(RoleAdmin))
	admin.POST("/register", h.Register, auth.RequireFields("email", "name", "password"))
	admin.GET("/users", h.ListUsers)
	admin.PUT("/users/:id/promote", h.Promote)
}

func (h *Handler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}

	acc, token, err := h.svc.Authenticate(c.Request().Context(), body.Email, body.Password, body.Remember)
	if err != nil {
		return httperr.ToHTTP(err)
	}

	auth.SetSessionCookie(c, token, body.Remember)
	return c.JSON(http.StatusOK, acc)
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.svc.Logout(c.Request().Context(), auth.TokenFromEcho(c)); err != nil {
		return httperr.ToHTTP(err)
	}
	auth.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "session closed"})
}

func (h *Handler) Session(c echo.Context) error {
	id := auth.IdentityFromContext(c.Request().Context())
	if id == nil {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"authenticated": true, "account": id})
}

func (h *Handler) Register(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}

	acc, err := h.svc.Register(c.Request().Context(), body.Email, body.Name, body.Password, body.Role)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, acc)
}

func (h *Handler) RecoverRequest(c echo.Context) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}

	if err := h.svc.IssueRecoveryCode(c.Request().Context(), body.Email); err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "recovery code issued"})
}

func (h *Handler) RecoverConfirm(c echo.Context) error {
	var body struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}

	if err := h.svc.ResetWithCode(c.Request().Context(), body.Email, body.Code, body.NewPassword); err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (h *Handler) Profile(c echo.Context) error {
	id := auth.IdentityFromContext(c.Request().Context())
	acc, err := h.svc.GetProfile(c.Request().Context(), id.AccountID)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, acc)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var body struct {
		Email *string `json:"email"`
		Name  *string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}

	id := auth.IdentityFromContext(c.Request().Context())
	acc, err := h.svc.UpdateProfile(c.Request().Context(), auth.TokenFromEcho(c), id.AccountID, body.Email, body.Name)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, acc)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}

	id := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.ChangePassword(c.Request().Context(), id.AccountID, body.CurrentPassword, body.NewPassword); err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (h *Handler) ListUsers(c echo.Context) error {
	accs, err := h.svc.ListAccounts(c.Request().Context())
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, accs)
}

func (h *Handler) Promote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	acc, err := h.svc.Promote(c.Request().Context(), id)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, acc)
}
