package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinica/clinica/internal/platform/auth"
	"github.com/clinica/clinica/internal/platform/httperr"
	"github.com/clinica/clinica/internal/platform/session"
)

func newServer(t *testing.T) (*echo.Echo, *session.MemoryStore) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler(zerolog.Nop())
	store := session.NewMemoryStore()
	e.Use(auth.SessionMiddleware(store))
	NewHandler(NewService(newMockRepo())).RegisterRoutes(e.Group(""))
	return e, store
}

func seedSession(t *testing.T, store *session.MemoryStore, role string) string {
	t.Helper()
	token, err := session.NewToken()
	if err != nil {
		t.Fatal(err)
	}
	store.Save(context.Background(), token, session.Identity{
		AccountID: uuid.New(),
		Email:     role + "@clinic.test",
		Role:      role,
	}, 0)
	return token
}

func do(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPatientRoutes_RequireSession(t *testing.T) {
	e, _ := newServer(t)
	rec := do(e, http.MethodGet, "/patients", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestCreatePatientHandler(t *testing.T) {
	e, store := newServer(t)
	token := seedSession(t, store, "doctor")

	rec := do(e, http.MethodPost, "/patients", `{"first_name":"Ana","last_name":"Gomez"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id"`) {
		t.Error("created response must carry the new id")
	}
}

func TestCreatePatientHandler_NamesAllMissingFields(t *testing.T) {
	e, store := newServer(t)
	token := seedSession(t, store, "doctor")

	rec := do(e, http.MethodPost, "/patients", `{"phone":"555"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "first_name") || !strings.Contains(body, "last_name") {
		t.Errorf("400 must name every missing field, got %s", body)
	}
}

func TestGetPatientHandler(t *testing.T) {
	e, store := newServer(t)
	token := seedSession(t, store, "doctor")

	rec := do(e, http.MethodGet, "/patients/not-a-uuid", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/patients/"+uuid.NewString(), "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", rec.Code)
	}
}

func TestPatientCRUDFlow(t *testing.T) {
	e, store := newServer(t)
	token := seedSession(t, store, "doctor")

	rec := do(e, http.MethodPost, "/patients", `{"first_name":"Ana","last_name":"Gomez","national_id":"30111222"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	var created Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	rec = do(e, http.MethodGet, "/patients/by-national-id/30111222", "", token)
	if rec.Code != http.StatusOK {
		t.Errorf("lookup by national id failed: %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/patients?search=gom", "", token)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Gomez") {
		t.Errorf("search failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPut, "/patients/"+created.ID.String(), `{"first_name":"Anna","last_name":"Gomez"}`, token)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Anna") {
		t.Errorf("update failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodDelete, "/patients/"+created.ID.String(), "", token)
	if rec.Code != http.StatusOK {
		t.Errorf("delete failed: %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/patients/"+created.ID.String(), "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleted patient must 404, got %d", rec.Code)
	}
}

func TestListPatients_EmptyIsArrayNotNull(t *testing.T) {
	e, store := newServer(t)
	token := seedSession(t, store, "doctor")

	rec := do(e, http.MethodGet, "/patients", "", token)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}
