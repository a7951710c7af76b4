package visit

import (
	"context"
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

func newServer(t *testing.T) (*echo.Echo, *mockRepo, *session.MemoryStore) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler(zerolog.Nop())
	store := session.NewMemoryStore()
	e.Use(auth.SessionMiddleware(store))
	repo := newMockRepo()
	NewHandler(NewService(repo)).RegisterRoutes(e.Group(""))
	return e, repo, store
}

func seedSession(t *testing.T, store *session.MemoryStore, accountID uuid.UUID) string {
	t.Helper()
	token, err := session.NewToken()
	if err != nil {
		t.Fatal(err)
	}
	store.Save(context.Background(), token, session.Identity{
		AccountID: accountID,
		Email:     "doc@clinic.test",
		Role:      "doctor",
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

func TestVisitRoutes_RequireSession(t *testing.T) {
	e, _, _ := newServer(t)
	rec := do(e, http.MethodGet, "/visits", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestCreateVisitHandler(t *testing.T) {
	e, repo, store := newServer(t)
	acc := uuid.New()
	token := seedSession(t, store, acc)
	pid := repo.addPatient(acc)

	rec := do(e, http.MethodPost, "/visits", `{"reason":"checkup"}`, token)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "patient_id") {
		t.Errorf("missing patient_id must 400 naming it: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPost, "/visits",
		`{"patient_id":"`+pid.String()+`","visit_date":"2026-08-31","visit_time":"10:00","reason":"checkup"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "patient_first_name") {
		t.Error("created visit must carry the joined patient name")
	}

	rec = do(e, http.MethodPost, "/visits",
		`{"patient_id":"`+pid.String()+`","visit_date":"31/08/2026"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed date: expected 400, got %d", rec.Code)
	}
}

func TestVisitListHandlers(t *testing.T) {
	e, repo, store := newServer(t)
	acc := uuid.New()
	token := seedSession(t, store, acc)
	pid := repo.addPatient(acc)

	rec := do(e, http.MethodPost, "/visits",
		`{"patient_id":"`+pid.String()+`","visit_date":"2026-08-31","visit_time":"10:00"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/visits/by-patient/"+pid.String(), "", token)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) == "[]" {
		t.Errorf("by-patient listing failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/visits/by-date/2026-08-31", "", token)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) == "[]" {
		t.Errorf("by-date listing failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/visits/by-date/2026-01-01", "", token)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty day must be an empty array: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/visits/by-date/soon", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date: expected 400, got %d", rec.Code)
	}
}

func TestVisitUpdateAndDeleteHandlers(t *testing.T) {
	e, repo, store := newServer(t)
	acc := uuid.New()
	token := seedSession(t, store, acc)
	pid := repo.addPatient(acc)

	rec := do(e, http.MethodPost, "/visits", `{"patient_id":"`+pid.String()+`","reason":"checkup"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", rec.Code)
	}
	var id string
	for vid := range repo.visits {
		id = vid.String()
	}

	rec = do(e, http.MethodPut, "/visits/"+id, `{"reason":"follow-up"}`, token)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "follow-up") {
		t.Errorf("update failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodDelete, "/visits/"+id, "", token)
	if rec.Code != http.StatusOK {
		t.Errorf("delete failed: %d", rec.Code)
	}

	rec = do(e, http.MethodDelete, "/visits/"+id, "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("double delete: expected 404, got %d", rec.Code)
	}
}
