package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendagov/internal/agenda"
	"agendagov/internal/auth"
	"agendagov/internal/handler"
	"agendagov/internal/middleware"
	"agendagov/internal/model"
	"agendagov/internal/store"
)

const secret = "test-secret"

type fixture struct {
	router *gin.Engine
	mem    *store.Memory
	ids    map[string]string // username -> id
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	hash, err := auth.HashPassword("senha123")
	require.NoError(t, err)

	f := &fixture{mem: mem, ids: map[string]string{}}
	ctx := context.Background()
	now := time.Now()
	for _, u := range []struct {
		username string
		role     model.Role
	}{
		{"admin", model.RoleAdmin},
		{"prefeito", model.RoleMayor},
		{"vice", model.RoleDeputy},
		{"viewer", model.RoleViewer},
	} {
		user := &model.User{
			ID:           uuid.New().String(),
			Username:     u.username,
			Name:         u.username,
			PasswordHash: hash,
			Role:         u.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if u.role == model.RoleViewer {
			user.CanViewCalendarsOf = []string{f.ids["prefeito"]}
		}
		require.NoError(t, mem.Users().Add(ctx, user))
		f.ids[u.username] = user.ID
	}

	svc := agenda.NewService(mem.Users(), mem.Appointments(), nil, agenda.FlagsPreserveOmitted)
	h := handler.New(svc, mem.RefreshTokens(), secret)
	f.router = handler.NewRouter(h, secret, middleware.NewRateLimiter(1000, 1000))
	return f
}

func (f *fixture) token(t *testing.T, username string) string {
	t.Helper()
	u, err := f.mem.Users().GetByUsername(context.Background(), username)
	require.NoError(t, err)
	tok, err := auth.MakeToken(u.ID, u.Role, secret)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seedAppointment(t *testing.T, assignedTo string, day time.Time, hhmm string, shared, completed bool) string {
	t.Helper()
	a := &model.Appointment{
		ID:          uuid.New().String(),
		Title:       fmt.Sprintf("appt-%s", hhmm),
		Date:        model.Day(day),
		Time:        hhmm,
		AssignedTo:  assignedTo,
		IsShared:    shared,
		IsCompleted: completed,
		CreatedAt:   time.Now(),
		CreatedBy:   f.ids["admin"],
	}
	require.NoError(t, f.mem.Appointments().Add(context.Background(), a))
	return a.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// ----- auth -----

func TestLogin(t *testing.T) {
	f := setup(t)

	rec := f.do(t, "POST", "/auth/login", "", gin.H{"username": "prefeito", "password": "senha123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "prefeito", user["username"])
	assert.Nil(t, user["passwordHash"], "hash must not leak")

	var hasRefresh bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" && c.HttpOnly {
			hasRefresh = true
		}
	}
	assert.True(t, hasRefresh, "missing httponly refresh_token cookie")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		body gin.H
		code int
	}{
		{"wrong password", gin.H{"username": "prefeito", "password": "wrong"}, http.StatusUnauthorized},
		{"unknown user", gin.H{"username": "nobody", "password": "senha123"}, http.StatusUnauthorized},
		{"missing fields", gin.H{"username": "prefeito"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, "POST", "/auth/login", "", tt.body)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRefreshRotation(t *testing.T) {
	f := setup(t)

	login := f.do(t, "POST", "/auth/login", "", gin.H{"username": "admin", "password": "senha123"})
	require.Equal(t, http.StatusOK, login.Code)

	var refresh *http.Cookie
	for _, c := range login.Result().Cookies() {
		if c.Name == "refresh_token" {
			refresh = c
		}
	}
	require.NotNil(t, refresh)

	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	req.AddCookie(refresh)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode(t, rec)["token"])

	// the old token was rotated out; replaying it fails
	req = httptest.NewRequest("POST", "/auth/refresh", nil)
	req.AddCookie(refresh)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	f := setup(t)

	rec := f.do(t, "GET", "/api/v1/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, "GET", "/api/v1/appointments", "garbage.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ----- appointments -----

func TestCreateAppointment(t *testing.T) {
	f := setup(t)
	today := time.Now().Format("2006-01-02")

	rec := f.do(t, "POST", "/api/v1/appointments", f.token(t, "prefeito"), gin.H{
		"title": "Audiência pública", "date": today, "time": "14:30", "location": "Câmara",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	appt := decode(t, rec)["appointment"].(map[string]any)
	assert.Equal(t, "Audiência pública", appt["title"])
	assert.Equal(t, today, appt["date"])
	assert.Equal(t, f.ids["prefeito"], appt["assignedTo"])
	assert.Equal(t, f.ids["prefeito"], appt["createdBy"])
	assert.Equal(t, false, appt["isCompleted"])
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := setup(t)
	tok := f.token(t, "prefeito")
	today := time.Now().Format("2006-01-02")

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing title", gin.H{"date": today, "time": "10:00"}},
		{"missing date", gin.H{"title": "x", "time": "10:00"}},
		{"bad date", gin.H{"title": "x", "date": "10/05/2025", "time": "10:00"}},
		{"bad time", gin.H{"title": "x", "date": today, "time": "25:99"}},
		{"time without padding", gin.H{"title": "x", "date": today, "time": "9:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, "POST", "/api/v1/appointments", tok, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestExecutiveCannotBookForOthers(t *testing.T) {
	f := setup(t)
	today := time.Now().Format("2006-01-02")

	// assignedTo in the body is ignored for non-admins
	rec := f.do(t, "POST", "/api/v1/appointments", f.token(t, "vice"), gin.H{
		"title": "x", "date": today, "time": "10:00", "assignedTo": f.ids["prefeito"],
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	appt := decode(t, rec)["appointment"].(map[string]any)
	assert.Equal(t, f.ids["vice"], appt["assignedTo"])
}

func TestAdminAssignsAppointments(t *testing.T) {
	f := setup(t)
	today := time.Now().Format("2006-01-02")
	tok := f.token(t, "admin")

	rec := f.do(t, "POST", "/api/v1/appointments", tok, gin.H{
		"title": "x", "date": today, "time": "10:00", "assignedTo": f.ids["prefeito"],
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	appt := decode(t, rec)["appointment"].(map[string]any)
	assert.Equal(t, f.ids["prefeito"], appt["assignedTo"])

	rec = f.do(t, "POST", "/api/v1/appointments", tok, gin.H{
		"title": "x", "date": today, "time": "10:00", "assignedTo": "ghost",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViewerIsReadOnly(t *testing.T) {
	f := setup(t)
	tok := f.token(t, "viewer")
	today := time.Now().Format("2006-01-02")
	id := f.seedAppointment(t, f.ids["prefeito"], time.Now(), "10:00", false, false)

	rec := f.do(t, "POST", "/api/v1/appointments", tok, gin.H{"title": "x", "date": today, "time": "10:00"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, "PUT", "/api/v1/appointments/"+id, tok, gin.H{"title": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, "DELETE", "/api/v1/appointments/"+id, tok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, "GET", "/api/v1/appointments?view=day&date="+today, tok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListAppointmentsAppliesVisibilityAndOrder(t *testing.T) {
	f := setup(t)
	now := time.Now()
	today := now.Format("2006-01-02")

	f.seedAppointment(t, f.ids["prefeito"], now, "14:00", false, false)
	f.seedAppointment(t, f.ids["prefeito"], now, "08:00", false, true) // completed sorts last
	f.seedAppointment(t, f.ids["vice"], now, "09:00", true, false)     // shared, visible
	f.seedAppointment(t, f.ids["vice"], now, "10:00", false, false)    // private, hidden

	rec := f.do(t, "GET", "/api/v1/appointments?view=day&date="+today, f.token(t, "prefeito"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	list := decode(t, rec)["appointments"].([]any)
	require.Len(t, list, 3)
	times := make([]string, len(list))
	for i, v := range list {
		times[i] = v.(map[string]any)["time"].(string)
	}
	assert.Equal(t, []string{"09:00", "14:00", "08:00"}, times)
}

func TestListAppointmentsRejectsBadView(t *testing.T) {
	f := setup(t)
	rec := f.do(t, "GET", "/api/v1/appointments?view=fortnight", f.token(t, "admin"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAppointment(t *testing.T) {
	f := setup(t)
	id := f.seedAppointment(t, f.ids["prefeito"], time.Now(), "10:00", true, false)

	rec := f.do(t, "PUT", "/api/v1/appointments/"+id, f.token(t, "prefeito"), gin.H{"title": "Remarcada"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	appt := decode(t, rec)["appointment"].(map[string]any)
	assert.Equal(t, "Remarcada", appt["title"])
	assert.Equal(t, true, appt["isShared"], "omitted flag preserved")
	assert.Equal(t, f.ids["prefeito"], appt["updatedBy"])
	assert.NotNil(t, appt["updatedAt"])
}

func TestUpdateOwnershipHidesOthersAppointments(t *testing.T) {
	f := setup(t)
	id := f.seedAppointment(t, f.ids["prefeito"], time.Now(), "10:00", false, false)

	// the deputy cannot touch the mayor's entry — 404, not 403
	rec := f.do(t, "PUT", "/api/v1/appointments/"+id, f.token(t, "vice"), gin.H{"title": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, "DELETE", "/api/v1/appointments/"+id, f.token(t, "vice"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the admin can
	rec = f.do(t, "PUT", "/api/v1/appointments/"+id, f.token(t, "admin"), gin.H{"title": "x"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateMissingAppointment(t *testing.T) {
	f := setup(t)
	rec := f.do(t, "PUT", "/api/v1/appointments/"+uuid.New().String(), f.token(t, "admin"), gin.H{"title": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteMissingAppointmentIsNoop(t *testing.T) {
	f := setup(t)
	rec := f.do(t, "DELETE", "/api/v1/appointments/"+uuid.New().String(), f.token(t, "admin"), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// ----- dashboard -----

func TestDashboard(t *testing.T) {
	f := setup(t)
	now := time.Now()

	f.seedAppointment(t, f.ids["prefeito"], now, "09:00", false, false)
	f.seedAppointment(t, f.ids["prefeito"], now.AddDate(0, 0, 1), "10:00", false, false)
	f.seedAppointment(t, f.ids["prefeito"], now.AddDate(0, 0, -10), "11:00", false, false)
	tok := f.token(t, "prefeito")

	rec := f.do(t, "GET", "/api/v1/dashboard/weekly-count", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	count := decode(t, rec)["count"].(float64)
	assert.GreaterOrEqual(t, count, float64(1), "today is always inside the current week")

	rec = f.do(t, "GET", "/api/v1/dashboard/upcoming?limit=1", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["appointments"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "09:00", list[0].(map[string]any)["time"])
}

// ----- user management -----

func TestUserEndpointsAdminOnly(t *testing.T) {
	f := setup(t)

	for _, username := range []string{"prefeito", "vice", "viewer"} {
		rec := f.do(t, "GET", "/api/v1/users", f.token(t, username), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, username)
	}

	rec := f.do(t, "GET", "/api/v1/users", f.token(t, "admin"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["users"].([]any), 4)
}

func TestCreateUser(t *testing.T) {
	f := setup(t)
	tok := f.token(t, "admin")

	rec := f.do(t, "POST", "/api/v1/users", tok, gin.H{
		"username": "aide", "name": "Assessora", "password": "senha123",
		"role": "viewer", "canViewCalendarsOf": []string{f.ids["prefeito"]},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	u := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "viewer", u["role"])

	rec = f.do(t, "POST", "/api/v1/users", tok, gin.H{
		"username": "x", "name": "X", "password": "senha123", "role": "secretary",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, "POST", "/api/v1/users", tok, gin.H{
		"username": "x", "name": "X", "password": "123", "role": "viewer",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "short password rejected")
}

func TestDeleteUserGuards(t *testing.T) {
	f := setup(t)
	tok := f.token(t, "admin")

	// the only admin cannot be deleted, nor can the actor delete themselves
	rec := f.do(t, "DELETE", "/api/v1/users/"+f.ids["admin"], tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "self delete")

	rec = f.do(t, "DELETE", "/api/v1/users/"+f.ids["viewer"], tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, "DELETE", "/api/v1/users/"+uuid.New().String(), tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteLastAdminRefused(t *testing.T) {
	f := setup(t)

	// a second admin tries to remove the first — allowed; removing the
	// final one is not
	second := &model.User{
		ID: uuid.New().String(), Username: "admin2", Name: "admin2",
		PasswordHash: "x", Role: model.RoleAdmin,
	}
	require.NoError(t, f.mem.Users().Add(context.Background(), second))
	tok, err := auth.MakeToken(second.ID, model.RoleAdmin, secret)
	require.NoError(t, err)

	rec := f.do(t, "DELETE", "/api/v1/users/"+f.ids["admin"], tok, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// second is now the last admin; the original admin's token still
	// names a deleted user, so act as second against itself
	rec = f.do(t, "DELETE", "/api/v1/users/"+second.ID, tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "self delete still refused")
}

// ----- plumbing -----

func TestHealthAndMetrics(t *testing.T) {
	f := setup(t)

	rec := f.do(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, "GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
