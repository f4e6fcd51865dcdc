package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civic-portal/internal/ai"
	"civic-portal/internal/config"
	"civic-portal/internal/domain"
	"civic-portal/internal/handler"
	"civic-portal/internal/middleware"
	"civic-portal/internal/repository"
	"civic-portal/internal/service"
	"civic-portal/internal/token"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testApp struct {
	server *httptest.Server
	issuer *token.Issuer
	users  repository.UsersRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger := zap.NewNop()
	users := repository.NewMemoryUsersRepo()
	requests := repository.NewMemoryRequestsRepo(users)
	sensors := repository.NewMemorySensorsRepo()
	chat := repository.NewMemoryChatRepo()

	issuer := token.NewIssuer("test-secret", time.Hour)
	verifier := token.NewVerifier("test-secret")

	authSvc := service.NewAuthService(users, issuer, logger)
	requestSvc := service.NewRequestService(requests, logger)
	analyticsSvc := service.NewAnalyticsService(requests)
	telemetry := service.NewTelemetryPublisher(rdb, sensors, logger)

	hub := handler.NewHub(logger)
	uploadDir := t.TempDir()

	cfg := config.Config{
		UploadDir:      uploadDir,
		SensorInterval: 10 * time.Millisecond,
		SensorCount:    1,
	}

	r := chi.NewRouter()
	SetupRoutes(r, Handlers{
		Auth:          handler.NewAuthHandler(authSvc, nil, logger),
		Requests:      handler.NewRequestHandler(requestSvc, uploadDir, logger),
		Chat:          handler.NewChatHandler(hub, chat, users, rdb, logger),
		IoT:           handler.NewIoTHandler(sensors, telemetry, cfg, logger),
		Announcements: handler.NewAnnouncementHandler(repository.NewMemoryAnnouncementsRepo(), uploadDir, logger),
		Photos:        handler.NewPhotoHandler(repository.NewMemoryPhotosRepo(), uploadDir, logger),
		AI:            handler.NewAIHandler(ai.NewClient("http://127.0.0.1:1", "", "test"), logger),
		Analytics:     handler.NewAnalyticsHandler(analyticsSvc),
	}, middleware.NewAuth(verifier, nil, authSvc, logger), rdb, "*", uploadDir)
	t.Cleanup(telemetry.Stop)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testApp{server: srv, issuer: issuer, users: users}
}

func (a *testApp) do(t *testing.T, method, path, tok string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var envelope struct {
		Status string                     `json:"status"`
		Data   map[string]json.RawMessage `json:"data"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	return resp, envelope.Data
}

func (a *testApp) registerCitizen(t *testing.T, email string) string {
	t.Helper()
	resp, data := a.do(t, "POST", "/api/auth/register", "", map[string]string{
		"name": "Asha", "email": email, "password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tok string
	require.NoError(t, json.Unmarshal(data["token"], &tok))
	return tok
}

func (a *testApp) staffToken(t *testing.T) string {
	t.Helper()
	staff := &domain.User{
		Name: "Officer", Email: "officer@city.gov",
		Role: domain.RoleStaff, Department: "general",
	}
	require.NoError(t, a.users.Create(context.Background(), staff))

	tok, err := a.issuer.Issue(staff.ID, "staff", "general")
	require.NoError(t, err)
	return tok
}

func TestComplaintLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	citizen := app.registerCitizen(t, "asha@example.com")

	resp, data := app.do(t, "POST", "/api/complaints/", citizen, map[string]interface{}{
		"title": "Pothole", "category": "roads", "description": "near the market",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.Request
	require.NoError(t, json.Unmarshal(data["complaint"], &created))
	assert.Equal(t, domain.StatusPending, created.Status)

	// Citizens cannot change status.
	resp, _ = app.do(t, "PATCH", "/api/complaints/"+created.ID+"/status", citizen,
		map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	staff := app.staffToken(t)
	resp, data = app.do(t, "PATCH", "/api/complaints/"+created.ID+"/status", staff,
		map[string]string{"status": "IN-PROGRESS", "remark": "crew dispatched"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated domain.Request
	require.NoError(t, json.Unmarshal(data["complaint"], &updated))
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	require.NotNil(t, updated.Remark)
	assert.Equal(t, "crew dispatched", *updated.Remark)
}

func TestGetComplaintByIDRoundTrip(t *testing.T) {
	app := newTestApp(t)
	citizen := app.registerCitizen(t, "asha@example.com")

	resp, data := app.do(t, "POST", "/api/complaints/", citizen, map[string]interface{}{
		"title": "Pothole on Main St", "category": "road", "description": "near the market",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created domain.Request
	require.NoError(t, json.Unmarshal(data["complaint"], &created))

	resp, data = app.do(t, "GET", "/api/complaints/"+created.ID, citizen, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched domain.Request
	require.NoError(t, json.Unmarshal(data["complaint"], &fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Pothole on Main St", fetched.Title)
	assert.Equal(t, "road", fetched.Category)
	assert.Equal(t, "near the market", fetched.Description)
	assert.Equal(t, domain.StatusPending, fetched.Status)
	require.NotNil(t, fetched.Owner)
	assert.Equal(t, "asha@example.com", fetched.Owner.Email)

	resp, _ = app.do(t, "GET", "/api/complaints/does-not-exist", citizen, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestComplaintListScoping(t *testing.T) {
	app := newTestApp(t)
	alice := app.registerCitizen(t, "alice@example.com")
	bob := app.registerCitizen(t, "bob@example.com")

	for _, tok := range []string{alice, alice, bob} {
		resp, _ := app.do(t, "POST", "/api/complaints/", tok, map[string]interface{}{
			"title": "Pothole", "category": "roads", "description": "near the market",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, data := app.do(t, "GET", "/api/complaints/", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var total int
	require.NoError(t, json.Unmarshal(data["total"], &total))
	assert.Equal(t, 2, total)

	resp, data = app.do(t, "GET", "/api/complaints/", app.staffToken(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data["total"], &total))
	assert.Equal(t, 3, total)
}

func TestListByUserIsOwnerOrStaffOnly(t *testing.T) {
	app := newTestApp(t)
	alice := app.registerCitizen(t, "alice@example.com")
	bob := app.registerCitizen(t, "bob@example.com")

	resp, data := app.do(t, "POST", "/api/complaints/", alice, map[string]interface{}{
		"title": "Pothole", "category": "roads", "description": "near the market",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created domain.Request
	require.NoError(t, json.Unmarshal(data["complaint"], &created))

	resp, data = app.do(t, "GET", "/api/complaints/user/"+created.UserID, alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []domain.Request
	require.NoError(t, json.Unmarshal(data["complaints"], &items))
	assert.Len(t, items, 1)

	resp, _ = app.do(t, "GET", "/api/complaints/user/"+created.UserID, bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = app.do(t, "GET", "/api/complaints/user/"+created.UserID, app.staffToken(t), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServiceRequestValidation(t *testing.T) {
	app := newTestApp(t)
	citizen := app.registerCitizen(t, "asha@example.com")

	resp, _ := app.do(t, "POST", "/api/services/", citizen, map[string]interface{}{
		"category": "water", "description": "new connection",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "address is required")

	resp, data := app.do(t, "POST", "/api/services/", citizen, map[string]interface{}{
		"category": "water", "description": "new connection", "address": "14 Lake Road",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.Request
	require.NoError(t, json.Unmarshal(data["serviceRequest"], &created))
	assert.Equal(t, "14 Lake Road", created.Location.Address)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/complaints/", "/api/services/", "/api/iot/sensors"} {
		resp, _ := app.do(t, "GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestAnalyticsAreStaffOnly(t *testing.T) {
	app := newTestApp(t)
	citizen := app.registerCitizen(t, "asha@example.com")

	resp, _ := app.do(t, "GET", "/api/analytics/summary", citizen, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = app.do(t, "GET", "/api/analytics/summary", app.staffToken(t), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSimulatorEndpointsAreStaffOnly(t *testing.T) {
	app := newTestApp(t)
	citizen := app.registerCitizen(t, "asha@example.com")
	staff := app.staffToken(t)

	resp, _ := app.do(t, "POST", "/api/iot/simulator/start", citizen, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = app.do(t, "POST", "/api/iot/simulator/start", staff, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := app.do(t, "GET", "/api/iot/simulator", citizen, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var running bool
	require.NoError(t, json.Unmarshal(data["running"], &running))
	assert.True(t, running)

	resp, _ = app.do(t, "POST", "/api/iot/simulator/stop", staff, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
