package handlers

import (
	"context"
	"net/http"
	"time"

	"garage_gateway/internal/models"
	"garage_gateway/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	authUser    *models.User
	authErr     error
	apiKeyUser  *models.User
	apiKeyErr   error
	token       string
	tokenErr    error
	parseUser   *models.User
	parseErr    error
	checkOK     bool
	role        string
	roleErr     error
	addErr      error
	removeErr   error
	listResp    map[string]string
	listErr     error
	changeErr   error

	lastAuthUsername   string
	lastAuthPassword   string
	lastAPIKey         string
	lastParseToken     string
	lastAddActor       *models.User
	lastAddUsername    string
	lastRemoveUsername string
	lastChangeTarget   string
	lastChangeOld      string
	lastChangeNew      string
	lastChangeAdmin    bool
	addCalls           int
	changeCalls        int
}

func (m *mockAuth) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	m.lastAuthUsername = username
	m.lastAuthPassword = password
	return m.authUser, m.authErr
}
func (m *mockAuth) AuthenticateAPIKey(ctx context.Context, key string) (*models.User, error) {
	m.lastAPIKey = key
	return m.apiKeyUser, m.apiKeyErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastAuthUsername = username
	m.lastAuthPassword = password
	return m.token, m.tokenErr
}
func (m *mockAuth) ParseToken(accessToken string) (*models.User, error) {
	m.lastParseToken = accessToken
	return m.parseUser, m.parseErr
}
func (m *mockAuth) CheckUser(ctx context.Context, username, password string) bool {
	return m.checkOK
}
func (m *mockAuth) GetRole(ctx context.Context, username string) (string, error) {
	return m.role, m.roleErr
}
func (m *mockAuth) AddUser(ctx context.Context, actor *models.User, username, password string) error {
	m.addCalls++
	m.lastAddActor = actor
	m.lastAddUsername = username
	return m.addErr
}
func (m *mockAuth) RemoveUser(ctx context.Context, actor *models.User, username string) error {
	m.lastRemoveUsername = username
	return m.removeErr
}
func (m *mockAuth) ListUsers(ctx context.Context, actor *models.User) (map[string]string, error) {
	return m.listResp, m.listErr
}
func (m *mockAuth) ChangePassword(ctx context.Context, actor *models.User, username, oldPassword, newPassword string, adminMode bool) error {
	m.changeCalls++
	m.lastChangeTarget = username
	m.lastChangeOld = oldPassword
	m.lastChangeNew = newPassword
	m.lastChangeAdmin = adminMode
	return m.changeErr
}

type mockSessions struct {
	adminExpiry time.Time
	adminOK     bool
	anyOK       bool

	lastLoginUser  string
	lastLoginAdmin string
	lastLogout     string
}

func (m *mockSessions) LoginUser(clientID string) { m.lastLoginUser = clientID }
func (m *mockSessions) LoginAdmin(clientID string) time.Time {
	m.lastLoginAdmin = clientID
	return m.adminExpiry
}
func (m *mockSessions) Logout(clientID string) { m.lastLogout = clientID }

func (m *mockSessions) IsAuthorizedAdmin(clientID string) bool { return m.adminOK }

func (m *mockSessions) IsAuthorizedAny(clientID string) bool { return m.anyOK }

type mockGateway struct {
	sendErr   error
	ingestErr error

	sendCalls   int
	lastValue   int
	ingestCalls int
	lastIngest  any
	lastLat     *float64
	lastLon     *float64
}

func (m *mockGateway) SendCommand(value int) error {
	m.sendCalls++
	m.lastValue = value
	return m.sendErr
}
func (m *mockGateway) IngestPosition(value any, lat, lon *float64) error {
	m.ingestCalls++
	m.lastIngest = value
	m.lastLat = lat
	m.lastLon = lon
	return m.ingestErr
}

type mockMonitoring struct {
	snap models.Snapshot
}

func (m *mockMonitoring) Snapshot() models.Snapshot { return m.snap }

type mockEventLog struct {
	resp  []models.Event
	lastN int
}

func (m *mockEventLog) Recent(n int) []models.Event {
	m.lastN = n
	return m.resp
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func bearerHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
