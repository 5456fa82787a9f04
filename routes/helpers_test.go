package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/Dosada05/team-hub/db"
	"github.com/Dosada05/team-hub/handlers"
	"github.com/Dosada05/team-hub/notify"
	"github.com/Dosada05/team-hub/realtime"
	"github.com/Dosada05/team-hub/repositories"
	"github.com/Dosada05/team-hub/routes"
	"github.com/Dosada05/team-hub/services"
	"github.com/Dosada05/team-hub/storage"
)

type inviteMailer struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *inviteMailer) SendAdminInvite(_ context.Context, to, token string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[to] = token
	return nil
}

func (m *inviteMailer) SendEventReminder(context.Context, []string, string, string, *string, time.Time) error {
	return nil
}

func (m *inviteMailer) token(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

type testAPI struct {
	server  *httptest.Server
	auth    services.AuthService
	mailer  *inviteMailer
	closeDB func()
}

func startAPI() *testAPI {
	dir, err := os.MkdirTemp("", "team-hub-api")
	Expect(err).To(BeNil())

	conn, err := db.Connect("sqlite://"+filepath.Join(dir, "api.db"), 5*time.Second)
	Expect(err).To(BeNil())
	Expect(db.Migrate(conn)).To(Succeed())

	log := zap.NewNop()
	mailer := &inviteMailer{tokens: map[string]string{}}
	hub := realtime.NewHub(log)
	events := notify.NewLogPublisher(log)
	uploader, err := storage.NewMemoryUploader("https://cdn.example.com")
	Expect(err).To(BeNil())

	txManager := repositories.NewTxManager(conn)
	userRepo := repositories.NewUserRepository(conn)
	teamRepo := repositories.NewTeamRepository(conn)
	memberRepo := repositories.NewTeamMemberRepository(conn)
	eventRepo := repositories.NewEventRepository(conn)
	attendanceRepo := repositories.NewAttendanceRepository(conn)
	paymentRepo := repositories.NewPaymentRepository(conn)
	chatRepo := repositories.NewChatRepository(conn)

	authService := services.NewAuthService(
		userRepo,
		repositories.NewAdminInviteRepository(conn),
		txManager,
		repositories.NewMemoryTokenDenylist(),
		services.NewTokenIssuer("api-test-secret", time.Hour),
		mailer,
		time.Hour,
		log,
	)
	chatService := services.NewChatService(teamRepo, memberRepo, chatRepo, hub, log)

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Admin:      handlers.NewAdminHandler(authService),
		Dashboard:  handlers.NewDashboardHandler(services.NewDashboardService(userRepo, teamRepo, memberRepo, eventRepo, paymentRepo, chatRepo)),
		Team:       handlers.NewTeamHandler(services.NewTeamService(teamRepo, memberRepo, txManager, uploader, events, log)),
		Event:      handlers.NewEventHandler(services.NewEventService(teamRepo, memberRepo, eventRepo, attendanceRepo, hub, events, log)),
		Attendance: handlers.NewAttendanceHandler(services.NewAttendanceService(teamRepo, memberRepo, eventRepo, attendanceRepo, hub, log)),
		Comment:    handlers.NewCommentHandler(services.NewCommentService(teamRepo, memberRepo, eventRepo, repositories.NewCommentRepository(conn), log)),
		Payment:    handlers.NewPaymentHandler(services.NewPaymentService(teamRepo, memberRepo, eventRepo, paymentRepo, log)),
		Chat:       handlers.NewChatHandler(chatService),
		WebSocket:  handlers.NewWebSocketHandler(chatService, []string{"*"}),
	}, authService, log, []string{"*"})

	return &testAPI{
		server: httptest.NewServer(router),
		auth:   authService,
		mailer: mailer,
		closeDB: func() {
			_ = conn.Close()
			_ = os.RemoveAll(dir)
		},
	}
}

func (a *testAPI) close() {
	a.server.Close()
	a.closeDB()
}

type response struct {
	Status int
	Body   map[string]interface{}
}

func (r response) object(key string) map[string]interface{} {
	v, ok := r.Body[key].(map[string]interface{})
	Expect(ok).To(BeTrue(), "response has no %q object: %v", key, r.Body)
	return v
}

func (r response) list(key string) []interface{} {
	v, ok := r.Body[key].([]interface{})
	Expect(ok).To(BeTrue(), "response has no %q list: %v", key, r.Body)
	return v
}

func (a *testAPI) do(method, path, token string, body interface{}) response {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		Expect(err).To(BeNil())
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	Expect(err).To(BeNil())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := a.server.Client().Do(req)
	Expect(err).To(BeNil())
	defer res.Body.Close()

	out := response{Status: res.StatusCode}
	raw, err := io.ReadAll(res.Body)
	Expect(err).To(BeNil())
	if len(bytes.TrimSpace(raw)) > 0 && raw[0] == '{' {
		Expect(json.Unmarshal(raw, &out.Body)).To(Succeed())
	}
	return out
}

type User struct {
	ID    string
	Email string
	Token string
}

func (a *testAPI) signUp(email string, adminInvite ...string) User {
	body := map[string]interface{}{"email": email, "password": "password123"}
	if len(adminInvite) > 0 {
		body["admin_invite"] = adminInvite[0]
	}
	res := a.do(http.MethodPost, "/auth/signup", "", body)
	Expect(res.Status).To(Equal(http.StatusCreated), "signup failed: %v", res.Body)

	return User{
		ID:    res.object("user")["id"].(string),
		Email: email,
		Token: res.Body["token"].(string),
	}
}

type Team struct {
	ID         string
	InviteCode string
}

func (a *testAPI) createTeam(owner User, name string) Team {
	res := a.do(http.MethodPost, "/teams", owner.Token, map[string]interface{}{"name": name, "sport": "football"})
	Expect(res.Status).To(Equal(http.StatusCreated), "create team failed: %v", res.Body)

	team := res.object("team")
	return Team{ID: team["id"].(string), InviteCode: team["invite_code"].(string)}
}

func (a *testAPI) join(user User, team Team) {
	res := a.do(http.MethodPost, "/teams/join", user.Token, map[string]string{"invite_code": team.InviteCode})
	Expect(res.Status).To(Equal(http.StatusOK), "join failed: %v", res.Body)
}

func (a *testAPI) createEvent(admin User, team Team, minPlayers int) string {
	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	res := a.do(http.MethodPost, "/teams/"+team.ID+"/events", admin.Token, map[string]interface{}{
		"title":       "Sunday match",
		"start_time":  start.Format(time.RFC3339),
		"end_time":    start.Add(2 * time.Hour).Format(time.RFC3339),
		"min_players": minPlayers,
	})
	Expect(res.Status).To(Equal(http.StatusCreated), "create event failed: %v", res.Body)
	return res.object("event")["id"].(string)
}

// uploadLogo отправляет файл с заявленным клиентом Content-Type.
func (a *testAPI) uploadLogo(token, teamID, declaredType string, content []byte) response {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="logo"; filename="logo"`)
	header.Set("Content-Type", declaredType)
	part, err := form.CreatePart(header)
	Expect(err).To(BeNil())
	_, err = part.Write(content)
	Expect(err).To(BeNil())
	Expect(form.Close()).To(Succeed())

	req, err := http.NewRequest(http.MethodPost, a.server.URL+"/teams/"+teamID+"/logo", &buf)
	Expect(err).To(BeNil())
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := a.server.Client().Do(req)
	Expect(err).To(BeNil())
	defer res.Body.Close()

	out := response{Status: res.StatusCode}
	Expect(json.NewDecoder(res.Body).Decode(&out.Body)).To(Succeed())
	return out
}
