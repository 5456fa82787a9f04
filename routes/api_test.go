package routes_test

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/Dosada05/team-hub/realtime"
)

var _ = Describe("API", func() {
	var api *testAPI

	BeforeEach(func() {
		api = startAPI()
	})

	AfterEach(func() {
		api.close()
	})

	Specify("health check", func() {
		res, err := api.server.Client().Get(api.server.URL + "/healthz")
		Expect(err).To(BeNil())
		defer res.Body.Close()
		Expect(res.StatusCode).To(Equal(http.StatusOK))
	})

	Describe("Auth", func() {
		Specify("happy path", func() {
			user := api.signUp("Player@Example.com ")
			Expect(user.Token).NotTo(BeEmpty())

			res := api.do(http.MethodGet, "/auth/me", user.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.object("user")["email"]).To(Equal("player@example.com"))

			res = api.do(http.MethodPost, "/auth/signin", "", map[string]string{
				"email":    "player@example.com",
				"password": "password123",
			})
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body["token"]).NotTo(BeEmpty())
		})
		Specify("sad path - email taken", func() {
			api.signUp("dup@example.com")
			res := api.do(http.MethodPost, "/auth/signup", "", map[string]string{
				"email":    "DUP@example.com",
				"password": "password123",
			})
			Expect(res.Status).To(Equal(http.StatusConflict))
		})
		Specify("sad path - wrong password", func() {
			api.signUp("player@example.com")
			res := api.do(http.MethodPost, "/auth/signin", "", map[string]string{
				"email":    "player@example.com",
				"password": "wrong-password",
			})
			Expect(res.Status).To(Equal(http.StatusUnauthorized))
		})
		Specify("sad path - no token", func() {
			res := api.do(http.MethodGet, "/auth/me", "", nil)
			Expect(res.Status).To(Equal(http.StatusUnauthorized))
			Expect(res.Body["error"]).NotTo(BeEmpty())
		})
		Specify("sign out revokes the token", func() {
			user := api.signUp("player@example.com")

			res := api.do(http.MethodPost, "/auth/signout", user.Token, nil)
			Expect(res.Status).To(Equal(http.StatusNoContent))

			res = api.do(http.MethodGet, "/auth/me", user.Token, nil)
			Expect(res.Status).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("Admin", func() {
		var admin User
		var player User

		BeforeEach(func() {
			result, err := api.auth.CreateAdminInvite(context.Background(), nil, "root@example.com")
			Expect(err).To(BeNil())
			admin = api.signUp("root@example.com", result.Token)
			player = api.signUp("player@example.com")
		})

		Specify("admin sees platform stats", func() {
			api.createTeam(player, "Hawks")

			res := api.do(http.MethodGet, "/admin/dashboard", admin.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body["users_total"]).To(BeNumerically("==", 2))
			Expect(res.Body["teams_total"]).To(BeNumerically("==", 1))
		})
		Specify("admin invites another admin", func() {
			res := api.do(http.MethodPost, "/admin/invites", admin.Token, map[string]string{"email": "second@example.com"})
			Expect(res.Status).To(Equal(http.StatusCreated))

			token := api.mailer.token("second@example.com")
			Expect(token).NotTo(BeEmpty())

			second := api.do(http.MethodPost, "/auth/signup", "", map[string]interface{}{
				"email":        "second@example.com",
				"password":     "password123",
				"admin_invite": token,
			})
			Expect(second.Status).To(Equal(http.StatusCreated))
			Expect(second.Body["is_admin"]).To(BeTrue())
		})
		Specify("sad path - players are not admins", func() {
			res := api.do(http.MethodGet, "/admin/dashboard", player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusForbidden))

			res = api.do(http.MethodPost, "/admin/invites", player.Token, map[string]string{"email": "x@example.com"})
			Expect(res.Status).To(Equal(http.StatusForbidden))
		})
	})

	Describe("Teams", func() {
		var owner User
		var player User
		var outsider User
		var team Team

		BeforeEach(func() {
			owner = api.signUp("owner@example.com")
			player = api.signUp("player@example.com")
			outsider = api.signUp("outsider@example.com")
			team = api.createTeam(owner, "Hawks")
		})

		Specify("join by invite code", func() {
			Expect(team.InviteCode).To(HavePrefix("HAWKS-"))
			api.join(player, team)

			res := api.do(http.MethodGet, "/teams/"+team.ID+"/members", player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.list("members")).To(HaveLen(2))

			res = api.do(http.MethodGet, "/teams", player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.list("teams")).To(HaveLen(1))
		})
		Specify("logo type comes from the file content", func() {
			png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
			res := api.uploadLogo(owner.Token, team.ID, "text/plain", png)
			Expect(res.Status).To(Equal(http.StatusOK), "upload failed: %v", res.Body)
			Expect(res.object("team")["logo_url"]).To(HaveSuffix(".png"))

			res = api.uploadLogo(owner.Token, team.ID, "image/png", []byte("<script>alert(1)</script>"))
			Expect(res.Status).To(Equal(http.StatusUnprocessableEntity))
		})
		Specify("sad path - unknown code", func() {
			res := api.do(http.MethodPost, "/teams/join", player.Token, map[string]string{"invite_code": "NOPE-000000"})
			Expect(res.Status).To(Equal(http.StatusNotFound))
		})
		Specify("sad path - already a member", func() {
			api.join(player, team)
			res := api.do(http.MethodPost, "/teams/join", player.Token, map[string]string{"invite_code": team.InviteCode})
			Expect(res.Status).To(Equal(http.StatusConflict))
		})
		Specify("sad path - outsiders cannot look inside", func() {
			res := api.do(http.MethodGet, "/teams/"+team.ID, outsider.Token, nil)
			Expect(res.Status).To(Equal(http.StatusForbidden))

			res = api.do(http.MethodGet, "/teams/"+team.ID+"/chat", outsider.Token, nil)
			Expect(res.Status).To(Equal(http.StatusForbidden))
		})
		Specify("sad path - malformed team id", func() {
			res := api.do(http.MethodGet, "/teams/not-a-uuid", owner.Token, nil)
			Expect(res.Status).To(Equal(http.StatusBadRequest))
		})
		Specify("regenerated code replaces the old one", func() {
			res := api.do(http.MethodPost, "/teams/"+team.ID+"/invite-code", owner.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			newCode := res.object("team")["invite_code"].(string)
			Expect(newCode).NotTo(Equal(team.InviteCode))

			res = api.do(http.MethodPost, "/teams/join", player.Token, map[string]string{"invite_code": team.InviteCode})
			Expect(res.Status).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Events", func() {
		var owner User
		var player User
		var team Team
		var eventID string

		BeforeEach(func() {
			owner = api.signUp("owner@example.com")
			player = api.signUp("player@example.com")
			team = api.createTeam(owner, "Hawks")
			api.join(player, team)
			eventID = api.createEvent(owner, team, 2)
		})

		Specify("vote, confirm and filter", func() {
			res := api.do(http.MethodPut, "/events/"+eventID+"/attendance", player.Token, map[string]string{"status": "not_attending"})
			Expect(res.Status).To(Equal(http.StatusOK))
			res = api.do(http.MethodPut, "/events/"+eventID+"/attendance", player.Token, map[string]string{"status": "attending"})
			Expect(res.Status).To(Equal(http.StatusOK))
			res = api.do(http.MethodPut, "/events/"+eventID+"/attendance", owner.Token, map[string]string{"status": "attending"})
			Expect(res.Status).To(Equal(http.StatusOK))

			res = api.do(http.MethodGet, "/events/"+eventID, player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body["attending_count"]).To(BeNumerically("==", 2))
			Expect(res.Body["quorum_reached"]).To(BeTrue())
			Expect(res.Body["my_status"]).To(Equal("attending"))

			res = api.do(http.MethodGet, "/teams/"+team.ID+"/events?confirmed=true", player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.list("events")).To(BeEmpty())

			res = api.do(http.MethodPost, "/events/"+eventID+"/confirm", owner.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.object("event")["is_confirmed"]).To(BeTrue())

			res = api.do(http.MethodGet, "/teams/"+team.ID+"/events?confirmed=true&upcoming=true", player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.list("events")).To(HaveLen(1))
		})
		Specify("sad path - players cannot manage events", func() {
			res := api.do(http.MethodPost, "/events/"+eventID+"/confirm", player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusForbidden))

			res = api.do(http.MethodDelete, "/events/"+eventID, player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusForbidden))
		})
		Specify("sad path - invalid input", func() {
			res := api.do(http.MethodPut, "/events/"+eventID+"/attendance", player.Token, map[string]string{"status": "maybe"})
			Expect(res.Status).To(Equal(http.StatusUnprocessableEntity))

			res = api.do(http.MethodGet, "/teams/"+team.ID+"/events?confirmed=sometimes", player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusBadRequest))

			res = api.do(http.MethodPatch, "/events/"+eventID, owner.Token, map[string]interface{}{"min_players": 0})
			Expect(res.Status).To(Equal(http.StatusUnprocessableEntity))
		})
		Specify("comments with ratings", func() {
			res := api.do(http.MethodPost, "/events/"+eventID+"/comments", player.Token, map[string]interface{}{"comment": "Great game", "rating": 5})
			Expect(res.Status).To(Equal(http.StatusCreated))
			res = api.do(http.MethodPost, "/events/"+eventID+"/comments", owner.Token, map[string]interface{}{"comment": "Decent", "rating": 4})
			Expect(res.Status).To(Equal(http.StatusCreated))
			res = api.do(http.MethodPost, "/events/"+eventID+"/comments", owner.Token, map[string]interface{}{"comment": "Bad", "rating": 6})
			Expect(res.Status).To(Equal(http.StatusUnprocessableEntity))

			res = api.do(http.MethodGet, "/events/"+eventID+"/comments", player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.list("comments")).To(HaveLen(2))
			Expect(res.Body["average_rating"]).To(BeNumerically("~", 4.5))
		})
		Specify("payment ledger", func() {
			res := api.do(http.MethodPost, "/events/"+eventID+"/payments", player.Token, map[string]int{"amount_cents": 1500})
			Expect(res.Status).To(Equal(http.StatusCreated))
			paymentID := res.object("payment")["id"].(string)

			res = api.do(http.MethodPost, "/events/"+eventID+"/payments", player.Token, map[string]int{"amount_cents": 1500})
			Expect(res.Status).To(Equal(http.StatusConflict))

			res = api.do(http.MethodGet, "/payments/mine", player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.list("payments")).To(HaveLen(1))

			res = api.do(http.MethodPatch, "/payments/"+paymentID, player.Token, map[string]string{"status": "paid"})
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.object("payment")["status"]).To(Equal("paid"))

			res = api.do(http.MethodPatch, "/payments/"+paymentID, player.Token, map[string]string{"status": "refunded"})
			Expect(res.Status).To(Equal(http.StatusForbidden))

			res = api.do(http.MethodPatch, "/payments/"+paymentID, owner.Token, map[string]string{"status": "refunded"})
			Expect(res.Status).To(Equal(http.StatusOK))

			res = api.do(http.MethodPatch, "/payments/"+paymentID, owner.Token, map[string]string{"status": "pending"})
			Expect(res.Status).To(Equal(http.StatusUnprocessableEntity))

			res = api.do(http.MethodGet, "/events/"+eventID+"/payments", owner.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.list("payments")).To(HaveLen(1))

			res = api.do(http.MethodGet, "/payments/mine", player.Token, nil)
			Expect(res.list("payments")).To(BeEmpty())
		})
		Specify("player dashboard", func() {
			res := api.do(http.MethodPost, "/events/"+eventID+"/confirm", owner.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))

			res = api.do(http.MethodGet, "/dashboard", player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			Expect(res.Body["teams_count"]).To(BeNumerically("==", 1))
			Expect(res.list("upcoming_events")).To(HaveLen(1))
			Expect(res.list("pending_payments")).To(BeEmpty())
		})
	})

	Describe("Chat", func() {
		var owner User
		var player User
		var team Team

		BeforeEach(func() {
			owner = api.signUp("owner@example.com")
			player = api.signUp("player@example.com")
			team = api.createTeam(owner, "Hawks")
			api.join(player, team)
		})

		Specify("history over http", func() {
			for _, text := range []string{"first", "second", "third"} {
				res := api.do(http.MethodPost, "/teams/"+team.ID+"/chat", owner.Token, map[string]string{"message": text})
				Expect(res.Status).To(Equal(http.StatusCreated))
			}

			res := api.do(http.MethodGet, "/teams/"+team.ID+"/chat?limit=2", player.Token, nil)
			Expect(res.Status).To(Equal(http.StatusOK))
			messages := res.list("messages")
			Expect(messages).To(HaveLen(2))
			Expect(messages[0].(map[string]interface{})["message"]).To(Equal("second"))
			Expect(messages[1].(map[string]interface{})["message"]).To(Equal("third"))

			res = api.do(http.MethodPost, "/teams/"+team.ID+"/chat", owner.Token, map[string]string{"message": "   "})
			Expect(res.Status).To(Equal(http.StatusUnprocessableEntity))
		})

		Specify("websocket backfill then push", func() {
			res := api.do(http.MethodPost, "/teams/"+team.ID+"/chat", owner.Token, map[string]string{"message": "before connect"})
			Expect(res.Status).To(Equal(http.StatusCreated))

			wsURL := "ws" + strings.TrimPrefix(api.server.URL, "http") + "/ws/teams/" + team.ID + "?token=" + player.Token
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			Expect(err).To(BeNil())
			defer conn.Close()

			readChat := func() map[string]interface{} {
				Expect(conn.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
				var env struct {
					Type    string                 `json:"type"`
					Payload map[string]interface{} `json:"payload"`
				}
				Expect(conn.ReadJSON(&env)).To(Succeed())
				Expect(env.Type).To(Equal(realtime.TypeChatMessage))
				return env.Payload
			}

			Expect(readChat()["message"]).To(Equal("before connect"))

			Expect(conn.WriteJSON(map[string]interface{}{
				"type":    realtime.TypeChatSend,
				"payload": map[string]string{"message": "hello from socket"},
			})).To(Succeed())

			pushed := readChat()
			Expect(pushed["message"]).To(Equal("hello from socket"))
			Expect(pushed["user_id"]).To(Equal(player.ID))

			res = api.do(http.MethodGet, "/teams/"+team.ID+"/chat", owner.Token, nil)
			Expect(res.list("messages")).To(HaveLen(2))
		})

		Specify("sad path - websocket without token", func() {
			wsURL := "ws" + strings.TrimPrefix(api.server.URL, "http") + "/ws/teams/" + team.ID
			_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
			Expect(err).NotTo(BeNil())
			Expect(resp).NotTo(BeNil())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})
	})
})
