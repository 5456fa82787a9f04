package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/team-hub/dbtest"
	"github.com/Dosada05/team-hub/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func createTestUser(t *testing.T, db *sqlx.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    testNow(),
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), nil, user))
	return user
}

func createTestTeam(t *testing.T, db *sqlx.DB, owner *models.User, code string) *models.Team {
	t.Helper()
	team := &models.Team{
		ID:         uuid.New(),
		Name:       "Hawks",
		Sport:      "football",
		InviteCode: code,
		CreatedBy:  owner.ID,
		CreatedAt:  testNow(),
	}
	require.NoError(t, NewTeamRepository(db).Create(context.Background(), nil, team))
	require.NoError(t, NewTeamMemberRepository(db).Add(context.Background(), nil, &models.TeamMember{
		ID:       uuid.New(),
		TeamID:   team.ID,
		UserID:   owner.ID,
		Role:     models.RoleAdmin,
		JoinedAt: testNow(),
	}))
	return team
}

func createTestEvent(t *testing.T, db *sqlx.DB, team *models.Team, start time.Time) *models.Event {
	t.Helper()
	now := testNow()
	event := &models.Event{
		ID:         uuid.New(),
		TeamID:     team.ID,
		Title:      "Training",
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
		MinPlayers: 5,
		CreatedBy:  team.CreatedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, NewEventRepository(db).Create(context.Background(), event))
	return event
}

func TestUserRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice@example.com")

	got, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.False(t, got.IsAdmin)
	assert.True(t, user.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)

	dup := &models.User{ID: uuid.New(), Email: "alice@example.com", PasswordHash: "x", CreatedAt: testNow()}
	assert.ErrorIs(t, repo.Create(ctx, nil, dup), ErrUserEmailConflict)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAdminInviteRepository_SingleUse(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewAdminInviteRepository(db)
	ctx := context.Background()
	now := testNow()

	invite := &models.AdminInvite{
		ID:        uuid.New(),
		Email:     "boss@example.com",
		TokenHash: "abc",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, invite))

	got, err := repo.GetActiveByTokenHash(ctx, nil, "abc", now)
	require.NoError(t, err)
	assert.Equal(t, invite.ID, got.ID)

	_, err = repo.GetActiveByTokenHash(ctx, nil, "abc", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrAdminInviteNotFound, "expired invites are not active")

	require.NoError(t, repo.MarkUsed(ctx, nil, invite.ID, now))
	assert.ErrorIs(t, repo.MarkUsed(ctx, nil, invite.ID, now), ErrAdminInviteNotFound)

	_, err = repo.GetActiveByTokenHash(ctx, nil, "abc", now)
	assert.ErrorIs(t, err, ErrAdminInviteNotFound)
}

func TestTeamRepository(t *testing.T) {
	db := dbtest.Open(t)
	teams := NewTeamRepository(db)
	members := NewTeamMemberRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	team := createTestTeam(t, db, owner, "HAWKS-ABC234")

	t.Run("invite code is unique", func(t *testing.T) {
		other := &models.Team{
			ID: uuid.New(), Name: "Other", Sport: "rugby", InviteCode: "HAWKS-ABC234",
			CreatedBy: owner.ID, CreatedAt: testNow(),
		}
		assert.ErrorIs(t, teams.Create(ctx, nil, other), ErrTeamInviteCodeConflict)
	})

	t.Run("lookup by invite code", func(t *testing.T) {
		got, err := teams.GetByInviteCode(ctx, "HAWKS-ABC234")
		require.NoError(t, err)
		assert.Equal(t, team.ID, got.ID)

		_, err = teams.GetByInviteCode(ctx, "NOPE-000000")
		assert.ErrorIs(t, err, ErrTeamNotFound)
	})

	t.Run("membership", func(t *testing.T) {
		player := createTestUser(t, db, "player@example.com")
		require.NoError(t, members.Add(ctx, nil, &models.TeamMember{
			ID: uuid.New(), TeamID: team.ID, UserID: player.ID, Role: models.RolePlayer, JoinedAt: testNow(),
		}))
		err := members.Add(ctx, nil, &models.TeamMember{
			ID: uuid.New(), TeamID: team.ID, UserID: player.ID, Role: models.RolePlayer, JoinedAt: testNow(),
		})
		assert.ErrorIs(t, err, ErrMemberConflict)

		list, err := members.ListByTeam(ctx, team.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, models.RoleAdmin, list[0].Role)
		assert.Equal(t, "owner@example.com", list[0].UserEmail)

		admins, err := members.CountAdmins(ctx, nil, team.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, admins)

		mine, err := teams.ListByUserID(ctx, player.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, team.ID, mine[0].ID)
	})

	t.Run("update and regenerate code", func(t *testing.T) {
		desc := "Sunday league"
		team.Description = &desc
		team.Name = "Hawks FC"
		require.NoError(t, teams.Update(ctx, team))
		require.NoError(t, teams.UpdateInviteCode(ctx, team.ID, "HAWKS-XYZ789"))

		got, err := teams.GetByID(ctx, team.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hawks FC", got.Name)
		require.NotNil(t, got.Description)
		assert.Equal(t, desc, *got.Description)
		assert.Equal(t, "HAWKS-XYZ789", got.InviteCode)
	})

	t.Run("delete cascades", func(t *testing.T) {
		event := createTestEvent(t, db, team, testNow().Add(24*time.Hour))
		require.NoError(t, teams.Delete(ctx, team.ID))

		_, err := NewEventRepository(db).GetByID(ctx, event.ID)
		assert.ErrorIs(t, err, ErrEventNotFound)
		count, err := members.CountByTeam(ctx, team.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.ErrorIs(t, teams.Delete(ctx, team.ID), ErrTeamNotFound)
	})
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	teams := NewTeamRepository(db)
	tx := NewTxManager(db)

	teamID := uuid.New()
	err := tx.WithinTx(ctx, func(exec SQLExecutor) error {
		team := &models.Team{
			ID: teamID, Name: "Hawks", Sport: "football", InviteCode: "HAWKS-TXTX22",
			CreatedBy: owner.ID, CreatedAt: testNow(),
		}
		if err := teams.Create(ctx, exec, team); err != nil {
			return err
		}
		return NewTeamMemberRepository(db).Add(ctx, exec, &models.TeamMember{
			ID: uuid.New(), TeamID: teamID, UserID: uuid.New(), Role: models.RoleAdmin, JoinedAt: testNow(),
		})
	})
	require.Error(t, err)

	_, err = teams.GetByID(ctx, teamID)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestEventRepository(t *testing.T) {
	db := dbtest.Open(t)
	events := NewEventRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	team := createTestTeam(t, db, owner, "HAWKS-EVT234")
	base := testNow().Add(48 * time.Hour)

	later := createTestEvent(t, db, team, base.Add(24*time.Hour))
	sooner := createTestEvent(t, db, team, base)

	t.Run("start must precede end", func(t *testing.T) {
		bad := *sooner
		bad.ID = uuid.New()
		bad.EndTime = bad.StartTime
		assert.ErrorIs(t, events.Create(ctx, &bad), ErrEventCheckViolation)
	})

	t.Run("listing is ordered by start time", func(t *testing.T) {
		list, err := events.ListByTeam(ctx, team.ID, EventFilter{})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, sooner.ID, list[0].ID)
		assert.Equal(t, later.ID, list[1].ID)
	})

	t.Run("confirm is idempotent", func(t *testing.T) {
		require.NoError(t, events.Confirm(ctx, sooner.ID, testNow()))
		require.NoError(t, events.Confirm(ctx, sooner.ID, testNow()))
		assert.ErrorIs(t, events.Confirm(ctx, uuid.New(), testNow()), ErrEventNotFound)

		confirmed := true
		list, err := events.ListByTeam(ctx, team.ID, EventFilter{Confirmed: &confirmed})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, sooner.ID, list[0].ID)
		assert.True(t, list[0].IsConfirmed)

		count, err := events.CountByConfirmation(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("upcoming for member", func(t *testing.T) {
		list, err := events.ListUpcomingForUser(ctx, owner.ID, testNow(), 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, sooner.ID, list[0].ID)
	})

	t.Run("reminder is claimed once", func(t *testing.T) {
		due, err := events.ListDueReminders(ctx, testNow(), base.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, sooner.ID, due[0].ID)

		claimed, err := events.MarkReminderSent(ctx, sooner.ID)
		require.NoError(t, err)
		assert.True(t, claimed)
		claimed, err = events.MarkReminderSent(ctx, sooner.ID)
		require.NoError(t, err)
		assert.False(t, claimed)

		due, err = events.ListDueReminders(ctx, testNow(), base.Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, due)
	})
}

func TestAttendanceRepository_LatestVoteWins(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	team := createTestTeam(t, db, owner, "HAWKS-ATT234")
	event := createTestEvent(t, db, team, testNow().Add(time.Hour))

	statuses := []models.AttendanceStatus{
		models.AttendanceAttending,
		models.AttendanceNotAttending,
		models.AttendanceAttending,
	}
	for _, status := range statuses {
		now := testNow()
		require.NoError(t, repo.Upsert(ctx, &models.EventAttendance{
			ID: uuid.New(), EventID: event.ID, UserID: owner.ID, Status: status, CreatedAt: now, UpdatedAt: now,
		}))
	}

	list, err := repo.ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.AttendanceAttending, list[0].Status)

	counts, err := repo.CountByStatus(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, AttendanceCounts{Attending: 1, NotAttending: 0}, counts)

	err = repo.Upsert(ctx, &models.EventAttendance{
		ID: uuid.New(), EventID: uuid.New(), UserID: owner.ID, Status: models.AttendanceAttending,
		CreatedAt: testNow(), UpdatedAt: testNow(),
	})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCommentRepository_RatingStats(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	team := createTestTeam(t, db, owner, "HAWKS-CMT234")
	event := createTestEvent(t, db, team, testNow().Add(time.Hour))

	stats, err := repo.RatingStats(ctx, event.ID)
	require.NoError(t, err)
	assert.Nil(t, stats.Average)
	assert.Zero(t, stats.Count)

	four, five := 4, 5
	for _, rating := range []*int{&four, nil, &five} {
		require.NoError(t, repo.Create(ctx, &models.EventComment{
			ID: uuid.New(), EventID: event.ID, UserID: owner.ID, Comment: "good game", Rating: rating, CreatedAt: testNow(),
		}))
	}

	comments, err := repo.ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 3)

	stats, err = repo.RatingStats(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, stats.Average)
	assert.InDelta(t, 4.5, *stats.Average, 0.001)
	assert.Equal(t, 2, stats.Count)
}

func TestPaymentRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	team := createTestTeam(t, db, owner, "HAWKS-PAY234")
	event := createTestEvent(t, db, team, testNow().Add(time.Hour))

	now := testNow()
	payment := &models.EventPayment{
		ID: uuid.New(), EventID: event.ID, UserID: owner.ID, AmountCents: 1500,
		Status: models.PaymentPending, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, payment))

	dup := *payment
	dup.ID = uuid.New()
	assert.ErrorIs(t, repo.Create(ctx, &dup), ErrPaymentConflict)

	require.NoError(t, repo.UpdateStatus(ctx, payment.ID, models.PaymentPending, models.PaymentPaid, testNow()))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, payment.ID, models.PaymentPending, models.PaymentPaid, testNow()), ErrPaymentStale)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), models.PaymentPending, models.PaymentPaid, testNow()), ErrPaymentNotFound)

	got, err := repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.Status)
	assert.Equal(t, "Training", got.EventTitle)

	pending, err := repo.ListByUserAndStatus(ctx, owner.ID, models.PaymentPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestChatRepository_RecentMessagesAscending(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	team := createTestTeam(t, db, owner, "HAWKS-CHT234")

	latest, err := repo.LatestCreatedAt(ctx, team.ID)
	require.NoError(t, err)
	assert.True(t, latest.IsZero())

	base := testNow()
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		msg := &models.ChatMessage{
			ID: uuid.New(), TeamID: team.ID, UserID: owner.ID, Message: "hi",
			CreatedAt: base.Add(time.Duration(i) * time.Microsecond),
		}
		require.NoError(t, repo.Create(ctx, msg))
		ids = append(ids, msg.ID)
	}

	recent, err := repo.ListByTeam(ctx, team.ID, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, ids[2:], []uuid.UUID{recent[0].ID, recent[1].ID, recent[2].ID})
	assert.Equal(t, "owner@example.com", recent[0].UserEmail)

	latest, err = repo.LatestCreatedAt(ctx, team.ID)
	require.NoError(t, err)
	assert.True(t, latest.Equal(base.Add(4*time.Microsecond)))
}

func TestMemoryTokenDenylist(t *testing.T) {
	ctx := context.Background()
	denylist := NewMemoryTokenDenylist().(*memoryTokenDenylist)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	denylist.now = func() time.Time { return now }

	require.NoError(t, denylist.Revoke(ctx, "jti-1", now.Add(time.Minute)))
	revoked, err := denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = denylist.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
