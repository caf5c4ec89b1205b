package repositories_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/orderdesk/app/models"
	"github.com/shashiranjanraj/orderdesk/app/repositories"
	"github.com/shashiranjanraj/orderdesk/config"
	"github.com/shashiranjanraj/orderdesk/pkg/jsonstore"
)

func setup(t *testing.T) {
	t.Helper()
	require.NoError(t, jsonstore.Connect(t.TempDir()))
}

// ─── Users ────────────────────────────────────────────────────────────────────

func TestEnsureAdmin_Idempotent(t *testing.T) {
	setup(t)
	users := repositories.NewUserRepository()

	require.NoError(t, users.EnsureAdmin())

	admin, ok := users.Find(config.AdminLogin())
	require.True(t, ok, "admin must exist after seeding")
	assert.Equal(t, models.RoleAdmin, admin.Role)

	// Second run must not touch the record.
	require.NoError(t, users.EnsureAdmin())
	again, _ := users.Find(config.AdminLogin())
	assert.Equal(t, admin.PasswordHash, again.PasswordHash)
}

func TestRegister_ReservedAndDuplicate(t *testing.T) {
	setup(t)
	users := repositories.NewUserRepository()

	_, err := users.Register(config.AdminLogin(), "whatever")
	assert.ErrorIs(t, err, repositories.ErrReservedUsername)

	u, err := users.Register("alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, u.Role)
	assert.NotEqual(t, "pw1", u.PasswordHash, "password must be hashed")

	_, err = users.Register("alice", "pw2")
	assert.ErrorIs(t, err, repositories.ErrUsernameTaken)
}

func TestAuthenticate_SameErrorForBothFailures(t *testing.T) {
	setup(t)
	users := repositories.NewUserRepository()

	_, err := users.Register("bob", "secret")
	require.NoError(t, err)

	_, wrongPw := users.Authenticate("bob", "nope")
	_, noUser := users.Authenticate("nobody", "nope")
	assert.ErrorIs(t, wrongPw, repositories.ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, repositories.ErrInvalidCredentials)

	u, err := users.Authenticate("bob", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, u.Role)
}

// ─── Orders ───────────────────────────────────────────────────────────────────

func TestOrderCreate_AssignsMaxPlusOne(t *testing.T) {
	setup(t)
	orders := repositories.NewOrderRepository()

	first, err := orders.Create("alice", "video", "edit clip", "")
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, models.OrderStatusPending, first.Status)

	second, err := orders.Create("alice", "video", "another", "")
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	// Remove the newest order; the next id must still be max+1, not last+1.
	require.NoError(t, jsonstore.Save("orders", []models.Order{second, first}))
	third, err := orders.Create("bob", "logo", "draw", "")
	require.NoError(t, err)
	assert.Equal(t, 3, third.ID)
}

func TestOrderListFor_Visibility(t *testing.T) {
	setup(t)
	orders := repositories.NewOrderRepository()

	_, err := orders.Create("alice", "video", "a", "")
	require.NoError(t, err)
	_, err = orders.Create("bob", "video", "b", "")
	require.NoError(t, err)

	all, err := orders.ListFor("admin", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := orders.ListFor("alice", false)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "alice", own[0].User)

	anon, err := orders.ListFor("", false)
	require.NoError(t, err)
	assert.Empty(t, anon)
}

func TestOrderSetStatus(t *testing.T) {
	setup(t)
	orders := repositories.NewOrderRepository()

	o, err := orders.Create("alice", "video", "edit clip", "")
	require.NoError(t, err)

	require.NoError(t, orders.SetStatus(o.ID, "done"))

	listed, err := orders.ListFor("alice", false)
	require.NoError(t, err)
	assert.Equal(t, "done", listed[0].Status)

	assert.ErrorIs(t, orders.SetStatus(999, "done"), repositories.ErrOrderNotFound)
}

// ─── Messages ─────────────────────────────────────────────────────────────────

func TestMessagePost_CapsAtFiveHundred(t *testing.T) {
	setup(t)
	messages := repositories.NewMessageRepository()

	for i := 0; i < models.MessageLogCap+1; i++ {
		_, err := messages.Post("alice", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	all, err := messages.All()
	require.NoError(t, err)
	require.Len(t, all, models.MessageLogCap)

	// The oldest message is evicted; ids keep climbing past the cap.
	assert.Equal(t, 2, all[0].ID)
	assert.Equal(t, models.MessageLogCap+1, all[len(all)-1].ID)
}

func TestMessagePost_InsertionOrder(t *testing.T) {
	setup(t)
	messages := repositories.NewMessageRepository()

	for _, text := range []string{"one", "two", "three"} {
		_, err := messages.Post("guest", text)
		require.NoError(t, err)
	}

	all, err := messages.All()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "one", all[0].Message)
	assert.Equal(t, "three", all[2].Message)
	assert.True(t, all[0].ID < all[1].ID && all[1].ID < all[2].ID)
}
