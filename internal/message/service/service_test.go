package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
	authrepo "github.com/smallbiznis/hushbox/internal/auth/repository"
	"github.com/smallbiznis/hushbox/internal/clock"
	"github.com/smallbiznis/hushbox/internal/message/domain"
	"github.com/smallbiznis/hushbox/internal/message/repository"
	"github.com/smallbiznis/hushbox/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc   domain.Service
	users authdomain.Repository
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&authdomain.User{}, &domain.Message{}))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	users, _ := authrepo.New(dbConn)
	svc := New(Params{
		DB:         dbConn,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clk,
		Repo:       repository.Provide(),
		Recipients: users,
	})
	return &fixture{svc: svc, users: users, clock: clk}
}

func (f *fixture) seedUser(t *testing.T, id int64, username string) snowflake.ID {
	t.Helper()
	now := f.clock.Now()
	user := &authdomain.User{
		ID:        snowflake.ID(id),
		Email:     username + "@example.com",
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user.ID
}

func TestSendStoresAnonymousActiveMessage(t *testing.T) {
	f := newFixture(t)
	bob := f.seedUser(t, 10, "bob")

	msg, err := f.svc.Send(context.Background(), domain.SendRequest{Username: "bob", Content: "  you rock  "})
	require.NoError(t, err)
	require.Equal(t, bob, msg.UserID)
	require.Equal(t, "you rock", msg.Content)
	require.True(t, msg.IsAnonymous)
	require.Equal(t, domain.StatusActive, msg.Status)

	list, err := f.svc.List(context.Background(), bob)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, msg.ID, list[0].ID)
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 10, "bob")
	ctx := context.Background()

	_, err := f.svc.Send(ctx, domain.SendRequest{Username: "bob", Content: "   "})
	require.ErrorIs(t, err, domain.ErrContentRequired)

	_, err = f.svc.Send(ctx, domain.SendRequest{Content: "hi"})
	require.ErrorIs(t, err, domain.ErrContentRequired)

	_, err = f.svc.Send(ctx, domain.SendRequest{Username: "bob", Content: strings.Repeat("a", domain.MaxContentLength+1)})
	require.ErrorIs(t, err, domain.ErrContentTooLong)

	_, err = f.svc.Send(ctx, domain.SendRequest{Username: "bob", Content: " " + strings.Repeat("a", domain.MaxContentLength)})
	require.ErrorIs(t, err, domain.ErrContentTooLong)

	msg, err := f.svc.Send(ctx, domain.SendRequest{Username: "bob", Content: " " + strings.Repeat("a", domain.MaxContentLength-1)})
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("a", domain.MaxContentLength-1), msg.Content)

	// Length counts characters, not bytes.
	_, err = f.svc.Send(ctx, domain.SendRequest{Username: "bob", Content: strings.Repeat("é", domain.MaxContentLength)})
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, domain.SendRequest{Username: "nobody", Content: "hi"})
	require.ErrorIs(t, err, domain.ErrRecipientNotFound)
}

func TestListNewestFirstAndScopedToOwner(t *testing.T) {
	f := newFixture(t)
	bob := f.seedUser(t, 10, "bob")
	carol := f.seedUser(t, 11, "carol")
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		_, err := f.svc.Send(ctx, domain.SendRequest{Username: "bob", Content: content})
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}
	_, err := f.svc.Send(ctx, domain.SendRequest{Username: "carol", Content: "other"})
	require.NoError(t, err)

	list, err := f.svc.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "three", list[0].Content)
	require.Equal(t, "one", list[2].Content)

	empty, err := f.svc.List(ctx, snowflake.ID(999))
	require.NoError(t, err)
	require.Empty(t, empty)

	other, err := f.svc.List(ctx, carol)
	require.NoError(t, err)
	require.Len(t, other, 1)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	bob := f.seedUser(t, 10, "bob")
	carol := f.seedUser(t, 11, "carol")
	ctx := context.Background()

	msg, err := f.svc.Send(ctx, domain.SendRequest{Username: "bob", Content: "hello"})
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	updated, err := f.svc.UpdateStatus(ctx, bob, msg.ID, domain.StatusArchived)
	require.NoError(t, err)
	require.Equal(t, domain.StatusArchived, updated.Status)
	require.True(t, updated.UpdatedAt.After(msg.UpdatedAt))

	_, err = f.svc.UpdateStatus(ctx, bob, msg.ID, domain.Status("pinned"))
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(ctx, carol, msg.ID, domain.StatusDeleted)
	require.ErrorIs(t, err, domain.ErrMessageNotFound)

	_, err = f.svc.UpdateStatus(ctx, bob, snowflake.ID(12345), domain.StatusActive)
	require.ErrorIs(t, err, domain.ErrMessageNotFound)
}

func TestDeleteIsOwnerScopedAndIdempotent(t *testing.T) {
	f := newFixture(t)
	bob := f.seedUser(t, 10, "bob")
	carol := f.seedUser(t, 11, "carol")
	ctx := context.Background()

	msg, err := f.svc.Send(ctx, domain.SendRequest{Username: "bob", Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, carol, msg.ID))
	list, err := f.svc.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.svc.Delete(ctx, bob, msg.ID))
	require.NoError(t, f.svc.Delete(ctx, bob, msg.ID))
	list, err = f.svc.List(ctx, bob)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestPurgeForUser(t *testing.T) {
	f := newFixture(t)
	bob := f.seedUser(t, 10, "bob")
	f.seedUser(t, 11, "carol")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.svc.Send(ctx, domain.SendRequest{Username: "bob", Content: "hi"})
		require.NoError(t, err)
	}
	_, err := f.svc.Send(ctx, domain.SendRequest{Username: "carol", Content: "hi"})
	require.NoError(t, err)

	n, err := f.svc.PurgeForUser(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}
