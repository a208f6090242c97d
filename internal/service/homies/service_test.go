package homies_test

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/homies/internal/app"
	"github.com/oggyb/homies/internal/cache"
	"github.com/oggyb/homies/internal/config"
	"github.com/oggyb/homies/internal/db"
	"github.com/oggyb/homies/internal/domain"
	svcErr "github.com/oggyb/homies/internal/errors"
	"github.com/oggyb/homies/internal/events"
	"github.com/oggyb/homies/internal/logger"
	"github.com/oggyb/homies/internal/relationship"
	"github.com/oggyb/homies/internal/repository/memstore"
	"github.com/oggyb/homies/internal/service/homies"
)

//
// Test helpers
//

var testNow = time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

func born(age int) time.Time {
	return testNow.AddDate(-age, -1, 0)
}

// Users of the default fixture:
//   - 1 Ann, 25, no preferences, keeps contact data private
//   - 2 Bob, 27, wants ages 18-30, shares contact data
//   - 3 Cleo, 40
func fixtureUsers() []domain.User {
	return []domain.User{
		{ID: 1, FirstName: "Ann", LastName: "Lee", Email: "ann@test.com", Phone: "1001",
			Gender: domain.GenderFemale, DateOfBirth: born(25)},
		{ID: 2, FirstName: "Bob", LastName: "Marsh", Email: "bob@test.com", Phone: "1002",
			Gender: domain.GenderMale, DateOfBirth: born(27), ShowUserData: true,
			Preferences: domain.Preferences{Age: domain.IntRange(18, 30)}},
		{ID: 3, FirstName: "Cleo", LastName: "Ray", Email: "cleo@example.org", Phone: "1003",
			Gender: domain.GenderFemale, DateOfBirth: born(40)},
	}
}

type fixture struct {
	svc    *homies.Service
	users  *memstore.Users
	conns  *memstore.Connections
	events *events.Recorder
	redis  *miniredis.Miniredis
}

func newAppContext(t *testing.T, database *gorm.DB) (*app.AppContext, *events.Recorder, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	cfg.Store.Timeout = time.Second
	cfg.Messages.MaxLength = 20
	cfg.Links.PageSize = 2

	rec := &events.Recorder{}
	appCtx := app.New(cfg, database, cache.NewRedisCache(cfg), rec, logger.Discard())
	appCtx.Clock = func() time.Time { return testNow }
	return appCtx, rec, mr
}

// setupService wires the service over in-memory stores, a miniredis and a
// recording publisher. Each test gets its own isolated state.
func setupService(t *testing.T, users ...domain.User) *fixture {
	t.Helper()
	if len(users) == 0 {
		users = fixtureUsers()
	}
	appCtx, rec, mr := newAppContext(t, nil)
	f := &fixture{
		users:  memstore.NewUsers(users...),
		conns:  memstore.NewConnections(),
		events: rec,
		redis:  mr,
	}
	f.svc = homies.New(f.users, f.conns, appCtx)
	return f
}

func linkedIDs(t *testing.T, f *fixture, userID uint64, lt domain.LinkType) []uint64 {
	t.Helper()
	views, err := f.svc.ListLinked(context.Background(), userID, lt, "")
	require.NoError(t, err)
	out := make([]uint64, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

//
// Tests
//

func TestMutualFavoriteMatchesAndRevealsContact(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	res, err := f.svc.AddFavorite(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, relationship.TypePendingFavorite, res.Relationship)
	assert.False(t, res.Matched())
	assert.Empty(t, f.events.OfType(events.TypeMatched))

	res, err = f.svc.AddFavorite(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, res.Matched())
	require.Len(t, f.events.OfType(events.TypeMatched), 1)

	annMatches, err := f.svc.ListLinked(ctx, 1, domain.LinkMatched, "")
	require.NoError(t, err)
	require.Len(t, annMatches, 1)
	assert.Equal(t, uint64(2), annMatches[0].ID)
	assert.Equal(t, "bob@test.com", annMatches[0].Email, "Bob opted in")
	assert.Equal(t, "1002", annMatches[0].Phone)
	assert.True(t, annMatches[0].IsMatched)

	bobMatches, err := f.svc.ListLinked(ctx, 2, domain.LinkMatched, "")
	require.NoError(t, err)
	require.Len(t, bobMatches, 1)
	assert.Equal(t, uint64(1), bobMatches[0].ID)
	assert.Empty(t, bobMatches[0].Email, "Ann did not opt in")
	assert.Empty(t, bobMatches[0].Phone)
}

func TestAddFavoriteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	first, err := f.svc.AddFavorite(ctx, 1, 2)
	require.NoError(t, err)
	second, err := f.svc.AddFavorite(ctx, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, first.ConnectionID, second.ConnectionID)
	assert.Equal(t, first.Relationship, second.Relationship)

	all, err := f.conns.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 1, "one connection per pair")
}

func TestActionsValidateUsers(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	_, err := f.svc.AddFavorite(ctx, 1, 1)
	assert.ErrorIs(t, err, svcErr.ErrInvalidPair)

	_, err = f.svc.Block(ctx, 1, 99)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, err = f.svc.RemoveFavorite(ctx, 99, 1)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestAdmirerResurfacesInFeedUntilAnswered(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	_, err := f.svc.AddFavorite(ctx, 1, 2)
	require.NoError(t, err)

	// Ann already acted on Bob, only Cleo is left for her
	card, err := f.svc.NextCandidate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), card.User.ID)

	// Bob sees Ann first: she admires him and fits his age range
	card, err = f.svc.NextCandidate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), card.User.ID)
	assert.Equal(t, 6, card.Score)
	assert.Equal(t, domain.StatusFavorite, card.User.TheirStatus)
	assert.Empty(t, card.User.Email, "not matched")

	assert.Equal(t, []uint64{1}, linkedIDs(t, f, 2, domain.LinkAdmirers))
	assert.Equal(t, []uint64{2}, linkedIDs(t, f, 1, domain.LinkFavorites))

	// Bob declines, Ann leaves his feed
	res, err := f.svc.RemoveFavorite(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, relationship.TypeDeclined, res.Relationship)

	card, err = f.svc.NextCandidate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), card.User.ID)
	assert.Equal(t, 5, card.Score, "Cleo is outside the age range")

	assert.Empty(t, linkedIDs(t, f, 2, domain.LinkAdmirers))
	assert.Equal(t, []uint64{1}, linkedIDs(t, f, 2, domain.LinkIgnored))
}

func TestFeedSkipsBlockedPairs(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	_, err := f.svc.AddFavorite(ctx, 3, 1)
	require.NoError(t, err)
	_, err = f.svc.Block(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, f.events.OfType(events.TypeBlocked), 1)

	for _, id := range []uint64{1, 3} {
		card, err := f.svc.NextCandidate(ctx, id)
		require.NoError(t, err)
		assert.NotEqual(t, id, card.User.ID, "never self")
		assert.Equal(t, uint64(2), card.User.ID, "never the blocked pair")
	}

	for _, lt := range domain.LinkTypes {
		assert.Empty(t, linkedIDs(t, f, 1, lt), lt)
		assert.Empty(t, linkedIDs(t, f, 3, lt), lt)
	}

	_, err = f.svc.AddFavorite(ctx, 3, 1)
	assert.ErrorIs(t, err, svcErr.ErrInvalidState, "a block is permanent")
}

func TestEmptyFeed(t *testing.T) {
	ctx := context.Background()
	f := setupService(t, fixtureUsers()[:2]...)

	_, err := f.svc.RemoveFavorite(ctx, 1, 2)
	require.NoError(t, err)

	_, err = f.svc.NextCandidate(ctx, 1)
	assert.True(t, svcErr.IsNoCandidate(err))

	_, err = f.svc.NextCandidate(ctx, 42)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestIgnoreRules(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	// ignoring a stranger creates the connection
	res, err := f.svc.RemoveFavorite(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIgnored, res.MyStatus)
	assert.Equal(t, []uint64{3}, linkedIDs(t, f, 1, domain.LinkIgnored))
	assert.Empty(t, linkedIDs(t, f, 3, domain.LinkIgnored))

	// the other side reaffirms
	res, err = f.svc.RemoveFavorite(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBothIgnored, res.MyStatus)
	assert.Equal(t, relationship.TypeMutuallyIgnored, res.Relationship)
	assert.Equal(t, []uint64{1}, linkedIDs(t, f, 3, domain.LinkIgnored))

	_, err = f.svc.RemoveFavorite(ctx, 1, 3)
	assert.ErrorIs(t, err, svcErr.ErrInvalidState, "already mutually ignored")

	// matched pairs go through RemoveMatched instead
	_, err = f.svc.AddFavorite(ctx, 1, 2)
	require.NoError(t, err)
	_, err = f.svc.AddFavorite(ctx, 2, 1)
	require.NoError(t, err)
	_, err = f.svc.RemoveFavorite(ctx, 1, 2)
	assert.ErrorIs(t, err, svcErr.ErrInvalidState)
}

func TestRemoveMatched(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	_, err := f.svc.RemoveMatched(ctx, 1, 2)
	assert.ErrorIs(t, err, svcErr.ErrInvalidState, "nothing to un-match")

	_, err = f.svc.AddFavorite(ctx, 1, 2)
	require.NoError(t, err)
	_, err = f.svc.RemoveMatched(ctx, 1, 2)
	assert.ErrorIs(t, err, svcErr.ErrInvalidState, "pending is not matched")

	_, err = f.svc.AddFavorite(ctx, 2, 1)
	require.NoError(t, err)
	res, err := f.svc.RemoveMatched(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIgnored, res.MyStatus)
	assert.Empty(t, linkedIDs(t, f, 1, domain.LinkMatched))
	assert.Equal(t, []uint64{1}, linkedIDs(t, f, 2, domain.LinkIgnored))

	all, err := f.conns.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 1, "connections are never deleted")
}

func TestListLinkedSearchAndType(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	_, err := f.svc.AddFavorite(ctx, 2, 1)
	require.NoError(t, err)
	_, err = f.svc.AddFavorite(ctx, 3, 1)
	require.NoError(t, err)

	views, err := f.svc.ListLinked(ctx, 1, domain.LinkAdmirers, "EXAMPLE")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Cleo", views[0].FirstName)

	views, err = f.svc.ListLinked(ctx, 1, domain.LinkAdmirers, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)

	_, err = f.svc.ListLinked(ctx, 1, domain.LinkType("matched"), "")
	assert.ErrorIs(t, err, svcErr.ErrInvalidRelationshipType, "names are case-sensitive")
}

func TestListLinkedPage(t *testing.T) {
	ctx := context.Background()
	users := []domain.User{{ID: 1, FirstName: "Ann", Email: "ann@test.com", DateOfBirth: born(30)}}
	for id := uint64(2); id <= 6; id++ {
		users = append(users, domain.User{ID: id, FirstName: fmt.Sprintf("Fan%d", id), DateOfBirth: born(30)})
	}
	f := setupService(t, users...)
	for id := uint64(2); id <= 6; id++ {
		_, err := f.svc.AddFavorite(ctx, id, 1)
		require.NoError(t, err)
	}

	var got []uint64
	token := ""
	pages := 0
	for {
		page, err := f.svc.ListLinkedPage(ctx, 1, domain.LinkAdmirers, "", token, 0)
		require.NoError(t, err)
		pages++
		for _, v := range page.Items {
			got = append(got, v.ID)
		}
		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}
	assert.Equal(t, 3, pages, "configured page size is 2")
	assert.Equal(t, []uint64{2, 3, 4, 5, 6}, got)

	page, err := f.svc.ListLinkedPage(ctx, 1, domain.LinkAdmirers, "", "", 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Empty(t, page.NextToken)

	// an oversized page past a cursor is capped, not overflowed
	first, err := f.svc.ListLinkedPage(ctx, 1, domain.LinkAdmirers, "", "", 0)
	require.NoError(t, err)
	page, err = f.svc.ListLinkedPage(ctx, 1, domain.LinkAdmirers, "", first.NextToken, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Empty(t, page.NextToken)

	_, err = f.svc.ListLinkedPage(ctx, 1, domain.LinkAdmirers, "", "not-a-token", 0)
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
}

func TestCountAdmirersUsesCache(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	_, err := f.svc.AddFavorite(ctx, 2, 1)
	require.NoError(t, err)

	n, err := f.svc.CountAdmirers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	cached, err := f.redis.Get(cache.KeyForAdmirerCount(1))
	require.NoError(t, err)
	assert.Equal(t, "1", cached)

	// a stale value in the cache is served as is
	require.NoError(t, f.redis.Set(cache.KeyForAdmirerCount(1), "7"))
	n, err = f.svc.CountAdmirers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	// any mutation of the pair drops both users' counts
	_, err = f.svc.AddFavorite(ctx, 3, 1)
	require.NoError(t, err)
	assert.False(t, f.redis.Exists(cache.KeyForAdmirerCount(1)))

	n, err = f.svc.CountAdmirers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

// deadlineRecorder remembers the context state each event was published with.
type deadlineRecorder struct {
	left []time.Duration
	errs []error
}

func (r *deadlineRecorder) Publish(ctx context.Context, _ events.Event) error {
	deadline, _ := ctx.Deadline()
	r.left = append(r.left, time.Until(deadline))
	r.errs = append(r.errs, ctx.Err())
	return nil
}

func (r *deadlineRecorder) Close() {}

func TestEventsPublishOnTheirOwnDeadline(t *testing.T) {
	appCtx, _, _ := newAppContext(t, nil)
	appCtx.Config.Store.Timeout = 50 * time.Millisecond
	appCtx.Config.Kafka.PublishTimeout = time.Minute
	rec := &deadlineRecorder{}
	appCtx.Events = rec
	svc := homies.New(memstore.NewUsers(fixtureUsers()...), memstore.NewConnections(), appCtx)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := svc.AddFavorite(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddFavorite(ctx, 2, 1)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, 1, 2, "hi")
	require.NoError(t, err)

	require.Len(t, rec.left, 2, "matched and message_sent")
	for i := range rec.left {
		assert.NoError(t, rec.errs[i])
		assert.Greater(t, rec.left[i], 30*time.Second, "neither the store timeout nor the caller deadline applies")
	}
}

func TestSideEffectFailuresDoNotFailActions(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)
	f.events.Err = fmt.Errorf("broker down")
	f.redis.SetError("ERR cache unavailable")

	_, err := f.svc.AddFavorite(ctx, 1, 2)
	require.NoError(t, err)
	res, err := f.svc.AddFavorite(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, res.Matched())

	n, err := f.svc.CountAdmirers(ctx, 3)
	require.NoError(t, err, "falls back to the store")
	assert.Zero(t, n)
}

// conflictingStore loses every write to a concurrent writer.
type conflictingStore struct {
	*memstore.Connections
}

func (conflictingStore) Create(context.Context, *domain.Connection) (*domain.Connection, error) {
	return nil, fmt.Errorf("%w: pair created by another writer", svcErr.ErrConflict)
}

func (conflictingStore) Save(context.Context, *domain.Connection) (*domain.Connection, error) {
	return nil, fmt.Errorf("%w: lost the race", svcErr.ErrConflict)
}

func TestConcurrentWriteSurfacesConflict(t *testing.T) {
	ctx := context.Background()
	appCtx, _, _ := newAppContext(t, nil)
	svc := homies.New(memstore.NewUsers(fixtureUsers()...), conflictingStore{memstore.NewConnections()}, appCtx)

	_, err := svc.AddFavorite(ctx, 1, 2)
	assert.ErrorIs(t, err, svcErr.ErrConflict)
	assert.True(t, svcErr.Retryable(err))
}

// flakyStore fails the next failCreates creates and failSaves saves with a
// transient error, then behaves like the wrapped store.
type flakyStore struct {
	*memstore.Connections
	failCreates int
	failSaves   int
}

func (s *flakyStore) Create(ctx context.Context, c *domain.Connection) (*domain.Connection, error) {
	if s.failCreates > 0 {
		s.failCreates--
		return nil, fmt.Errorf("%w: connection reset", svcErr.ErrTransient)
	}
	return s.Connections.Create(ctx, c)
}

func (s *flakyStore) Save(ctx context.Context, c *domain.Connection) (*domain.Connection, error) {
	if s.failSaves > 0 {
		s.failSaves--
		return nil, fmt.Errorf("%w: connection reset", svcErr.ErrTransient)
	}
	return s.Connections.Save(ctx, c)
}

func TestFailedFirstWriteLeavesPairUntouched(t *testing.T) {
	ctx := context.Background()
	appCtx, _, _ := newAppContext(t, nil)
	conns := memstore.NewConnections()
	store := &flakyStore{Connections: conns, failCreates: 1}
	svc := homies.New(memstore.NewUsers(fixtureUsers()...), store, appCtx)

	_, err := svc.AddFavorite(ctx, 1, 2)
	require.ErrorIs(t, err, svcErr.ErrTransient)
	assert.True(t, svcErr.Retryable(err))

	_, err = conns.FindByPair(ctx, domain.NewPair(1, 2))
	assert.ErrorIs(t, err, svcErr.ErrNoConnection, "nothing was stored")

	card, err := svc.NextCandidate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), card.User.ID, "Bob stays in Ann's feed")

	res, err := svc.AddFavorite(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, relationship.TypePendingFavorite, res.Relationship)

	stored, err := conns.FindByPair(ctx, domain.NewPair(1, 2))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stored.Version, "created with its first statuses in one write")
	assert.Equal(t, domain.StatusFavorite, stored.StatusOf(1))
}

func TestEmptyConnectionRowCountsAsUnanswered(t *testing.T) {
	ctx := context.Background()
	appCtx, _, _ := newAppContext(t, nil)
	conns := memstore.NewConnections()
	empty, err := conns.Create(ctx, domain.NewConnection(domain.NewPair(1, 2), 1))
	require.NoError(t, err)
	store := &flakyStore{Connections: conns, failSaves: 1}
	svc := homies.New(memstore.NewUsers(fixtureUsers()...), store, appCtx)

	card, err := svc.NextCandidate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), card.User.ID)
	card, err = svc.NextCandidate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), card.User.ID)

	_, err = svc.RemoveMatched(ctx, 1, 2)
	assert.ErrorIs(t, err, svcErr.ErrInvalidState)

	_, err = svc.RemoveFavorite(ctx, 2, 1)
	require.ErrorIs(t, err, svcErr.ErrTransient)
	card, err = svc.NextCandidate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), card.User.ID, "a failed save changes nothing")

	res, err := svc.RemoveFavorite(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, empty.ID, res.ConnectionID, "the existing row is reused")
	assert.Equal(t, domain.StatusIgnored, res.MyStatus)

	card, err = svc.NextCandidate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), card.User.ID)
}

func TestMessaging(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	_, err := f.svc.SendMessage(ctx, 1, 2, "hi")
	assert.ErrorIs(t, err, svcErr.ErrNoConnection)

	_, err = f.svc.AddFavorite(ctx, 1, 2)
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, 2, 1, "hello")
	assert.ErrorIs(t, err, svcErr.ErrForbidden, "the passive party answers by favoriting")

	_, err = f.svc.SendMessage(ctx, 1, 2, "   ")
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
	_, err = f.svc.SendMessage(ctx, 1, 2, strings.Repeat("é", 21))
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)

	msg, err := f.svc.SendMessage(ctx, 1, 2, "  "+strings.Repeat("é", 20)+" ")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 20), msg.Text)
	assert.Equal(t, testNow, msg.SentAt)
	require.Len(t, f.events.OfType(events.TypeMessageSent), 1)

	bobView, err := f.svc.GetHomie(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, bobView.Messages, 1)
	assert.True(t, bobView.HasUnreadMessages)

	annView, err := f.svc.GetHomie(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, annView.HasUnreadMessages, "flag is for the recipient")

	changed, err := f.svc.MarkRead(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, changed)
	changed, err = f.svc.MarkRead(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = f.svc.MarkRead(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = f.svc.Block(ctx, 2, 1)
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, 1, 2, "still there?")
	assert.ErrorIs(t, err, svcErr.ErrForbidden)
}

func TestGetHomie(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	h, err := f.svc.GetHomie(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "Cleo", h.View.FirstName)
	assert.Equal(t, 40, h.View.Age)
	assert.Equal(t, relationship.TypeNone, h.View.Relationship)
	assert.Empty(t, h.Messages)

	_, err = f.svc.GetHomie(ctx, 1, 1)
	assert.ErrorIs(t, err, svcErr.ErrInvalidPair)
	_, err = f.svc.GetHomie(ctx, 1, 99)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

// setupDBService runs the service on the gorm repositories over an
// in-memory SQLite seeded with db.SeedMinimalTestData.
func setupDBService(t *testing.T) *homies.Service {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	require.NoError(t, db.SeedMinimalTestData(database))

	appCtx, _, _ := newAppContext(t, database)
	return homies.NewHomiesService(appCtx)
}

func TestServiceOnSQLite(t *testing.T) {
	ctx := context.Background()
	svc := setupDBService(t)

	matched, err := svc.ListLinked(ctx, 1, domain.LinkMatched, "")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, uint64(2), matched[0].ID)
	assert.Equal(t, "u2@test.com", matched[0].Email)

	admirers, err := svc.ListLinked(ctx, 1, domain.LinkAdmirers, "")
	require.NoError(t, err)
	require.Len(t, admirers, 1)
	assert.Equal(t, uint64(4), admirers[0].ID)

	ignored, err := svc.ListLinked(ctx, 1, domain.LinkIgnored, "")
	require.NoError(t, err)
	require.Len(t, ignored, 1)
	assert.Equal(t, uint64(3), ignored[0].ID)

	n, err := svc.CountAdmirers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// only the unanswered admirer is left in Ann's feed
	card, err := svc.NextCandidate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), card.User.ID)

	res, err := svc.AddFavorite(ctx, 1, 4)
	require.NoError(t, err)
	assert.True(t, res.Matched())

	_, err = svc.NextCandidate(ctx, 1)
	assert.True(t, svcErr.IsNoCandidate(err))

	msg, err := svc.SendMessage(ctx, 4, 1, "hey Ann")
	require.NoError(t, err)
	h, err := svc.GetHomie(ctx, 1, 4)
	require.NoError(t, err)
	require.Len(t, h.Messages, 1)
	assert.Equal(t, msg.ID, h.Messages[0].ID)
	assert.True(t, h.HasUnreadMessages)
}
