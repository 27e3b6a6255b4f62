package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/scene-hunter/scenehunter/internal/client"
	"github.com/scene-hunter/scenehunter/internal/devserver"
	"github.com/scene-hunter/scenehunter/internal/devserver/room"
	"github.com/scene-hunter/scenehunter/internal/lobby"
	"github.com/scene-hunter/scenehunter/internal/model"
	"github.com/scene-hunter/scenehunter/internal/roomsync"
	"github.com/scene-hunter/scenehunter/internal/session"
	"github.com/scene-hunter/scenehunter/internal/testutil"
)

const (
	waitFor = 5 * time.Second
	tick    = 20 * time.Millisecond
)

func newTestServer(t *testing.T, roomCfg room.Config) *httptest.Server {
	t.Helper()

	app, err := devserver.New(devserver.Config{
		Logger:     testutil.NopLogger(),
		RoomConfig: roomCfg,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler)
	t.Cleanup(srv.Close)
	return srv
}

// newSession bootstraps a fresh player against the server and returns
// an authenticated client
func newSession(t *testing.T, baseURL string) (*client.Client, model.PlayerID) {
	t.Helper()

	c := client.New(baseURL, "", testutil.NopLogger())
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	boot := session.NewBootstrapper(store, c, clockwork.NewRealClock(), session.DefaultTTL, testutil.NopLogger())

	cred, err := boot.Session(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, cred.Token)
	require.NotEmpty(t, cred.PlayerID)

	c.SetToken(cred.Token)
	return c, cred.PlayerID
}

// streamOpener adapts the concrete client to the synchronizer's
// opener interface
type streamOpener struct {
	c *client.Client
}

func (o streamOpener) Subscribe(ctx context.Context, roomID model.RoomID) (roomsync.Stream, error) {
	return o.c.Subscribe(ctx, roomID)
}

func startSync(t *testing.T, c *client.Client, roomID model.RoomID, playerID model.PlayerID) *roomsync.Synchronizer {
	t.Helper()

	sync := roomsync.New(c, streamOpener{c}, clockwork.NewRealClock(), roomID, playerID, testutil.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = sync.Run(ctx) }()
	return sync
}

func waitForScreen(t *testing.T, sync *roomsync.Synchronizer, screen roomsync.Screen) {
	t.Helper()
	require.Eventually(t, func() bool {
		return sync.State().Screen == screen
	}, waitFor, tick, "expected screen %q, last state %+v", screen, sync.State())
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, room.Config{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBootstrapIssuesDistinctIdentities(t *testing.T) {
	srv := newTestServer(t, room.Config{})

	_, first := newSession(t, srv.URL)
	_, second := newSession(t, srv.URL)
	require.NotEqual(t, first, second)
}

func TestUnauthenticatedRequestIsRejected(t *testing.T) {
	srv := newTestServer(t, room.Config{})

	c := client.New(srv.URL, "bogus-token", testutil.NopLogger())
	_, err := c.RoomSnapshot(context.Background(), "123456")
	require.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestRoomCreateJoinSnapshot(t *testing.T) {
	srv := newTestServer(t, room.Config{})
	ctx := context.Background()

	gmClient, gmID := newSession(t, srv.URL)
	playerClient, playerID := newSession(t, srv.URL)

	gmLobby := lobby.NewController(gmClient, testutil.NopLogger())
	roomID, err := gmLobby.CreateRoom(ctx, "Master", "en")
	require.NoError(t, err)

	playerLobby := lobby.NewController(playerClient, testutil.NopLogger())
	require.NoError(t, playerLobby.JoinRoom(ctx, roomID, "Ann", "en"))

	snapshot, err := playerClient.RoomSnapshot(ctx, roomID)
	require.NoError(t, err)
	require.Equal(t, gmID, snapshot.GameMasterID)
	require.True(t, snapshot.IsGameMaster(gmID))
	require.Len(t, snapshot.Users, 2)
	require.Equal(t, "Ann", snapshot.Users[playerID].Name)
}

func TestJoinUnknownRoomFails(t *testing.T) {
	srv := newTestServer(t, room.Config{})

	c, _ := newSession(t, srv.URL)
	ctrl := lobby.NewController(c, testutil.NopLogger())
	err := ctrl.JoinRoom(context.Background(), "000000", "Ann", "en")
	require.ErrorIs(t, err, model.ErrRoomNotFound)
}

func TestRejoinFallsBackToRename(t *testing.T) {
	srv := newTestServer(t, room.Config{})
	ctx := context.Background()

	gmClient, _ := newSession(t, srv.URL)
	gmLobby := lobby.NewController(gmClient, testutil.NopLogger())
	roomID, err := gmLobby.CreateRoom(ctx, "Master", "en")
	require.NoError(t, err)

	playerClient, playerID := newSession(t, srv.URL)
	playerLobby := lobby.NewController(playerClient, testutil.NopLogger())
	require.NoError(t, playerLobby.JoinRoom(ctx, roomID, "Ann", "en"))

	// Joining again renames instead of failing
	require.NoError(t, playerLobby.JoinRoom(ctx, roomID, "Annie", "en"))

	snapshot, err := playerClient.RoomSnapshot(ctx, roomID)
	require.NoError(t, err)
	require.Equal(t, "Annie", snapshot.Users[playerID].Name)
}

func TestGameStartRequiresGameMaster(t *testing.T) {
	srv := newTestServer(t, room.Config{})
	ctx := context.Background()

	gmClient, _ := newSession(t, srv.URL)
	gmLobby := lobby.NewController(gmClient, testutil.NopLogger())
	roomID, err := gmLobby.CreateRoom(ctx, "Master", "en")
	require.NoError(t, err)

	playerClient, _ := newSession(t, srv.URL)
	playerLobby := lobby.NewController(playerClient, testutil.NopLogger())
	require.NoError(t, playerLobby.JoinRoom(ctx, roomID, "Ann", "en"))

	err = playerClient.StartGame(ctx, roomID)
	require.ErrorIs(t, err, model.ErrNotGameMaster)
}

// TestFullGameRoundTrip drives a complete single-round game through
// the real client stack: bootstrap, lobby, synchronizers on the live
// notification stream, photo uploads and the final scores.
func TestFullGameRoundTrip(t *testing.T) {
	srv := newTestServer(t, room.Config{TotalRounds: 1})
	ctx := context.Background()

	gmClient, gmID := newSession(t, srv.URL)
	playerClient, playerID := newSession(t, srv.URL)

	gmLobby := lobby.NewController(gmClient, testutil.NopLogger())
	roomID, err := gmLobby.CreateRoom(ctx, "Master", "en")
	require.NoError(t, err)

	playerLobby := lobby.NewController(playerClient, testutil.NopLogger())
	require.NoError(t, playerLobby.JoinRoom(ctx, roomID, "Ann", "en"))

	gmSync := startSync(t, gmClient, roomID, gmID)
	playerSync := startSync(t, playerClient, roomID, playerID)

	// Both start in the lobby with a populated snapshot
	require.Eventually(t, func() bool {
		st := gmSync.State()
		return st.Room != nil && len(st.Room.Users) == 2
	}, waitFor, tick)
	require.True(t, gmSync.State().IsGameMaster)
	require.False(t, playerSync.State().IsGameMaster)

	// Game start routes the game master to capture, the player to
	// waiting
	require.NoError(t, gmClient.StartGame(ctx, roomID))
	waitForScreen(t, gmSync, roomsync.ScreenCapture)
	waitForScreen(t, playerSync, roomsync.ScreenWaiting)

	// The scene photo opens the player capture window
	require.NoError(t, gmClient.UploadPhoto(ctx, roomID, []byte("scene-photo")))
	gmSync.MarkPhotoTaken()
	waitForScreen(t, playerSync, roomsync.ScreenCapture)
	waitForScreen(t, gmSync, roomsync.ScreenWaiting)

	// The player can fetch the scene clue while capturing
	clue, err := playerClient.Description(ctx, roomID)
	require.NoError(t, err)
	require.NotEmpty(t, clue)

	// Player submits both shots
	require.NoError(t, playerClient.UploadPhoto(ctx, roomID, []byte("guess-one")))
	require.NoError(t, playerClient.UploadPhoto(ctx, roomID, []byte("guess-two")))
	playerSync.MarkPhotoTaken()

	// Round complete: everyone lands on the result screen
	waitForScreen(t, gmSync, roomsync.ScreenResult)
	waitForScreen(t, playerSync, roomsync.ScreenResult)

	// The player was scored, the game master was not
	users, err := playerClient.Scores(ctx, roomID)
	require.NoError(t, err)
	scored := map[model.PlayerID]*model.Score{}
	for _, u := range users {
		scored[u.ID] = u.Score
	}
	require.NotNil(t, scored[playerID])
	require.Nil(t, scored[gmID])

	// Exiting the last players tears the room down
	require.NoError(t, playerClient.ExitRoom(ctx, roomID))
	require.NoError(t, gmClient.ExitRoom(ctx, roomID))
	_, err = gmClient.RoomSnapshot(ctx, roomID)
	require.ErrorIs(t, err, model.ErrRoomNotFound)
}

func TestGameMasterHandoverOnExit(t *testing.T) {
	srv := newTestServer(t, room.Config{})
	ctx := context.Background()

	gmClient, _ := newSession(t, srv.URL)
	gmLobby := lobby.NewController(gmClient, testutil.NopLogger())
	roomID, err := gmLobby.CreateRoom(ctx, "Master", "en")
	require.NoError(t, err)

	playerClient, playerID := newSession(t, srv.URL)
	playerLobby := lobby.NewController(playerClient, testutil.NopLogger())
	require.NoError(t, playerLobby.JoinRoom(ctx, roomID, "Ann", "en"))

	playerSync := startSync(t, playerClient, roomID, playerID)
	require.Eventually(t, func() bool {
		return playerSync.State().Room != nil
	}, waitFor, tick)

	require.NoError(t, gmClient.ExitRoom(ctx, roomID))

	// The remaining player inherits the game master role
	require.Eventually(t, func() bool {
		return playerSync.State().IsGameMaster
	}, waitFor, tick)
}
