package game

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) Exists(ctx context.Context, roomId string) (bool, error) {
	args := m.Called(ctx, roomId)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoomStore) HasCapacity(ctx context.Context, roomId string) (bool, error) {
	args := m.Called(ctx, roomId)
	return args.Bool(0), args.Error(1)
}

// stubVerifier accepts one fixed token.
type stubVerifier struct {
	token    string
	id       string
	username string
}

func (v stubVerifier) Verify(token string) (string, string, error) {
	if token != v.token {
		return "", "", errors.New("bad token")
	}
	return v.id, v.username, nil
}

func newHandlerFixture(lobby *MockLobby, roomStore *MockRoomStore) (*GameHandler, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	idGen := NewIdGen()
	h := NewGameHandler(lobby, roomStore, &idGen, stubVerifier{token: "good", id: "p1", username: "naruto"}, RoomDeps{
		Registry: NewRegistry(),
		Limiter:  NewRateLimiter(),
		States:   newMemStateStore(),
		Players:  newMemPlayerStore(),
		Rooms:    &memRoomAdmin{},
		Words:    NewWordBank(),
	})

	r := gin.New()
	group := r.Group("/game")
	group.Use(h.RequireSessionMiddleware())
	group.GET("/create", h.CreateGameHandler)
	group.GET("/join/:roomid", h.JoinGameHandler)
	group.GET("/games", h.GetPublicGamesHandler)
	return h, r
}

func TestRequireSessionMiddleware(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		path         string
		cookie       string
		expectedCode int
	}{
		{"no token", "/game/games", "", http.StatusUnauthorized},
		{"bad token in cookie", "/game/games", "forged", http.StatusUnauthorized},
		{"good token in cookie", "/game/games", "good", http.StatusOK},
		{"good token in query", "/game/games?token=good", "", http.StatusOK},
		{"bad token in query", "/game/games?token=forged", "", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lobby := &MockLobby{}
			lobby.On("GetPublicGames", mock.Anything).Return([]RoomDescription{})
			_, r := newHandlerFixture(lobby, &MockRoomStore{})

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session", Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedCode, w.Code)
		})
	}
}

func TestCreateGameHandler_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		query        string
		expectedCode int
		expectedBody string
	}{
		{"maxPlayers too low", "maxPlayers=1", http.StatusBadRequest, "maxPlayers must be at least 2"},
		{"maxPlayers too high", "maxPlayers=21", http.StatusBadRequest, "maxPlayers cannot exceed 20"},
		{"maxPlayers not a number", "maxPlayers=lots", http.StatusBadRequest, "maxPlayers must be at least 2"},
		{"rounds too low", "rounds=0", http.StatusBadRequest, "rounds must be at least 1"},
		{"rounds too high", "rounds=11", http.StatusBadRequest, "rounds cannot exceed 10"},
		{"duration too short", "roundDuration=29", http.StatusBadRequest, "roundDuration must be at least 30 seconds"},
		{"duration too long", "roundDuration=301", http.StatusBadRequest, "roundDuration cannot exceed 300 seconds"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, r := newHandlerFixture(&MockLobby{}, &MockRoomStore{})

			req := httptest.NewRequest(http.MethodGet, "/game/create?token=good&"+tc.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedCode, w.Code)
			assert.Contains(t, w.Body.String(), tc.expectedBody)
		})
	}
}

func TestJoinGameHandler_RoomChecks(t *testing.T) {
	t.Parallel()

	t.Run("unknown room is a 404", func(t *testing.T) {
		roomStore := &MockRoomStore{}
		roomStore.On("Exists", mock.Anything, "ABCDEF").Return(false, nil)
		_, r := newHandlerFixture(&MockLobby{}, roomStore)

		req := httptest.NewRequest(http.MethodGet, "/game/join/ABCDEF?token=good", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "room-not-found")
	})

	t.Run("full room is a 409", func(t *testing.T) {
		roomStore := &MockRoomStore{}
		roomStore.On("Exists", mock.Anything, "ABCDEF").Return(true, nil)
		roomStore.On("HasCapacity", mock.Anything, "ABCDEF").Return(false, nil)
		_, r := newHandlerFixture(&MockLobby{}, roomStore)

		req := httptest.NewRequest(http.MethodGet, "/game/join/ABCDEF?token=good", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "room-full")
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		roomStore := &MockRoomStore{}
		roomStore.On("Exists", mock.Anything, "ABCDEF").Return(false, errors.New("db down"))
		_, r := newHandlerFixture(&MockLobby{}, roomStore)

		req := httptest.NewRequest(http.MethodGet, "/game/join/ABCDEF?token=good", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetPublicGamesHandler(t *testing.T) {
	t.Parallel()
	lobby := &MockLobby{}
	lobby.On("GetPublicGames", mock.Anything).Return([]RoomDescription{
		{Id: "ABCDEF", Name: "konoha", PlayersCount: 2, MaxPlayers: 8},
	})
	_, r := newHandlerFixture(lobby, &MockRoomStore{})

	req := httptest.NewRequest(http.MethodGet, "/game/games?token=good", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"konoha"`)
	assert.Contains(t, w.Body.String(), `"ABCDEF"`)
}
