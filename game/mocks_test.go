package game

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cwchanap/grus-server/domain"
)

// --- NetworkSession ---

type MockNetworkSession struct {
	mock.Mock
}

func (m *MockNetworkSession) Close(errCode string) {
	m.Called(errCode)
}

func (m *MockNetworkSession) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockNetworkSession) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetworkSession) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- RandomWordsGenerator ---

type MockRandomWordsGenerator struct {
	mock.Mock
}

func (m *MockRandomWordsGenerator) Generate(count int) []string {
	args := m.Called(count)
	return args.Get(0).([]string)
}

// --- UniqueIdGenerator ---

type MockUniqueIdGenerator struct {
	mock.Mock
}

func (m *MockUniqueIdGenerator) Generate() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockUniqueIdGenerator) Dispose(id string) {
	m.Called(id)
}

// --- PeriodicTickerChannelCreator ---

type MockPeriodicTickerChannelCreator struct {
	mock.Mock
}

func (m *MockPeriodicTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	args := m.Called(duration)
	return args.Get(0).(chan time.Time)
}

// --- Room ---

type MockRoom struct {
	mock.Mock
}

func (m *MockRoom) PingPlayers() {
	m.Called()
}

func (m *MockRoom) Send(ctx context.Context, e clientEnvelope) {
	m.Called(ctx, e)
}

func (m *MockRoom) RemoveMe(ctx context.Context, p Player) {
	m.Called(ctx, p)
}

func (m *MockRoom) RequestJoin(jreq roomJoinRequest) {
	m.Called(jreq)
}

func (m *MockRoom) Tick(now time.Time) {
	m.Called(now)
}

func (m *MockRoom) GameLoop() {
	m.Called()
}

func (m *MockRoom) CloseAndRelease() {
	m.Called()
}

func (m *MockRoom) Description() RoomDescription {
	args := m.Called()
	return args.Get(0).(RoomDescription)
}

func (m *MockRoom) SetParentLobby(l Lobby) {
	m.Called(l)
}

func (m *MockRoom) SetId(id string) {
	m.Called(id)
}

// --- Lobby ---

type MockLobby struct {
	mock.Mock
}

func (m *MockLobby) RequestAddAndRunRoom(ctx context.Context, r Room) {
	m.Called(ctx, r)
}

func (m *MockLobby) ForwardPlayerJoinRequestToRoom(ctx context.Context, jreq roomJoinRequest) {
	m.Called(ctx, jreq)
}

func (m *MockLobby) RequestUpdateDescription(desc RoomDescription) {
	m.Called(desc)
}

func (m *MockLobby) RemoveRoom(roomId string) {
	m.Called(roomId)
}

func (m *MockLobby) GetPublicGames(ctx context.Context) []RoomDescription {
	args := m.Called(ctx)
	return args.Get(0).([]RoomDescription)
}

// --- recording player ---

// fakePlayer records every frame the room sends it so scenario tests can
// assert on the outbound traffic directly.
type fakePlayer struct {
	id       string
	username string
	room     Room
	sendErr  error
	released bool
	sent     [][]byte
}

func newFakePlayer(id, username string) *fakePlayer {
	return &fakePlayer{id: id, username: username}
}

func (p *fakePlayer) Id() string              { return p.id }
func (p *fakePlayer) Username() string        { return p.username }
func (p *fakePlayer) SetRoom(r Room)          { p.room = r }
func (p *fakePlayer) Ping() error             { return nil }
func (p *fakePlayer) CancelAndRelease()       { p.released = true }
func (p *fakePlayer) Send(data []byte) error {
	if p.sendErr != nil {
		return p.sendErr
	}
	p.sent = append(p.sent, data)
	return nil
}

// packets decodes everything sent so far.
func (p *fakePlayer) packets() []ServerMessage {
	out := make([]ServerMessage, 0, len(p.sent))
	for _, raw := range p.sent {
		var msg ServerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func (p *fakePlayer) packetsOfType(msgType string) []ServerMessage {
	var out []ServerMessage
	for _, msg := range p.packets() {
		if msg.Type == msgType {
			out = append(out, msg)
		}
	}
	return out
}

func (p *fakePlayer) reset() {
	p.sent = nil
}

// --- in-memory stores ---

// memStateStore is a map-backed StateStore; TTLs are recorded but never
// enforced, which is all the room tests need.
type memStateStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemStateStore() *memStateStore {
	return &memStateStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *memStateStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	return data, nil
}

func (s *memStateStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *memStateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	delete(s.ttls, key)
	return nil
}

type memPlayerStore struct {
	mu      sync.Mutex
	rows    map[string]domain.Player
	deleted []string
}

func newMemPlayerStore() *memPlayerStore {
	return &memPlayerStore{rows: map[string]domain.Player{}}
}

func (s *memPlayerStore) UpsertPlayer(_ context.Context, player domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[player.Id+"/"+player.RoomId] = player
	return nil
}

func (s *memPlayerStore) DeletePlayer(_ context.Context, playerId, roomId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, playerId+"/"+roomId)
	s.deleted = append(s.deleted, playerId)
	return nil
}

type memRoomAdmin struct {
	mu          sync.Mutex
	created     []domain.Room
	deactivated []string
}

func (s *memRoomAdmin) CreateRoom(_ context.Context, room domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, room)
	return nil
}

func (s *memRoomAdmin) DeactivateRoom(_ context.Context, roomId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivated = append(s.deactivated, roomId)
	return nil
}
