package presence

import (
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/typerush-presence/domain/presence"
	"github.com/example/typerush-presence/events"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any)         {}
func (m *mockLogger) Info(_ string, _ ...any)          {}
func (m *mockLogger) Warn(_ string, _ ...any)          {}
func (m *mockLogger) Error(_ string, _ ...any)         {}
func (m *mockLogger) With(_ ...any) types.Logger       { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }
func (m *mockLogger) WithError(_ error) types.Logger   { return m }

// debugLogger records Debug messages and discards everything else.
type debugLogger struct {
	mockLogger
	mu       sync.Mutex
	messages []string
}

func (l *debugLogger) Debug(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *debugLogger) debugged() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

var fixedNow = time.Date(2024, time.March, 9, 15, 4, 5, 0, time.Local)

func fixedClock() time.Time { return fixedNow }

const fixedTime = "3:04:05 PM"

// call is one invocation of a Gateway send primitive.
type call struct {
	scope   string // "emit", "room" or "all"
	target  string
	except  string
	event   string
	payload any
}

// delivery is an event as seen by a single connection.
type delivery struct {
	event   string
	payload any
}

// recordingGateway is an in-memory Gateway that resolves audiences the way
// the websocket hub does and records what every connection receives.
type recordingGateway struct {
	mu        sync.Mutex
	connected map[string]bool
	subs      map[string]map[string]bool
	inbox     map[string][]delivery
	calls     []call
}

func newRecordingGateway(connIDs ...string) *recordingGateway {
	g := &recordingGateway{
		connected: make(map[string]bool),
		subs:      make(map[string]map[string]bool),
		inbox:     make(map[string][]delivery),
	}
	for _, id := range connIDs {
		g.connected[id] = true
	}
	return g
}

// drop mimics the transport closing a connection: it leaves every channel.
func (g *recordingGateway) drop(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connected, connID)
	for _, members := range g.subs {
		delete(members, connID)
	}
}

func (g *recordingGateway) Emit(connID, event string, payload any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call{scope: "emit", target: connID, event: event, payload: payload})
	if g.connected[connID] {
		g.inbox[connID] = append(g.inbox[connID], delivery{event: event, payload: payload})
	}
}

func (g *recordingGateway) Subscribe(connID, room string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected[connID] {
		return
	}
	if g.subs[room] == nil {
		g.subs[room] = make(map[string]bool)
	}
	g.subs[room][connID] = true
}

func (g *recordingGateway) Unsubscribe(connID, room string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.subs[room], connID)
}

func (g *recordingGateway) ToRoom(room, exceptID, event string, payload any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call{scope: "room", target: room, except: exceptID, event: event, payload: payload})
	for _, id := range sortedKeys(g.subs[room]) {
		if id == exceptID {
			continue
		}
		g.inbox[id] = append(g.inbox[id], delivery{event: event, payload: payload})
	}
}

func (g *recordingGateway) ToAll(event string, payload any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call{scope: "all", event: event, payload: payload})
	for _, id := range sortedKeys(g.connected) {
		g.inbox[id] = append(g.inbox[id], delivery{event: event, payload: payload})
	}
}

func (g *recordingGateway) received(connID string) []delivery {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]delivery(nil), g.inbox[connID]...)
}

func (g *recordingGateway) recordedCalls() []call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]call(nil), g.calls...)
}

func (g *recordingGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inbox = make(map[string][]delivery)
	g.calls = nil
}

// texts returns the text of every "message" event connID received.
func (g *recordingGateway) texts(connID string) []string {
	var out []string
	for _, d := range g.received(connID) {
		if d.event != domain.EventMessage {
			continue
		}
		if msg, ok := d.payload.(domain.Message); ok {
			if text, ok := msg.Text.(string); ok {
				out = append(out, text)
			}
		}
	}
	return out
}

// last returns the most recent payload of event received by connID.
func (g *recordingGateway) last(connID, event string) (any, bool) {
	deliveries := g.received(connID)
	for i := len(deliveries) - 1; i >= 0; i-- {
		if deliveries[i].event == event {
			return deliveries[i].payload, true
		}
	}
	return nil, false
}

func (g *recordingGateway) events(connID string) []string {
	var out []string
	for _, d := range g.received(connID) {
		out = append(out, d.event)
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// recordingPublisher captures domain events.
type recordingPublisher struct {
	mu       sync.Mutex
	joined   []events.SessionJoinedEvent
	left     []events.SessionLeftEvent
	progress []events.ProgressReportedEvent
}

func (p *recordingPublisher) SessionJoined(e events.SessionJoinedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.joined = append(p.joined, e)
}

func (p *recordingPublisher) SessionLeft(e events.SessionLeftEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.left = append(p.left, e)
}

func (p *recordingPublisher) ProgressReported(e events.ProgressReportedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress = append(p.progress, e)
}

type harness struct {
	registry    *Registry
	gateway     *recordingGateway
	publisher   *recordingPublisher
	coordinator *Coordinator
	relay       *Relay
	router      *Router
}

func newHarness(t *testing.T, connIDs ...string) *harness {
	t.Helper()

	registry := NewRegistry()
	gateway := newRecordingGateway(connIDs...)
	publisher := &recordingPublisher{}
	logger := &mockLogger{}
	messages := NewMessageBuilder("Admin", fixedClock)
	coordinator := NewCoordinator(registry, gateway, messages, publisher, "TypeRush", logger)
	relay := NewRelay(registry, gateway, messages, publisher, logger)

	return &harness{
		registry:    registry,
		gateway:     gateway,
		publisher:   publisher,
		coordinator: coordinator,
		relay:       relay,
		router:      NewRouter(coordinator, relay, logger),
	}
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %v: %v", v, err)
	}
	return data
}

func names(sessions []domain.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Name)
	}
	return out
}
