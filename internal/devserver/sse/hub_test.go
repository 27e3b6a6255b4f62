package sse

import (
	"testing"
	"time"

	"github.com/scene-hunter/scenehunter/internal/model"
	"github.com/scene-hunter/scenehunter/internal/testutil"
)

func TestFormatFrame(t *testing.T) {
	got := formatFrame([]byte(`{"message":"update number of users"}`))
	want := "data: {\"message\":\"update number of users\"}\n\n"
	if string(got) != want {
		t.Errorf("formatFrame got %q, want %q", string(got), want)
	}
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	hub := NewHub("123456", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient("player1")
	hub.Register(client)

	// Give the hub time to process registration
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.BroadcastEvent(model.GameEvent{Kind: model.EventNumberOfUsers})

	select {
	case msg := <-client.send:
		ev, err := model.ParseEvent([]byte(stripFrame(t, string(msg))))
		if err != nil {
			t.Fatalf("client received undecodable frame %q: %v", string(msg), err)
		}
		if ev.Kind != model.EventNumberOfUsers {
			t.Errorf("client received kind %q, want %q", ev.Kind, model.EventNumberOfUsers)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func stripFrame(t *testing.T, frame string) string {
	t.Helper()
	if len(frame) < 8 || frame[:6] != "data: " || frame[len(frame)-2:] != "\n\n" {
		t.Fatalf("malformed frame %q", frame)
	}
	return frame[6 : len(frame)-2]
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub("123456", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient("player1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
}

func TestHubBroadcastToMultipleClients(t *testing.T) {
	hub := NewHub("123456", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	clients := []*Client{NewClient("p1"), NewClient("p2"), NewClient("p3")}
	for _, c := range clients {
		hub.Register(c)
	}
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 3 {
		t.Errorf("ClientCount() = %d, want 3", hub.ClientCount())
	}

	hub.BroadcastEvent(model.GameEvent{Kind: model.EventGameMaster})

	for i, c := range clients {
		select {
		case <-c.send:
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client %d did not receive message", i+1)
		}
	}
}

func TestHubUnregisterAfterCloseDoesNotBlock(t *testing.T) {
	hub := NewHub("123456", testutil.NopLogger())
	go hub.Run()

	client := NewClient("player1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Close()
	time.Sleep(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		hub.Unregister(client)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Unregister blocked after hub close")
	}
}

func TestHubRegisterAfterCloseDoesNotBlock(t *testing.T) {
	hub := NewHub("123456", testutil.NopLogger())
	go hub.Run()
	hub.Close()
	time.Sleep(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		hub.Register(NewClient("player1"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Register blocked after hub close")
	}
}

func TestHubManagerGetOrCreateHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	hub1 := manager.GetOrCreateHub("111111")
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}

	hub2 := manager.GetOrCreateHub("111111")
	if hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same room")
	}

	hub3 := manager.GetOrCreateHub("222222")
	if hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different room")
	}

	manager.RemoveHub("111111")
	manager.RemoveHub("222222")
}

func TestHubManagerBroadcastWithoutHubIsNoop(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	// Must not panic or create a hub
	manager.Broadcast("999999", model.GameEvent{Kind: model.EventNumberOfUsers})
	if manager.GetHub("999999") != nil {
		t.Error("Broadcast created a hub for an unknown room")
	}
}
