package relay

import (
	"testing"
)

func TestRegistryAddAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Add("conn-1")

	sess, ok := r.Lookup("conn-1")
	if !ok {
		t.Fatal("expected conn-1 to be registered")
	}
	if sess.Joined() {
		t.Error("fresh connection should not be joined")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistryBind(t *testing.T) {
	tests := []struct {
		name     string
		connID   string
		room     string
		username string
		want     bool
	}{
		{"valid bind", "conn-1", "lobby", "alice", true},
		{"empty room", "conn-1", "", "alice", false},
		{"empty username", "conn-1", "lobby", "", false},
		{"unknown connection", "conn-2", "lobby", "alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			r.Add("conn-1")

			got := r.Bind(tt.connID, tt.room, tt.username)
			if got != tt.want {
				t.Errorf("Bind(%q, %q, %q) = %v, want %v",
					tt.connID, tt.room, tt.username, got, tt.want)
			}
		})
	}
}

func TestRegistryBindBothFieldsAtomic(t *testing.T) {
	r := NewRegistry()
	r.Add("conn-1")

	if r.Bind("conn-1", "lobby", "") {
		t.Fatal("Bind with empty username should fail")
	}

	// A failed bind must not leave a partial session behind.
	sess, _ := r.Lookup("conn-1")
	if sess.Joined() {
		t.Error("failed bind should leave the session unjoined")
	}
	if sess.Room != "" {
		t.Errorf("failed bind stored room %q", sess.Room)
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.Add("conn-1")
	r.Bind("conn-1", "lobby", "alice")

	sess, ok := r.Remove("conn-1")
	if !ok {
		t.Fatal("expected Remove to find conn-1")
	}
	if sess.Room != "lobby" || sess.Username != "alice" {
		t.Errorf("Remove returned session %+v", sess)
	}
	if r.Count() != 0 {
		t.Errorf("Count() = %d after remove, want 0", r.Count())
	}

	if _, ok := r.Remove("conn-1"); ok {
		t.Error("second Remove should report missing connection")
	}
}

func TestRegistryRebind(t *testing.T) {
	r := NewRegistry()
	r.Add("conn-1")
	r.Bind("conn-1", "lobby", "alice")
	r.Bind("conn-1", "games", "alice")

	sess, _ := r.Lookup("conn-1")
	if sess.Room != "games" {
		t.Errorf("room after rebind = %q, want %q", sess.Room, "games")
	}
}
