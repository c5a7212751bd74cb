package game

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/Benjythebee/stock-sim-server/internal/metrics"
)

func TestManagerCreateAndRelease(t *testing.T) {
	m := NewManager(zerolog.Nop())
	t.Cleanup(m.Shutdown)

	r := m.GetOrCreate("alpha")
	if m.GetOrCreate("alpha") != r {
		t.Fatalf("expected the same room on repeat lookup")
	}
	if _, ok := m.Get("beta"); ok {
		t.Fatalf("expected Get not to create rooms")
	}

	// The last seat expiring disposes the room and drops it from the
	// registry.
	conn, id := joinPlayer(t, r, "alice")
	r.Disconnect(id, conn)
	r.call(func() { r.expireClient(id) })
	if _, ok := m.Get("alpha"); ok {
		t.Fatalf("expected alpha released after emptying")
	}
}

func TestManagerDirectory(t *testing.T) {
	m := NewManager(zerolog.Nop())
	t.Cleanup(m.Shutdown)

	ra := m.GetOrCreate("alpha")
	m.GetOrCreate("beta")
	joinPlayer(t, ra, "alice")
	joinPlayer(t, ra, "bob")
	if _, ok := ra.Join(&stubConn{}, "watcher", true, ""); !ok {
		t.Fatalf("spectator join failed")
	}

	infos := m.OpenRooms()
	if len(infos) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(infos))
	}
	if infos[0].ID != "alpha" || infos[1].ID != "beta" {
		t.Errorf("expected sorted directory, got %+v", infos)
	}
	// Spectators do not count as players.
	if infos[0].Players != 2 || infos[1].Players != 0 {
		t.Errorf("expected player counts 2 and 0, got %+v", infos)
	}
	if infos[0].Started {
		t.Errorf("expected alpha not started")
	}
}

func TestManagerShutdown(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ra := m.GetOrCreate("alpha")
	m.GetOrCreate("beta")
	joinPlayer(t, ra, "alice")

	m.Shutdown()
	if got := len(m.OpenRooms()); got != 0 {
		t.Fatalf("expected empty directory after shutdown, got %d", got)
	}
	if _, ok := ra.Join(&stubConn{}, "bob", false, ""); ok {
		t.Fatalf("expected join refused after shutdown")
	}
}

func TestManagerShutdownAccountsStoppedRooms(t *testing.T) {
	m := NewManager(zerolog.Nop())
	base := testutil.ToFloat64(metrics.OpenRooms)

	ra := m.GetOrCreate("alpha")
	m.GetOrCreate("beta")
	if got := testutil.ToFloat64(metrics.OpenRooms); got != base+2 {
		t.Fatalf("expected open rooms gauge %v, got %v", base+2, got)
	}

	// alpha's loop stops while the room is still in the registry, the
	// state a room emptying out mid-shutdown leaves behind.
	ra.Shutdown()

	m.Shutdown()
	if got := testutil.ToFloat64(metrics.OpenRooms); got != base {
		t.Fatalf("expected open rooms gauge back at %v after shutdown, got %v", base, got)
	}
}
