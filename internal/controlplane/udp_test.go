package controlplane

import (
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/Darkone83/XBOX-RGB/internal/config"
	"github.com/Darkone83/XBOX-RGB/internal/model"
)

func TestCheckKeyOpenWhenNoPSKConfigured(t *testing.T) {
	s := &Server{psk: ""}
	if !s.checkKey("anything") {
		t.Errorf("checkKey should accept any key when no PSK is configured")
	}
	if !s.checkKey("") {
		t.Errorf("checkKey should accept an empty key when no PSK is configured")
	}
}

func TestCheckKeyRequiresExactMatch(t *testing.T) {
	s := &Server{psk: "secret"}
	if s.checkKey("wrong") {
		t.Errorf("checkKey should reject a mismatched key")
	}
	if !s.checkKey("secret") {
		t.Errorf("checkKey should accept the configured key")
	}
}

func TestResolvePatchJSONPrefersNestedCfg(t *testing.T) {
	speed := uint8(9)
	req := model.Request{Op: "preview", Cfg: &model.RawConfigPatch{Speed: &speed}}
	raw := []byte(`{"op":"preview","cfg":{"speed":9}}`)

	got := resolvePatchJSON(raw, req)

	var patch model.RawConfigPatch
	if err := json.Unmarshal(got, &patch); err != nil {
		t.Fatalf("resolved JSON doesn't decode: %v", err)
	}
	if patch.Speed == nil || *patch.Speed != 9 {
		t.Fatalf("Speed = %v, want 9", patch.Speed)
	}
}

func TestResolvePatchJSONFallsBackToRawWhenNoCfg(t *testing.T) {
	req := model.Request{Op: "preview"}
	raw := []byte(`{"op":"preview","key":"x","speed":42}`)

	got := resolvePatchJSON(raw, req)

	var patch model.RawConfigPatch
	if err := json.Unmarshal(got, &patch); err != nil {
		t.Fatalf("resolved JSON doesn't decode: %v", err)
	}
	if patch.Speed == nil || *patch.Speed != 42 {
		t.Fatalf("Speed = %v, want 42 from flat top-level fields", patch.Speed)
	}
}

// newTestServer opens a Server on an ephemeral port plus a
// loopback-bound client UDPConn
// that handleJSON can reply to directly, without going through
// receiveLoop.
func newTestServer(t *testing.T) (*Server, *net.UDPAddr, *net.UDPConn) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rgbctrl.json")
	store := config.NewStore(path)

	s, err := NewServer(Options{DeviceName: "test-ring", BuildVersion: "test"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	s.Attach(store)
	t.Cleanup(func() { _ = s.conn.Close() })

	client, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("client ListenUDP: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return s, client.LocalAddr().(*net.UDPAddr), client
}

func readEnvelope(t *testing.T, client *net.UDPConn) model.Envelope {
	t.Helper()
	buf := make([]byte, maxDatagram)
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := client.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("no reply received: %v", err)
	}
	var env model.Envelope
	if err := json.Unmarshal(buf[:n], &env); err != nil {
		t.Fatalf("reply isn't a valid envelope: %v", err)
	}
	return env
}

func TestHandleJSONGetReturnsCurrentConfig(t *testing.T) {
	s, addr, client := newTestServer(t)

	req := model.Request{Op: "get"}
	data, _ := json.Marshal(req)
	s.handleJSON(addr, data)

	env := readEnvelope(t, client)
	if !env.Ok || env.Cfg == nil {
		t.Fatalf("handleJSON(get) reply = %+v, want ok with cfg", env)
	}
}

func TestHandleJSONRejectsBadKey(t *testing.T) {
	s, addr, client := newTestServer(t)
	s.psk = "secret"

	req := model.Request{Op: "get", Key: "wrong"}
	data, _ := json.Marshal(req)
	s.handleJSON(addr, data)

	env := readEnvelope(t, client)
	if env.Ok {
		t.Fatalf("handleJSON with wrong key should reply ok=false, got %+v", env)
	}
}

func TestHandleJSONUnknownOp(t *testing.T) {
	s, addr, client := newTestServer(t)

	req := model.Request{Op: "bogus"}
	data, _ := json.Marshal(req)
	s.handleJSON(addr, data)

	env := readEnvelope(t, client)
	if env.Ok {
		t.Fatalf("handleJSON with unknown op should reply ok=false, got %+v", env)
	}
}

func TestHandleJSONResetQueuesPendingWork(t *testing.T) {
	s, addr, client := newTestServer(t)

	req := model.Request{Op: "reset"}
	data, _ := json.Marshal(req)
	s.handleJSON(addr, data)

	_ = readEnvelope(t, client)

	s.pending.mu.Lock()
	queued := s.pending.doReset
	s.pending.mu.Unlock()
	if !queued {
		t.Fatalf("handleJSON(reset) should enqueue a pending reset")
	}
}
