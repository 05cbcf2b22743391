// Package controlplane implements the Control Plane (spec.md §4.8-4.9):
// a UDP protocol server answering discover/get/preview/save/reset/
// setCounts ops (plus a plain-text RGBDISC? fallback), and a small HTTP
// surface serving the same config operations to a browser. Grounded on
// original_source/src/RGBudp.cpp.
package controlplane

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/Darkone83/XBOX-RGB/internal/config"
	"github.com/Darkone83/XBOX-RGB/internal/model"
)

const maxDatagram = 1600

// Server is the UDP half of the Control Plane: one listening socket,
// a coalescing pending-work queue, a quiet-window guard, and a presence
// advertiser, all driven from a single receive loop plus a periodic
// maintenance tick.
type Server struct {
	conn *net.UDPConn

	store *config.Store

	port         uint16
	psk          string
	deviceName   string
	buildVersion string

	pendingBudget time.Duration

	pending *pendingQueue
	quiet   *QuietWindow
	advert  *advertiser

	selfIPFn func() string
	selfMAC  string
}

// Options configures NewServer. A zero PendingBudget takes the 1500µs
// default; other fields are used as given (Port 0 binds an ephemeral
// port).
type Options struct {
	Port          uint16
	PSK           string
	DeviceName    string
	BuildVersion  string
	PendingBudget time.Duration
}

// NewServer opens the UDP listening socket and returns a ready-to-run
// Server. The socket is bound before Run is called so callers can
// detect a port-in-use error before committing to the rest of startup.
func NewServer(opts Options) (*Server, error) {
	if opts.PendingBudget <= 0 {
		opts.PendingBudget = 1500 * time.Microsecond
	}
	addr := &net.UDPAddr{Port: int(opts.Port)}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		conn:          conn,
		port:          opts.Port,
		psk:           opts.PSK,
		deviceName:    opts.DeviceName,
		buildVersion:  opts.BuildVersion,
		pendingBudget: opts.PendingBudget,
		pending:       &pendingQueue{},
		quiet:         &QuietWindow{},
		advert:        newAdvertiser(),
		selfIPFn:      primaryIPv4,
		selfMAC:       primaryMAC(),
	}, nil
}

// Attach binds the Server to a Store it will read and mutate; kept
// separate from NewServer so the caller can open the socket (and fail
// fast on a bad port) before the rest of the dependency graph exists.
func (s *Server) Attach(store *config.Store) { s.store = store }

// EnterQuietWindow defers heavy JSON handling of the next inbound
// packet for at least d. This is the entrypoint a future SMBus driver
// calls before starting a transaction, matching
// original_source/src/RGBudp.cpp's enterSmbusQuietUs; nothing in this
// module calls it yet since SMBus itself is out of scope, but the
// Server behaves correctly as soon as something does.
func (s *Server) EnterQuietWindow(d time.Duration) { s.quiet.Enter(d) }

// Run drives the Server until ctx is canceled: a receive loop handling
// inbound packets, and a maintenance loop draining pending work and
// sending presence advertisements.
func (s *Server) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.receiveLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.maintenanceLoop(ctx)
	}()
	<-ctx.Done()
	_ = s.conn.Close()
	wg.Wait()
	return ctx.Err()
}

func (s *Server) receiveLoop(ctx context.Context) {
	buf := make([]byte, maxDatagram)
	for {
		if ctx.Err() != nil {
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(250 * time.Millisecond))
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			log.Printf("rgbctrl: udp read failed: %v", err)
			continue
		}
		if n <= 0 || n >= maxDatagram {
			continue
		}
		data := append([]byte(nil), buf[:n]...)
		s.handlePacket(addr, data)
	}
}

func (s *Server) maintenanceLoop(ctx context.Context) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.advert.maybe(time.Now(), s.selfIPFn(), s.broadcastDiscover)
			s.pending.drain(s.pendingBudget, s.quiet, s.actions())
		}
	}
}

func (s *Server) actions() pendingActions {
	return pendingActions{
		handleRaw: func(addr *net.UDPAddr, data []byte) { s.handleJSON(addr, data) },
		reset: func() {
			if err := s.store.Reset(); err != nil {
				log.Printf("rgbctrl: pending reset failed: %v", err)
			}
		},
		setCounts: func(c [4]uint16) { s.store.SetCounts(c) },
		applyCfg: func(js []byte, isSave bool) {
			var err error
			if isSave {
				err = s.store.ApplySave(js)
			} else {
				err = s.store.ApplyPreview(js)
			}
			if err != nil {
				log.Printf("rgbctrl: pending config apply failed: %v", err)
			}
		},
	}
}

func (s *Server) handlePacket(addr *net.UDPAddr, data []byte) {
	if len(data) == 0 {
		return
	}
	if data[0] != '{' {
		s.handlePlain(addr, data)
		return
	}
	if s.quiet.Active() {
		s.pending.queueRaw(addr, data)
		return
	}
	s.handleJSON(addr, data)
}

func (s *Server) handlePlain(addr *net.UDPAddr, data []byte) {
	text := strings.TrimSpace(string(data))
	if text == "RGBDISC?" {
		s.sendText(addr, "RGBDISC! "+string(s.discoverJSON()))
		return
	}
	s.sendEnvelope(addr, model.Envelope{Ok: false, Op: "raw", Err: "unknown text"})
}

func (s *Server) handleJSON(addr *net.UDPAddr, data []byte) {
	var req model.Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendEnvelope(addr, model.Envelope{Ok: false, Op: "parse", Err: "bad json"})
		return
	}
	if !s.checkKey(req.Key) {
		s.sendEnvelope(addr, model.Envelope{Ok: false, Op: "auth", Err: "bad key"})
		return
	}
	if req.Op == "" {
		s.sendEnvelope(addr, model.Envelope{Ok: false, Op: "op", Err: "missing op"})
		return
	}

	switch req.Op {
	case "discover":
		s.sendRaw(addr, s.discoverJSON())
	case "get":
		view := s.store.View()
		s.sendEnvelope(addr, model.Envelope{Ok: true, Op: "get", Cfg: &view})
	case "preview":
		s.pending.queueCfg(resolvePatchJSON(data, req), false)
		s.sendEnvelope(addr, model.Envelope{Ok: true, Op: "preview"})
	case "save":
		s.pending.queueCfg(resolvePatchJSON(data, req), true)
		s.sendEnvelope(addr, model.Envelope{Ok: true, Op: "save"})
	case "reset":
		s.pending.queueReset()
		s.sendEnvelope(addr, model.Envelope{Ok: true, Op: "reset"})
	case "setCounts":
		var probe struct {
			C []json.RawMessage `json:"c"`
		}
		if req.Counts == nil || json.Unmarshal(data, &probe) != nil || len(probe.C) < 4 {
			s.sendEnvelope(addr, model.Envelope{Ok: false, Op: "setCounts", Err: "need 4 ints"})
			return
		}
		s.pending.queueCounts(*req.Counts)
		s.sendEnvelope(addr, model.Envelope{Ok: true, Op: "setCounts"})
	default:
		s.sendEnvelope(addr, model.Envelope{Ok: false, Op: "op", Err: "unknown op"})
	}
}

// resolvePatchJSON normalizes an inbound preview/save packet to the
// bare config-patch JSON the Store expects: when the request carries a
// nested "cfg" object, that object is what gets applied; otherwise the
// config fields are assumed to sit at the top level alongside op/key
// (which Store's RawConfigPatch decode simply ignores as unknown
// fields). Grounded on RGBudp.cpp's
// `doc.containsKey("cfg") ? serializeJson(doc["cfg"]) : serializeJson(doc)`.
func resolvePatchJSON(raw []byte, req model.Request) []byte {
	if req.Cfg != nil {
		b, err := json.Marshal(req.Cfg)
		if err == nil {
			return b
		}
	}
	return raw
}

func (s *Server) checkKey(key string) bool {
	if s.psk == "" {
		return true
	}
	return key == s.psk
}

func (s *Server) discoverJSON() []byte {
	reply := model.DiscoverReply{
		Ok:   true,
		Op:   "discover",
		Name: s.deviceName,
		Ver:  s.buildVersion,
		Port: s.port,
		IP:   s.selfIPFn(),
		MAC:  s.selfMAC,
	}
	b, _ := json.Marshal(reply)
	return b
}

func (s *Server) broadcastDiscover() {
	dst := &net.UDPAddr{IP: net.IPv4bcast, Port: int(s.port)}
	js := s.discoverJSON()
	_, _ = s.conn.WriteToUDP(js, dst)
	_, _ = s.conn.WriteToUDP([]byte("RGBDISC! "+string(js)), dst)
}

func (s *Server) sendRaw(addr *net.UDPAddr, b []byte) {
	_, _ = s.conn.WriteToUDP(b, addr)
}

func (s *Server) sendText(addr *net.UDPAddr, text string) {
	_, _ = s.conn.WriteToUDP([]byte(text), addr)
}

func (s *Server) sendEnvelope(addr *net.UDPAddr, env model.Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		return
	}
	s.sendRaw(addr, b)
}

func primaryIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}

func primaryMAC() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagLoopback != 0 || len(ifc.HardwareAddr) == 0 {
			continue
		}
		return ifc.HardwareAddr.String()
	}
	return ""
}
