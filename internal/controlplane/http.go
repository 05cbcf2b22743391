package controlplane

import (
	"encoding/json"
	"html/template"
	"io"
	"log"
	"net/http"

	"github.com/Darkone83/XBOX-RGB/internal/config"
)

const maxBodyBytes = 1 << 16

// pageTemplate is the embedded control page. It is deliberately plain:
// a boot snapshot of the config plus enough script to call the four
// JSON endpoints below. Grounded on
// original_source/src/RGBCtrl.cpp's INDEX_HTML (embedded page, %%BASE%%/
// %%BOOTJSON%%/%%VERSION%%/%%COPYRIGHT%% placeholders), reimplemented
// with html/template instead of raw String::replace.
var pageTemplate = template.Must(template.New("rgbctrl").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.DeviceName}} control</title>
</head>
<body>
<h1>{{.DeviceName}}</h1>
<pre id="boot">{{.BootJSON}}</pre>
<p>{{.BuildVersion}} &middot; {{.Copyright}}</p>
<script>
const BASE = {{.Base}};
async function ledconfig() { return (await fetch(BASE + "/api/ledconfig")).json(); }
async function ledpreview(cfg) {
  return (await fetch(BASE + "/api/ledpreview", {method:"POST", body: JSON.stringify(cfg)})).json();
}
async function ledsave(cfg) {
  return (await fetch(BASE + "/api/ledsave", {method:"POST", body: JSON.stringify(cfg)})).json();
}
async function ledreset() { return (await fetch(BASE + "/api/ledreset", {method:"POST"})).json(); }
</script>
</body>
</html>
`))

// Handler builds the five-route HTTP fallback surface from spec.md
// §4.9 mounted at base (e.g. "/config"): GET base serves the control
// page, GET base/api/ledconfig returns the live record, and the three
// POST routes mutate it. It is intentionally not a general-purpose
// router: exactly these five routes exist, matching spec.md's closed
// external interface. Grounded on
// ambient-light-agent/internal/api/router.go's ServeMux-based routing.
func Handler(base string, store *config.Store, deviceName, buildVersion, copyright string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(base, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != base {
			http.NotFound(w, r)
			return
		}
		servePage(w, store, base, deviceName, buildVersion, copyright)
	})

	mux.HandleFunc(base+"/api/ledconfig", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, store.View())
	})

	mux.HandleFunc(base+"/api/ledpreview", func(w http.ResponseWriter, r *http.Request) {
		handleMutation(w, r, store.ApplyPreview)
	})

	mux.HandleFunc(base+"/api/ledsave", func(w http.ResponseWriter, r *http.Request) {
		handleMutation(w, r, store.ApplySave)
	})

	mux.HandleFunc(base+"/api/ledreset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := store.Reset(); err != nil {
			log.Printf("rgbctrl: http reset failed: %v", err)
		}
		writeJSON(w, okReply{Ok: true})
	})

	return withNoStore(mux)
}

type okReply struct {
	Ok bool `json:"ok"`
}

func servePage(w http.ResponseWriter, store *config.Store, base, deviceName, buildVersion, copyright string) {
	boot, err := json.Marshal(store.View())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		DeviceName   string
		BootJSON     string
		BuildVersion string
		Copyright    string
		Base         template.JS
	}{
		DeviceName:   deviceName,
		BootJSON:     string(boot),
		BuildVersion: buildVersion,
		Copyright:    copyright,
		Base:         template.JS(`"` + base + `"`),
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Printf("rgbctrl: http page render failed: %v", err)
	}
}

func handleMutation(w http.ResponseWriter, r *http.Request, apply func([]byte) error) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := apply(body); err != nil {
		http.Error(w, "Bad JSON", http.StatusBadRequest)
		return
	}
	writeJSON(w, okReply{Ok: true})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("rgbctrl: http write failed: %v", err)
	}
}

func withNoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
