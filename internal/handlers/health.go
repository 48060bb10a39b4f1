package handlers

import (
	"net/http"

	"github.com/diegoclair/screenshot-bot/internal/domain"
)

// Liveness answers any GET with a fixed body. It reports that the process is up and
// nothing else.
func Liveness(w http.ResponseWriter, r *http.Request) {
	writeText(w, r, domain.LivenessText)
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeText(w, r, "OK")
}

func writeText(w http.ResponseWriter, r *http.Request, body string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write([]byte(body))
	}
}

// Routes registers the liveness routes and, when slack is not nil, the HTTP slash
// command endpoint.
func Routes(slack *SlackHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", Liveness)
	mux.HandleFunc("/health", Health)
	if slack != nil {
		mux.HandleFunc("POST /slack/commands", slack.HandleSlashCommand)
	}
	return mux
}
