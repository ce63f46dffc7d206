package api

import (
	"net/http"

	"pocketchat/pkg/activity"
	"pocketchat/pkg/outbox"
	"pocketchat/pkg/receipts"
	"pocketchat/pkg/registry"
	"pocketchat/pkg/send"

	"github.com/gorilla/mux"
)

// Server wires the client core to its local HTTP control surface. Every
// endpoint that represents a user interaction also touches the activity
// tracker.
type Server struct {
	Reg      *registry.Registry
	Pipeline *send.Pipeline
	Queue    *outbox.Queue
	Book     *receipts.Book
	Tracker  *activity.Tracker
	Monitor  *activity.Monitor
	Net      *NetState
}

// Router returns the full route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/chats", s.listChats).Methods(http.MethodGet)
	v1.HandleFunc("/chats", s.createChat).Methods(http.MethodPost)
	v1.HandleFunc("/chats/{id}/messages", s.listMessages).Methods(http.MethodGet)
	v1.HandleFunc("/chats/{id}/messages", s.sendMessage).Methods(http.MethodPost)
	v1.HandleFunc("/chats/{id}/read", s.markRead).Methods(http.MethodPost)
	v1.HandleFunc("/chats/{id}/export", s.exportChat).Methods(http.MethodGet)
	v1.HandleFunc("/chats/{id}/active", s.setActive).Methods(http.MethodPost)

	v1.HandleFunc("/network", s.getNetwork).Methods(http.MethodGet)
	v1.HandleFunc("/network", s.setNetwork).Methods(http.MethodPost)
	v1.HandleFunc("/sync", s.sync).Methods(http.MethodPost)
	v1.HandleFunc("/outbox", s.listOutbox).Methods(http.MethodGet)

	v1.HandleFunc("/settings/activity", s.getActivitySettings).Methods(http.MethodGet)
	v1.HandleFunc("/settings/activity", s.putActivitySettings).Methods(http.MethodPut)

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) touch() {
	if s.Tracker != nil {
		s.Tracker.Touch()
	}
}
