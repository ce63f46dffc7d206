package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"pocketchat/internal/backup"
	"pocketchat/pkg/logger"
	"pocketchat/pkg/models"
	"pocketchat/pkg/send"
	"pocketchat/pkg/store"
	"pocketchat/pkg/utils"

	"github.com/gorilla/mux"
)

// listChats handles GET /v1/chats. Chats come back in registration order.
func (s *Server) listChats(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, map[string]interface{}{"chats": s.Reg.Chats()})
}

// createChat handles POST /v1/chats. Re-posting an existing id is a no-op
// that returns the registered chat unchanged.
func (s *Server) createChat(w http.ResponseWriter, r *http.Request) {
	var c models.Chat
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if c.ID == "" {
		utils.JSONError(w, http.StatusBadRequest, "chat id is required")
		return
	}
	if c.CreatedTS == 0 {
		c.CreatedTS = time.Now().UTC().UnixNano()
	}
	s.Reg.EnsureChat(c)
	got, _ := s.Reg.Get(c.ID)
	if err := store.SaveChat(got); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.touch()
	logger.Info("chat_registered", "chat", got.ID, "group", got.IsGroup)
	_ = utils.JSONWrite(w, http.StatusOK, got)
}

// listMessages handles GET /v1/chats/{id}/messages. History is served from
// the in-memory registry, which is authoritative for order.
func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["id"]
	if _, ok := s.Reg.Get(chatID); !ok {
		utils.JSONError(w, http.StatusNotFound, "unknown chat")
		return
	}
	msgs := s.Reg.History(chatID)
	if msgs == nil {
		msgs = []models.Message{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]interface{}{"messages": msgs})
}

// sendMessage handles POST /v1/chats/{id}/messages. The response reports
// the send outcome rather than an error: an offline send is a 200 with
// outcome "queued".
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["id"]
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	outcome := s.Pipeline.Send(body.Content, chatID)
	status := http.StatusOK
	if outcome == send.Rejected {
		status = http.StatusBadRequest
	}
	_ = utils.JSONWrite(w, status, map[string]string{"outcome": string(outcome)})
}

// markRead handles POST /v1/chats/{id}/read. With an explicit "ts" the
// single receipt is marked; without one every assistant message in the
// chat is swept, mirroring a user opening the conversation.
func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["id"]
	if _, ok := s.Reg.Get(chatID); !ok {
		utils.JSONError(w, http.StatusNotFound, "unknown chat")
		return
	}
	var body struct {
		TS *int64 `json:"ts"`
	}
	// an empty body means sweep the whole chat
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	var marked int
	if body.TS != nil {
		if s.Book.Mark(chatID, *body.TS) {
			marked = 1
		}
	} else {
		marked = s.Book.MarkAllAssistant(chatID, s.Reg.History(chatID))
	}
	s.touch()
	_ = utils.JSONWrite(w, http.StatusOK, map[string]int{"marked": marked})
}

// exportChat handles GET /v1/chats/{id}/export, returning the rendered
// history document the scheduled export also produces.
func (s *Server) exportChat(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["id"]
	if _, ok := s.Reg.Get(chatID); !ok {
		utils.JSONError(w, http.StatusNotFound, "unknown chat")
		return
	}
	b, err := backup.ExportChat(chatID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.touch()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// setActive handles POST /v1/chats/{id}/active. The active chat is the
// one whose drained messages get re-rendered.
func (s *Server) setActive(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["id"]
	if _, ok := s.Reg.Get(chatID); !ok {
		utils.JSONError(w, http.StatusNotFound, "unknown chat")
		return
	}
	s.Reg.SetActive(chatID)
	s.touch()
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"active": chatID})
}
