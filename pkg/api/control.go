package api

import (
	"encoding/json"
	"net/http"

	"pocketchat/pkg/activity"
	"pocketchat/pkg/logger"
	"pocketchat/pkg/outbox"
	"pocketchat/pkg/utils"
)

func (s *Server) getNetwork(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, map[string]bool{"online": s.Net.Online()})
}

// setNetwork handles POST /v1/network. Flipping from offline to online
// triggers an outbox drain through the NetState hook.
func (s *Server) setNetwork(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Online *bool `json:"online"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Online == nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	s.Net.Set(*body.Online)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]bool{"online": s.Net.Online()})
}

// sync handles POST /v1/sync, a manual drain regardless of the probe.
func (s *Server) sync(w http.ResponseWriter, r *http.Request) {
	replayed := s.Queue.Drain()
	_ = utils.JSONWrite(w, http.StatusOK, map[string]int{"replayed": replayed})
}

func (s *Server) listOutbox(w http.ResponseWriter, r *http.Request) {
	entries := s.Queue.Entries()
	if entries == nil {
		entries = []outbox.Entry{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]interface{}{
		"depth":   len(entries),
		"entries": entries,
	})
}

func (s *Server) getActivitySettings(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, activity.LoadSettings())
}

// putActivitySettings handles PUT /v1/settings/activity: persist first,
// then rearm the monitor with the new values.
func (s *Server) putActivitySettings(w http.ResponseWriter, r *http.Request) {
	var in activity.Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	in = in.Normalize()
	if err := activity.SaveSettings(in); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.Monitor.Apply(in)
	s.touch()
	logger.Info("activity_settings_updated", "enabled", in.Enabled, "interval", in.Interval)
	_ = utils.JSONWrite(w, http.StatusOK, in)
}
