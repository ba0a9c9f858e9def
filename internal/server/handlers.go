package server

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/n1platform/stakevault/internal/fault"
	"github.com/n1platform/stakevault/internal/model"
)

func (s *Server) createCampaign(w http.ResponseWriter, r *http.Request) {
	var c model.Campaign
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeFault(w, fault.New(fault.InvalidConfig, "invalid request body"))
		return
	}
	if err := s.engine.CreateCampaign(r.Context(), c); err != nil {
		writeFault(w, err)
		return
	}
	created, err := s.engine.GetCampaign(r.Context(), c.Name)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.engine.GetCampaign(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteCampaign(r.Context(), mux.Vars(r)["name"]); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type descriptorRequest struct {
	Author   string `json:"author"`
	Category string `json:"category"`
	IData    string `json:"idata"`
}

func (s *Server) setDescriptor(w http.ResponseWriter, r *http.Request) {
	var req descriptorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFault(w, fault.New(fault.InvalidConfig, "invalid request body"))
		return
	}
	d := model.DepositDescriptor{
		Campaign: mux.Vars(r)["name"],
		Author:   req.Author,
		Category: req.Category,
		IData:    req.IData,
	}
	if err := s.engine.SetDepositDescriptor(r.Context(), d); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) deleteDescriptor(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteDepositDescriptor(r.Context(), mux.Vars(r)["name"]); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) purgeStakers(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.engine.PurgeStakers(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (s *Server) purgeRewards(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.engine.PurgeRewardItems(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (s *Server) deleteReward(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeFault(w, fault.New(fault.InvalidConfig, "reward id must be numeric"))
		return
	}
	if err := s.engine.DeleteRewardItem(r.Context(), id); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) getStaker(w http.ResponseWriter, r *http.Request) {
	staker, err := s.engine.GetStaker(r.Context(), mux.Vars(r)["participant"])
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, staker)
}

// caller returns the authenticated participant identity attached by the
// fronting auth layer.
func caller(r *http.Request) string {
	return r.Header.Get("X-Participant")
}

func (s *Server) claim(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Claim(r.Context(), caller(r), mux.Vars(r)["participant"]); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "claimed"})
}

func (s *Server) retire(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Retire(r.Context(), caller(r), mux.Vars(r)["participant"]); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "retired"})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	hostname, _ := os.Hostname()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"service":  "stakevault",
		"hostname": hostname,
	})
}

func (s *Server) healthDB(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": "postgres unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"postgres": "connected",
	})
}
