package server

import (
	"encoding/json"
	"net/http"
)

// HostAPIResponse is the JSON shape of one host in the API.
type HostAPIResponse struct {
	Address    string `json:"address,omitempty"`
	Alive      bool   `json:"alive"`
	Value      int    `json:"value"`
	LatencyUS  int64  `json:"latency_us"`
	LastUpdate int64  `json:"lastupdate"`
	Error      string `json:"error,omitempty"`
}

func (s *Server) hostResponse(name string) (HostAPIResponse, bool) {
	status, ok := s.statuses[name]
	if !ok {
		return HostAPIResponse{}, false
	}
	snap := status.Snapshot()

	resp := HostAPIResponse{
		Alive:      snap.Alive,
		LatencyUS:  snap.Latency.Microseconds(),
		LastUpdate: snap.LastUpdate,
		Error:      snap.Error,
	}
	if snap.Alive {
		resp.Value = 1
	}
	for _, h := range s.hosts {
		if h.Name == name {
			resp.Address = h.Address
			break
		}
	}
	return resp, true
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	hosts := make(map[string]HostAPIResponse, len(s.hosts))
	for _, h := range s.hosts {
		if resp, ok := s.hostResponse(h.Name); ok {
			hosts[h.Name] = resp
		}
	}

	writeJSON(w, hosts)
}

func (s *Server) handleHostAPI(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("hostname")
	resp, ok := s.hostResponse(name)
	if !ok {
		http.Error(w, "Host not found", http.StatusNotFound)
		return
	}

	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
