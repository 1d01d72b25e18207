package handler

import (
	"net/http"
	"sort"

	"github.com/halbrec/RuinfangBot_Go/internal/ruins"
)

// RuinsView is the read-only API projection of a live exploration run.
type RuinsView struct {
	ID            int64  `json:"id"`
	PlayerID      int64  `json:"player_id"`
	RuinsKey      string `json:"ruins_key"`
	RuinsName     string `json:"ruins_name"`
	Depth         int    `json:"depth"`
	RoomsSearched int    `json:"rooms_searched"`
	Ended         bool   `json:"ended"`
}

func ruinsView(s *ruins.Session) RuinsView {
	cfg := s.Config()
	return RuinsView{
		ID:            s.ID(),
		PlayerID:      s.PlayerID(),
		RuinsKey:      cfg.Key,
		RuinsName:     cfg.Name,
		Depth:         s.Depth(),
		RoomsSearched: s.RoomsSearched(),
		Ended:         s.Ended(),
	}
}

// HandleListRuins returns all exploration runs currently tracked by the manager
func HandleListRuins(manager *ruins.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active := manager.Active()
		views := make([]RuinsView, 0, len(active))
		for _, s := range active {
			views = append(views, ruinsView(s))
		}
		sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })

		respondJSON(w, http.StatusOK, DataResponse{Data: views})
	}
}
