package handler

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/halbrec/RuinfangBot_Go/internal/battle"
)

// BattleView is the read-only API projection of a live or recently finished
// battle.
type BattleView struct {
	ID          int64  `json:"id"`
	BeastKey    string `json:"beast_key"`
	BeastName   string `json:"beast_name"`
	Tier        string `json:"tier"`
	Health      int    `json:"health"`
	TotalDamage int    `json:"total_damage"`
	Rounds      int    `json:"rounds"`
	Finished    bool   `json:"finished"`
	Killed      bool   `json:"killed"`
}

func battleView(b *battle.Battle) BattleView {
	snapshot := b.Beast()
	return BattleView{
		ID:          b.ID(),
		BeastKey:    snapshot.Key,
		BeastName:   snapshot.Name,
		Tier:        snapshot.Tier,
		Health:      snapshot.Health,
		TotalDamage: b.TotalDamage(),
		Rounds:      len(b.Rounds()),
		Finished:    b.Finished(),
		Killed:      b.Killed(),
	}
}

// HandleListBattles returns all battles currently tracked by the manager
func HandleListBattles(manager *battle.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active := manager.Active()
		views := make([]BattleView, 0, len(active))
		for _, b := range active {
			views = append(views, battleView(b))
		}
		sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })

		respondJSON(w, http.StatusOK, DataResponse{Data: views})
	}
}

// HandleGetBattle returns one battle by id
func HandleGetBattle(battles battle.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidIDParam)
			return
		}

		b, err := battles.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: battleView(b)})
	}
}
