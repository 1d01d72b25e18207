package handler

import (
	"net/http"

	"github.com/halbrec/RuinfangBot_Go/internal/quest"
)

// QuestView is the read-only API projection of an open shared quest.
type QuestView struct {
	ID           int64  `json:"id"`
	Key          string `json:"key"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	Current      int    `json:"current"`
	Goal         int    `json:"goal"`
	Contributors int    `json:"contributors"`
}

func questView(q *quest.Quest) QuestView {
	template := q.Template()
	current, goal := q.Progress()
	return QuestView{
		ID:           q.ID(),
		Key:          template.Key,
		Name:         template.Name,
		Kind:         string(template.Kind),
		Current:      current,
		Goal:         goal,
		Contributors: len(q.Contributions()),
	}
}

// HandleListQuests returns all open quests sorted by key
func HandleListQuests(quests quest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active := quests.Active(r.Context())
		views := make([]QuestView, 0, len(active))
		for _, q := range active {
			views = append(views, questView(q))
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: views})
	}
}
