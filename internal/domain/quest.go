package domain

// QuestState is the persisted form of a shared quest session: a
// contribution-accumulating objective whose reward is rolled once on
// completion and split across contributors.
type QuestState struct {
	Key           string        `json:"key"`
	Name          string        `json:"name"`
	Goal          int           `json:"goal"`
	Contributions map[int64]int `json:"contributions"`
	Completed     bool          `json:"completed"`
	Reward        Bag           `json:"reward,omitempty"`
	Distribution  map[int64]Bag `json:"distribution,omitempty"`
}

// TotalContribution sums all contributor scores.
func (s QuestState) TotalContribution() int {
	total := 0
	for _, amount := range s.Contributions {
		total += amount
	}
	return total
}
