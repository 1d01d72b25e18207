package content

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/halbrec/RuinfangBot_Go/internal/beast"
	"github.com/halbrec/RuinfangBot_Go/internal/domain"
	"github.com/halbrec/RuinfangBot_Go/internal/loot"
	"github.com/halbrec/RuinfangBot_Go/internal/quest"
	"github.com/halbrec/RuinfangBot_Go/internal/ruins"
	"github.com/halbrec/RuinfangBot_Go/internal/utils"
)

// Registry is the immutable in-memory content catalog. Built once at
// startup, injected into the session services, never mutated afterwards.
type Registry struct {
	beasts map[string]beast.Definition
	chests map[string]loot.Loot
	ruins  map[string]ruins.TypeConfig
	quests map[string]quest.Template
}

// Load reads and validates a content file and builds the registry.
func Load(path string) (*Registry, error) {
	var file File
	if err := utils.LoadJSON(path, &file); err != nil {
		return nil, err
	}
	return Build(file)
}

// Build turns an already-parsed content file into a registry. Configuration
// problems fail fast with ErrInvalidConfiguration.
func Build(file File) (*Registry, error) {
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}

	r := &Registry{
		beasts: make(map[string]beast.Definition, len(file.Beasts)),
		chests: make(map[string]loot.Loot, len(file.Chests)),
		ruins:  make(map[string]ruins.TypeConfig, len(file.Ruins)),
		quests: make(map[string]quest.Template, len(file.Quests)),
	}

	if err := r.buildBeasts(file.Beasts); err != nil {
		return nil, err
	}
	if err := r.buildChests(file.Chests); err != nil {
		return nil, err
	}
	if err := r.buildRuins(file.Ruins); err != nil {
		return nil, err
	}
	if err := r.buildQuests(file.Quests); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) buildBeasts(configs []BeastConfig) error {
	// First pass builds standalone definitions so base references resolve
	// regardless of file order.
	pending := make(map[string]BeastConfig, len(configs))
	for _, cfg := range configs {
		if _, ok := pending[cfg.Key]; ok {
			return fmt.Errorf("%w: duplicate beast %q", domain.ErrInvalidConfiguration, cfg.Key)
		}
		pending[cfg.Key] = cfg
	}

	var build func(key string, trail map[string]bool) (beast.Definition, error)
	build = func(key string, trail map[string]bool) (beast.Definition, error) {
		if def, ok := r.beasts[key]; ok {
			return def, nil
		}
		cfg, ok := pending[key]
		if !ok {
			return beast.Definition{}, fmt.Errorf("%w: %q", domain.ErrBeastNotFound, key)
		}
		if trail[key] {
			return beast.Definition{}, fmt.Errorf("%w: beast %q base cycle", domain.ErrInvalidConfiguration, key)
		}
		trail[key] = true

		def := beast.Definition{
			Key:        cfg.Key,
			Name:       cfg.Name,
			Tier:       beast.Tier(cfg.Tier),
			Health:     cfg.Health,
			Initiative: cfg.Initiative,
			Experience: cfg.Experience,
		}
		if def.Tier == "" {
			def.Tier = beast.TierNormal
		}
		if len(cfg.Loot) > 0 {
			tree, err := loot.Unmarshal(cfg.Loot)
			if err != nil {
				return beast.Definition{}, fmt.Errorf("beast %q loot: %w", cfg.Key, err)
			}
			def.Loot = tree
		}
		if cfg.Base != "" {
			base, err := build(cfg.Base, trail)
			if err != nil {
				return beast.Definition{}, err
			}
			def.Base = &base
			def = beast.Resolve(def)
		}
		r.beasts[key] = def
		return def, nil
	}

	for key := range pending {
		if _, err := build(key, make(map[string]bool)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) buildChests(configs []ChestConfig) error {
	for _, cfg := range configs {
		tree, err := loot.Unmarshal(cfg.Loot)
		if err != nil {
			return fmt.Errorf("chest %q loot: %w", cfg.Key, err)
		}
		r.chests[cfg.Key] = tree
	}
	return nil
}

func (r *Registry) buildRuins(configs []RuinsConfig) error {
	for _, cfg := range configs {
		tc := ruins.TypeConfig{
			Key:            cfg.Key,
			Name:           cfg.Name,
			EnergyRate:     cfg.EnergyRate,
			MinDepth:       cfg.MinDepth,
			MaxDepth:       cfg.MaxDepth,
			GuardChance:    cfg.GuardChance,
			GuardianKeys:   cfg.Guardians,
			GuardianRounds: cfg.GuardianRounds,
		}
		for key := range cfg.Guardians {
			if _, err := r.Beast(key); err != nil {
				return fmt.Errorf("ruins %q guardian: %w", cfg.Key, err)
			}
		}
		if len(cfg.RoomLoot) > 0 {
			tree, err := loot.Unmarshal(cfg.RoomLoot)
			if err != nil {
				return fmt.Errorf("ruins %q room loot: %w", cfg.Key, err)
			}
			tc.RoomLoot = tree
		}
		if len(cfg.FinalLoot) > 0 {
			tree, err := loot.Unmarshal(cfg.FinalLoot)
			if err != nil {
				return fmt.Errorf("ruins %q final loot: %w", cfg.Key, err)
			}
			tc.FinalLoot = tree
		}
		r.ruins[cfg.Key] = tc
	}
	return nil
}

func (r *Registry) buildQuests(configs []QuestConfig) error {
	for _, cfg := range configs {
		template := quest.Template{
			Key:  cfg.Key,
			Name: cfg.Name,
			Kind: quest.Kind(cfg.Kind),
			Goal: cfg.Goal,
		}
		if len(cfg.Reward) > 0 {
			tree, err := loot.Unmarshal(cfg.Reward)
			if err != nil {
				return fmt.Errorf("quest %q reward: %w", cfg.Key, err)
			}
			template.Reward = tree
		}
		r.quests[cfg.Key] = template
	}
	return nil
}

// Beast resolves a beast definition by key.
func (r *Registry) Beast(key string) (beast.Definition, error) {
	def, ok := r.beasts[key]
	if !ok {
		return beast.Definition{}, fmt.Errorf("%w: %q", domain.ErrBeastNotFound, key)
	}
	return def, nil
}

// Chest resolves a chest loot tree by key.
func (r *Registry) Chest(key string) (loot.Loot, error) {
	tree, ok := r.chests[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrChestNotFound, key)
	}
	return tree, nil
}

// RuinsType resolves a ruins parameter table by key.
func (r *Registry) RuinsType(key string) (ruins.TypeConfig, error) {
	tc, ok := r.ruins[key]
	if !ok {
		return ruins.TypeConfig{}, fmt.Errorf("%w: %q", domain.ErrRuinsNotFound, key)
	}
	return tc, nil
}

// QuestTemplate resolves a quest template by key.
func (r *Registry) QuestTemplate(key string) (quest.Template, error) {
	template, ok := r.quests[key]
	if !ok {
		return quest.Template{}, fmt.Errorf("%w: %q", domain.ErrQuestNotFound, key)
	}
	return template, nil
}

// BeastKeys returns every beast key in sorted order.
func (r *Registry) BeastKeys() []string {
	keys := make([]string, 0, len(r.beasts))
	for key := range r.beasts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ChestKeys returns every chest tier key in sorted order.
func (r *Registry) ChestKeys() []string {
	keys := make([]string, 0, len(r.chests))
	for key := range r.chests {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// RuinsKeys returns every ruins type key in sorted order.
func (r *Registry) RuinsKeys() []string {
	keys := make([]string, 0, len(r.ruins))
	for key := range r.ruins {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// QuestTemplates returns every quest template.
func (r *Registry) QuestTemplates() []quest.Template {
	templates := make([]quest.Template, 0, len(r.quests))
	for _, template := range r.quests {
		templates = append(templates, template)
	}
	return templates
}
