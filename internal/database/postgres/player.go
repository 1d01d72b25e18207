package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// PlayerRepository holds the mutable player records the session engines read
// and reward: combat power, rank, energy, experience and the item inventory.
// Player rows are created lazily on first touch with the Default* values.
type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) ensurePlayer(ctx context.Context, playerID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO players (player_id, energy, combat_power)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (player_id) DO NOTHING`,
		playerID, DefaultEnergy, DefaultCombatPower)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEnsurePlayer, err)
	}
	return nil
}

// CombatPower returns the player's flat damage per battle round.
func (r *PlayerRepository) CombatPower(ctx context.Context, playerID int64) (int, error) {
	if err := r.ensurePlayer(ctx, playerID); err != nil {
		return 0, err
	}
	var power int
	err := r.db.QueryRow(ctx,
		`SELECT combat_power FROM players WHERE player_id = $1`, playerID).Scan(&power)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToGetCombatPower, err)
	}
	return power, nil
}

// Rank returns the player's progression rank.
func (r *PlayerRepository) Rank(ctx context.Context, playerID int64) (int, error) {
	if err := r.ensurePlayer(ctx, playerID); err != nil {
		return 0, err
	}
	var rank int
	err := r.db.QueryRow(ctx,
		`SELECT rank FROM players WHERE player_id = $1`, playerID).Scan(&rank)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToGetRank, err)
	}
	return rank, nil
}

// Consume atomically debits energy. It returns false without debiting when
// the balance is below amount.
func (r *PlayerRepository) Consume(ctx context.Context, playerID int64, amount int) (bool, error) {
	if amount < 0 {
		return false, fmt.Errorf("%w: negative energy amount %d", domain.ErrInvalidArgument, amount)
	}
	if err := r.ensurePlayer(ctx, playerID); err != nil {
		return false, err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE players
		 SET energy = energy - $2, updated_at = NOW()
		 WHERE player_id = $1 AND energy >= $2`,
		playerID, amount)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToConsumeEnergy, err)
	}
	return tag.RowsAffected() == 1, nil
}

// RestoreEnergy credits every player up to the energy cap. Used by the
// periodic regeneration job.
func (r *PlayerRepository) RestoreEnergy(ctx context.Context, amount int) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE players
		 SET energy = LEAST(energy + $1, $2), updated_at = NOW()
		 WHERE energy < $2`,
		amount, EnergyCap)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToRestoreEnergy, err)
	}
	return tag.RowsAffected(), nil
}

// AddExperience credits battle or quest experience.
func (r *PlayerRepository) AddExperience(ctx context.Context, playerID int64, amount int) error {
	if err := r.ensurePlayer(ctx, playerID); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx,
		`UPDATE players
		 SET experience = experience + $2, updated_at = NOW()
		 WHERE player_id = $1`,
		playerID, amount)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToAddExperience, err)
	}
	return nil
}

// AcquireLoot merges a distributed bag into the player's inventory in one
// transaction. An empty bag is a no-op.
func (r *PlayerRepository) AcquireLoot(ctx context.Context, playerID int64, bag domain.Bag) error {
	if bag.IsEmpty() {
		return nil
	}
	if err := r.ensurePlayer(ctx, playerID); err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToBeginLootTx, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error(ErrMsgFailedToRollbackLootTx, "error", err)
		}
	}()

	for _, itemID := range bag.SortedIDs() {
		_, err := tx.Exec(ctx,
			`INSERT INTO player_items (player_id, item_id, quantity)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (player_id, item_id)
			 DO UPDATE SET quantity = player_items.quantity + EXCLUDED.quantity`,
			playerID, itemID, bag[itemID])
		if err != nil {
			return fmt.Errorf("%s %q: %w", ErrMsgFailedToAcquireLoot, itemID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCommitLootTx, err)
	}
	return nil
}

// Items returns the player's inventory as an item to quantity map.
func (r *PlayerRepository) Items(ctx context.Context, playerID int64) (domain.Bag, error) {
	rows, err := r.db.Query(ctx,
		`SELECT item_id, quantity FROM player_items WHERE player_id = $1`, playerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetItems, err)
	}
	defer rows.Close()

	bag := domain.Bag{}
	for rows.Next() {
		var itemID string
		var qty int
		if err := rows.Scan(&itemID, &qty); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetItems, err)
		}
		bag[itemID] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetItems, err)
	}
	return bag, nil
}

// Profile returns the aggregate player record for display commands.
func (r *PlayerRepository) Profile(ctx context.Context, playerID int64) (domain.PlayerProfile, error) {
	if err := r.ensurePlayer(ctx, playerID); err != nil {
		return domain.PlayerProfile{}, err
	}
	profile := domain.PlayerProfile{PlayerID: playerID}
	err := r.db.QueryRow(ctx,
		`SELECT energy, rank, combat_power, experience FROM players WHERE player_id = $1`,
		playerID).Scan(&profile.Energy, &profile.Rank, &profile.CombatPower, &profile.Experience)
	if err != nil {
		return domain.PlayerProfile{}, fmt.Errorf("%s: %w", ErrMsgFailedToGetProfile, err)
	}
	return profile, nil
}
