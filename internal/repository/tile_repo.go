package repository

import (
	"database/sql"
	"errors"

	"deckdrill/internal/database"
	"deckdrill/internal/models"
)

// TileRepository handles match tile database operations
type TileRepository struct {
	db database.DBTX
}

// NewTileRepository creates a new tile repository
func NewTileRepository(db database.DBTX) *TileRepository {
	return &TileRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *TileRepository) WithTx(tx *database.Tx) *TileRepository {
	return &TileRepository{db: tx}
}

const tileColumns = "id, session_id, pair_key, side, label, display_order, matched"

// InsertAll persists a freshly built tile set
func (r *TileRepository) InsertAll(tiles []models.MatchTile) error {
	query := `
		INSERT INTO match_tiles (` + tileColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	for _, tile := range tiles {
		_, err := r.db.Exec(query,
			tile.ID,
			tile.SessionID,
			tile.PairKey,
			string(tile.Side),
			tile.Label,
			tile.DisplayOrder,
			tile.Matched,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves one tile of a session. Returns nil when absent.
func (r *TileRepository) GetByID(sessionID, tileID string) (*models.MatchTile, error) {
	query := `
		SELECT ` + tileColumns + `
		FROM match_tiles
		WHERE session_id = ? AND id = ?
	`

	tile := &models.MatchTile{}
	var side string
	err := r.db.QueryRow(query, sessionID, tileID).Scan(
		&tile.ID,
		&tile.SessionID,
		&tile.PairKey,
		&side,
		&tile.Label,
		&tile.DisplayOrder,
		&tile.Matched,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tile.Side = models.TileSide(side)
	return tile, nil
}

// ListBySession retrieves all tiles of a session, each side in display order
func (r *TileRepository) ListBySession(sessionID string) ([]models.MatchTile, error) {
	query := `
		SELECT ` + tileColumns + `
		FROM match_tiles
		WHERE session_id = ?
		ORDER BY side ASC, display_order ASC
	`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiles []models.MatchTile
	for rows.Next() {
		var tile models.MatchTile
		var side string
		err := rows.Scan(
			&tile.ID,
			&tile.SessionID,
			&tile.PairKey,
			&side,
			&tile.Label,
			&tile.DisplayOrder,
			&tile.Matched,
		)
		if err != nil {
			return nil, err
		}
		tile.Side = models.TileSide(side)
		tiles = append(tiles, tile)
	}

	return tiles, rows.Err()
}

// MarkMatched flips tiles to matched. The flag never flips back.
func (r *TileRepository) MarkMatched(sessionID string, tileIDs ...string) error {
	query := "UPDATE match_tiles SET matched = ? WHERE session_id = ? AND id = ?"

	for _, tileID := range tileIDs {
		if _, err := r.db.Exec(query, true, sessionID, tileID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteBySession clears a session's tiles before a rebuild
func (r *TileRepository) DeleteBySession(sessionID string) error {
	query := "DELETE FROM match_tiles WHERE session_id = ?"
	_, err := r.db.Exec(query, sessionID)
	return err
}
