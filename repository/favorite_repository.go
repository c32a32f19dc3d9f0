package repository

import (
	"database/sql"
	"fmt"
)

// FavoriteArtistRepository defines the interface for saved-artist operations.
// The favorites set is always written whole: ReplaceFavorites removes every
// row for the user before inserting the new list.
type FavoriteArtistRepository interface {
	ListFavorites(username string) ([]string, error)
	ReplaceFavorites(username string, artistIDs []string) error
}

// mysqlFavoriteArtistRepository implements FavoriteArtistRepository for MySQL.
type mysqlFavoriteArtistRepository struct {
	db *sql.DB
}

// NewMySQLFavoriteArtistRepository creates a new mysqlFavoriteArtistRepository.
func NewMySQLFavoriteArtistRepository(db *sql.DB) FavoriteArtistRepository {
	return &mysqlFavoriteArtistRepository{db: db}
}

// ListFavorites returns the artist IDs saved for a user, in insertion order.
// Duplicates come back as stored.
func (r *mysqlFavoriteArtistRepository) ListFavorites(username string) ([]string, error) {
	query := "SELECT artist_id FROM favorite_artists WHERE username = ? ORDER BY id"
	rows, err := r.db.Query(query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites for username %s: %w", username, err)
	}
	defer rows.Close()

	var artistIDs []string
	for rows.Next() {
		var artistID string
		if err := rows.Scan(&artistID); err != nil {
			return nil, fmt.Errorf("failed to scan favorite artist row: %w", err)
		}
		artistIDs = append(artistIDs, artistID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorite artist rows: %w", err)
	}
	return artistIDs, nil
}

// ReplaceFavorites deletes all of a user's favorite rows and inserts one row
// per given artist ID, in order. The delete happens even when artistIDs is
// empty. Writes are not wrapped in a transaction; a failure mid-insert leaves
// whatever was written so far, matching the handler-level write semantics.
func (r *mysqlFavoriteArtistRepository) ReplaceFavorites(username string, artistIDs []string) error {
	if _, err := r.db.Exec("DELETE FROM favorite_artists WHERE username = ?", username); err != nil {
		return fmt.Errorf("failed to clear favorites for username %s: %w", username, err)
	}

	if len(artistIDs) == 0 {
		return nil
	}

	stmt, err := r.db.Prepare("INSERT INTO favorite_artists (artist_id, username) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert favorite statement: %w", err)
	}
	defer stmt.Close()

	for _, artistID := range artistIDs {
		if _, err := stmt.Exec(artistID, username); err != nil {
			return fmt.Errorf("failed to insert favorite %s for username %s: %w", artistID, username, err)
		}
	}
	return nil
}
