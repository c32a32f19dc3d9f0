package model

import "time"

// FavoriteArtist is one saved (username, artist id) association. ArtistID is
// opaque here; it only has meaning to the music provider.
type FavoriteArtist struct {
	ID        int64     `json:"id"`
	ArtistID  string    `json:"artistId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}
