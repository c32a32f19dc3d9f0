package model

// Playback is the payload embedded in the index page. The media fields are
// pointers so they serialize as null when the user has no saved artists (or,
// for PreviewURL and GeniusURL, when the provider or locator had nothing).
type Playback struct {
	HasArtistsSaved bool    `json:"has_artists_saved"`
	SongName        *string `json:"song_name"`
	SongArtist      *string `json:"song_artist"`
	SongImageURL    *string `json:"song_image_url"`
	PreviewURL      *string `json:"preview_url"`
	GeniusURL       *string `json:"genius_url"`
	Username        string  `json:"username"`
}
