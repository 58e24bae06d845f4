package models

// NowPlaying is the state snapshot published to the event bus and returned
// by the HTTP status API.
type NowPlaying struct {
	State      string   `json:"state"` // "Playing" | "Paused" | "Stopped"
	Track      string   `json:"track,omitempty"`
	Artists    []string `json:"artists,omitempty"`
	Album      string   `json:"album,omitempty"`
	CoverURL   string   `json:"img_url,omitempty"`
	URI        string   `json:"uri,omitempty"`
	PositionMS int      `json:"position_ms"`
	DurationMS int      `json:"duration_ms"`
	Shuffle    bool     `json:"shuffle"`
	Repeat     string   `json:"repeat"`
	Volume     float64  `json:"volume"` // normalized [0.0, 1.0]
	Saved      bool     `json:"saved,omitempty"`
}
