package model

import "time"

// WellnessLog is a player's daily self-report. Ratings run from 1 to 10.
type WellnessLog struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	Date      string    `json:"date"`
	Sleep     int       `json:"sleep"`
	Energy    int       `json:"energy"`
	Mood      int       `json:"mood"`
	Soreness  int       `json:"soreness"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// TrainingLoad is one logged session. A player may log several per day.
type TrainingLoad struct {
	ID                string    `json:"id"`
	PlayerID          string    `json:"player_id"`
	Date              string    `json:"date"`
	SessionType       string    `json:"session_type"`
	DurationMinutes   int       `json:"duration_minutes"`
	RPE               int       `json:"rpe"`
	MobilityCompleted bool      `json:"mobility_completed"`
	CreatedAt         time.Time `json:"created_at"`
}
