package handler

import (
	"shelley-server/internal/models"
	"shelley-server/internal/service"
)

// sessionResponse is the body of POST /api/session.
type sessionResponse struct {
	SessionID string           `json:"sessionId"`
	Progress  *models.Progress `json:"progress"`
}

// progressResponse is the body of POST /api/game-event.
type progressResponse struct {
	Progress *models.Progress `json:"progress"`
}

// authRequest is the body of POST /api/auth.
type authRequest struct {
	Action      string  `json:"action"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"displayName"`
}

type authResponse struct {
	OK        bool  `json:"ok"`
	AccountID int64 `json:"accountId,omitempty"`
}

type authStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	AccountID     int64  `json:"accountId,omitempty"`
	Email         string `json:"email,omitempty"`
}

// narrativeResponse is the body of GET /api/narrative.
type narrativeResponse struct {
	Beats []models.Beat `json:"beats"`
}

// narrativeMutation is the body of POST and DELETE /api/narrative. The
// admin secret rides in the body (or the X-Admin-Secret header).
type narrativeMutation struct {
	Secret string            `json:"secret"`
	BeatID string            `json:"beatId"`
	Lines  []models.BeatLine `json:"lines"`
}

type narrativeMutationResponse struct {
	OK       bool   `json:"ok"`
	BeatID   string `json:"beatId"`
	Reverted bool   `json:"reverted,omitempty"`
}

// rewardsResponse is the body of GET /api/rewards.
type rewardsResponse struct {
	Rewards []service.TierStatus `json:"rewards"`
}
