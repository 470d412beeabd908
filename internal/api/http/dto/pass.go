package dto

import "time"

type CreatePassRequest struct {
	Reason    string    `json:"reason" binding:"required,max=100"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type DecidePassRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
}

type PassResponse struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	ActualStart *time.Time `json:"actual_start"`
	ActualEnd   *time.Time `json:"actual_end"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ListPassesResponse struct {
	Passes []PassResponse `json:"passes"`
	Count  int            `json:"count"`
}

type TokenResponse struct {
	Payload string `json:"payload"`
}
