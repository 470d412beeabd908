package dto

import "time"

type ScanRequest struct {
	Payload string `json:"payload" binding:"required"`
	Mode    string `json:"mode" binding:"required,oneof=exit entry"`
}

type ScanResponse struct {
	PassID     string    `json:"pass_id"`
	OwnerID    string    `json:"owner_id"`
	Movement   string    `json:"movement"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ScanErrorResponse carries the machine-readable outcome code alongside the
// human-presentable message, so gate clients can branch without string
// matching.
type ScanErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
