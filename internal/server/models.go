package server

import "github.com/Antique3e/voice-generator/internal/store"

// UploadResponse is the body returned by POST /upload-voice.
type UploadResponse struct {
	VoiceID  string `json:"voice_id"`
	Filename string `json:"filename"`
}

// GenerateResponse is the body returned by POST /generate.
type GenerateResponse struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url"`
}

// HistoryResponse is the body returned by GET /history.
type HistoryResponse struct {
	Items []store.HistoryEntry `json:"items"`
}

// ErrorResponse carries the detail message for any failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
