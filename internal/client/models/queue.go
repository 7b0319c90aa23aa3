package models

// UploadStatus is the per-item lifecycle state during a batch upload.
type UploadStatus string

const (
	UploadIdle       UploadStatus = "idle"
	UploadEncrypting UploadStatus = "encrypting"
	UploadUploading  UploadStatus = "uploading"
	UploadSuccess    UploadStatus = "success"
	UploadError      UploadStatus = "error"
)

// UploadQueueItem tracks one file through a batch upload. It lives only for
// the duration of the batch; progress, speed and ETA are advisory telemetry
// derived from wall-clock sampling, not correctness-affecting.
type UploadQueueItem struct {
	ID       string
	FileName string
	FileType string

	// Path is read lazily at encryption time when Data is nil, so a large
	// batch holds at most one plaintext in memory.
	Path string
	Data []byte
	Size int64

	Status     UploadStatus
	Progress   float64 // 0–100
	SpeedMBps  float64
	ETASeconds int

	// Set on success, for one-time display to the user.
	ResultKey         string
	ResultFingerprint string

	ErrMsg string
}
