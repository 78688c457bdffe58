package dto

// SyncRunResponse acknowledges an enqueued reconciliation pass.
type SyncRunResponse struct {
	Enqueued bool   `json:"enqueued"`
	Queue    string `json:"queue"`
}

// SyncStatusResponse is the last finished pass, read from the job cache.
type SyncStatusResponse struct {
	Processed  int    `json:"processed"`
	Switched   int    `json:"switched"`
	Disabled   int    `json:"disabled"`
	Updated    int    `json:"updated"`
	Failed     int    `json:"failed"`
	FinishedAt string `json:"finished_at"`
}
