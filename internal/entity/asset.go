package entity

import "time"

// Asset represents one uploaded object together with its metadata record.
// UniqueName is the primary key, the blob address and the public URL path
// segment; it is never reused, even after deletion.
type Asset struct {
	UniqueName    string    `json:"uniqueName"`
	OriginalName  string    `json:"originalName"`
	MIMEType      string    `json:"mimeType"`
	Size          int64     `json:"size"`
	UploadedAt    time.Time `json:"uploadedAt"`
	ViewCount     int64     `json:"views"`
	DownloadCount int64     `json:"downloads"`
}

// AssetPage is one window of the uploadedAt-descending listing.
type AssetPage struct {
	Assets      []*Asset `json:"assets"`
	CurrentPage int      `json:"currentPage"`
	TotalPages  int      `json:"totalPages"`
	TotalAssets int64    `json:"totalAssets"`
}
