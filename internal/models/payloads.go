package models

import "time"

// These structs define the JSON payloads carried by callable requests and the
// Pub/Sub messages that chain the import functions together.

// DeletePostRequest is the input for onCallDeletePost.
type DeletePostRequest struct {
	PostID string `json:"postId"`
}

// DeletePostResponse is the output of onCallDeletePost.
type DeletePostResponse struct {
	PostID         string `json:"postId"`
	DeletedObjects int    `json:"deletedObjects"`
}

// BackupResponse is the output of onCallBackupPublicUserCollection.
type BackupResponse struct {
	BackupID      string `json:"backupId"`
	DocumentCount int    `json:"documentCount"`
	BatchCount    int    `json:"batchCount"`
}

// BackupManifest is stored at backups/{backupId} once the copy completes.
type BackupManifest struct {
	ID               string    `firestore:"id" json:"id"`
	SourceCollection string    `firestore:"sourceCollection" json:"sourceCollection"`
	DocumentCount    int       `firestore:"documentCount" json:"documentCount"`
	BatchCount       int       `firestore:"batchCount" json:"batchCount"`
	CreatedDate      time.Time `firestore:"createdDate" json:"createdDate"`
}

// ProcessImportRequest is the input for onCallProcessPublicUserImportData.
type ProcessImportRequest struct {
	FilePath string `json:"filePath"`
}

// ProcessImportResponse is the output of onCallProcessPublicUserImportData.
type ProcessImportResponse struct {
	ImportID  string `json:"importId"`
	MessageID string `json:"messageId"`
}

// TestAccessResponse is the output of onCallTestAccessToPublic.
type TestAccessResponse struct {
	Message     string    `json:"message"`
	ProjectID   string    `json:"projectId"`
	AppID       string    `json:"appId,omitempty"`
	UID         string    `json:"uid,omitempty"`
	SampleCount int       `json:"sampleCount"`
	ServerTime  time.Time `json:"serverTime"`
}

// ImportRequest is published to the parse topic when an import file is ready.
type ImportRequest struct {
	ImportID    string `json:"importId"`
	Bucket      string `json:"bucket"`
	FilePath    string `json:"filePath"`
	ContentType string `json:"contentType,omitempty"`
	RequestedBy string `json:"requestedBy,omitempty"`
}

// ImportedUser is one accepted spreadsheet row.
type ImportedUser struct {
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName,omitempty"`
	LastName    string     `json:"lastName,omitempty"`
	CreatedDate *time.Time `json:"createdDate,omitempty"`
}

// ImportBatch is published to the write topic; one message per slice of users.
type ImportBatch struct {
	ImportID     string         `json:"importId"`
	BatchNumber  int            `json:"batchNumber"`
	TotalBatches int            `json:"totalBatches"`
	Users        []ImportedUser `json:"users"`
}

// ImportReport summarises a parsed import file.
type ImportReport struct {
	ImportID   string    `json:"importId"`
	FilePath   string    `json:"filePath"`
	TotalRows  int       `json:"totalRows"`
	Accepted   int       `json:"accepted"`
	OptedOut   int       `json:"optedOut"`
	Invalid    int       `json:"invalid"`
	Duplicates int       `json:"duplicates"`
	Batches    int       `json:"batches"`
	ParsedAt   time.Time `json:"parsedAt"`
}
