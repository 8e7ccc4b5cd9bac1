package dto

import "time"

// DatasetSummary describes a stored dataset and its integrity findings.
type DatasetSummary struct {
	DatasetID   string      `json:"datasetId"`
	Courses     int         `json:"courses"`
	Instructors int         `json:"instructors"`
	Rooms       int         `json:"rooms"`
	Timeslots   int         `json:"timeslots"`
	Integrity   interface{} `json:"integrity"`
	UploadedAt  time.Time   `json:"uploadedAt"`
}
