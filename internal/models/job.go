package models

import "time"

// JobSession is one row of Veeam's job session history. Sessions are
// append-only; this program never writes them.
type JobSession struct {
	JobID        string     `json:"job_id" db:"job_id"`
	JobType      int        `json:"job_type" db:"job_type"`
	JobName      string     `json:"job_name" db:"job_name"`
	Result       string     `json:"result" db:"result"`
	IsRetry      bool       `json:"is_retry" db:"is_retry"`
	Reason       *string    `json:"reason" db:"reason"`
	LogXML       *string    `json:"log_xml" db:"log_xml"`
	Progress     int        `json:"progress" db:"progress"`
	CreationTime *time.Time `json:"creation_time" db:"creation_time"`
	EndTime      *time.Time `json:"end_time" db:"end_time"`
}

// ConfiguredJob is a job definition with its schedule enabled.
type ConfiguredJob struct {
	Name    string  `json:"name" db:"name"`
	Type    int     `json:"type" db:"type"`
	Options *string `json:"options" db:"options"`
}
