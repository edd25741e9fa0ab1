package models

// JobStatusRecord is the last known status of one scheduled job, as sent to
// Zabbix. Times are epoch offsets with -1 meaning "not yet run".
type JobStatusRecord struct {
	JobID       string `json:"JOBID"`
	JobTypeID   int    `json:"JOBTYPEID"`
	JobTypeName string `json:"JOBTYPENAME"`
	JobName     string `json:"JOBNAME"`
	Result      string `json:"JOBRESULT"`
	IsRetry     bool   `json:"JOBRETRY"`
	Reason      string `json:"JOBREASON"`
	Progress    int    `json:"JOBPERCENT"`
	Start       int64  `json:"JOBSTART"`
	End         int64  `json:"JOBEND"`
}

// RepositoryInfo is a repository as reported by the Veeam WMI provider.
type RepositoryInfo struct {
	Name      string
	Capacity  uint64
	FreeSpace uint64
	OutOfDate bool
}

// RepositoryRecord is the Zabbix view of a RepositoryInfo.
type RepositoryRecord struct {
	Name      string `json:"REPONAME"`
	Capacity  uint64 `json:"REPOCAP"`
	FreeSpace uint64 `json:"REPOFREE"`
	OutOfDate bool   `json:"REPOOUTOFDATE"`
}
