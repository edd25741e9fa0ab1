package status

import (
	"html"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/models"
)

// FormatRepositories maps repositories to output records, escaping names.
func FormatRepositories(repos []models.RepositoryInfo) []models.RepositoryRecord {
	out := make([]models.RepositoryRecord, 0, len(repos))
	for _, r := range repos {
		out = append(out, models.RepositoryRecord{
			Name:      html.EscapeString(r.Name),
			Capacity:  r.Capacity,
			FreeSpace: r.FreeSpace,
			OutOfDate: r.OutOfDate,
		})
	}
	return out
}
