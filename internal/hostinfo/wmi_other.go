//go:build !windows

package hostinfo

import (
	"context"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/models"
)

func (s *WMISource) Repositories(ctx context.Context, host string) ([]models.RepositoryInfo, error) {
	return nil, ErrUnsupported
}
