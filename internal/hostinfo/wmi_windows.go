//go:build windows

package hostinfo

import (
	"context"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/models"
	"github.com/pkg/errors"
	"github.com/yusufpapurcu/wmi"
)

func (s *WMISource) Repositories(ctx context.Context, host string) ([]models.RepositoryInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var dst []wmiRepository
	if err := wmi.Query(repositoryQuery, &dst, host, s.Namespace); err != nil {
		return nil, errors.Wrapf(err, "wmi query on %s (%s)", host, s.Namespace)
	}
	out := make([]models.RepositoryInfo, 0, len(dst))
	for _, r := range dst {
		out = append(out, r.toModel())
	}
	return out, nil
}
