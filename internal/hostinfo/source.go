// Package hostinfo reads repository state from the Veeam WMI provider on the
// backup server.
package hostinfo

import (
	"context"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/models"
	"github.com/pkg/errors"
)

// DefaultNamespace is the WMI namespace registered by Veeam B&R.
const DefaultNamespace = `root\VeeamBPV2`

const repositoryQuery = "SELECT Name, Capacity, FreeSpace, OutOfDate FROM Repository"

// ErrUnsupported is returned where WMI is not available.
var ErrUnsupported = errors.New("wmi is not available on this platform")

// Source lists the backup repositories known to host.
type Source interface {
	Repositories(ctx context.Context, host string) ([]models.RepositoryInfo, error)
}

// wmiRepository mirrors the properties of the Veeam Repository WMI class.
type wmiRepository struct {
	Name      string
	Capacity  uint64
	FreeSpace uint64
	OutOfDate bool
}

func (r wmiRepository) toModel() models.RepositoryInfo {
	return models.RepositoryInfo{
		Name:      r.Name,
		Capacity:  r.Capacity,
		FreeSpace: r.FreeSpace,
		OutOfDate: r.OutOfDate,
	}
}

// WMISource queries the Veeam WMI provider.
type WMISource struct {
	Namespace string
}

func NewWMISource() *WMISource {
	return &WMISource{Namespace: DefaultNamespace}
}
