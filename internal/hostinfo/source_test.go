package hostinfo

import (
	"testing"

	"github.com/aholiveira/zabbix-VB-R-SQL/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestWMIRepositoryToModel(t *testing.T) {
	r := wmiRepository{Name: "Default Backup Repository", Capacity: 536870912000, FreeSpace: 1024, OutOfDate: true}
	assert.Equal(t, models.RepositoryInfo{
		Name:      "Default Backup Repository",
		Capacity:  536870912000,
		FreeSpace: 1024,
		OutOfDate: true,
	}, r.toModel())
}

func TestNewWMISource(t *testing.T) {
	assert.Equal(t, `root\VeeamBPV2`, NewWMISource().Namespace)
}

var _ Source = (*WMISource)(nil)
