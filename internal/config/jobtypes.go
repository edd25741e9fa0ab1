package config

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// defaultJobTypes maps Veeam job type codes to the labels reported to Zabbix.
var defaultJobTypes = map[int]string{
	0:     "Backup",
	1:     "Replication",
	2:     "Copy",
	3:     "SureBackup",
	4:     "Restore",
	24:    "File to Tape",
	28:    "Backup to Tape",
	51:    "Backup Copy",
	63:    "Backup Copy (Simple)",
	4030:  "RMAN Backup",
	12002: "Agent Backup Policy",
	12003: "Agent Backup Job",
}

// JobTypeCatalog is a read-only mapping from job type code to label.
type JobTypeCatalog struct {
	labels map[int]string
	codes  []int
}

func NewJobTypeCatalog(labels map[int]string) JobTypeCatalog {
	c := JobTypeCatalog{labels: make(map[int]string, len(labels))}
	for code, label := range labels {
		c.labels[code] = label
		c.codes = append(c.codes, code)
	}
	sort.Ints(c.codes)
	return c
}

// DefaultJobTypes returns the built-in catalog.
func DefaultJobTypes() JobTypeCatalog {
	return NewJobTypeCatalog(defaultJobTypes)
}

// ParseJobTypes builds a catalog from the string-keyed table read from the
// config file. An empty table yields the built-in catalog.
func ParseJobTypes(raw map[string]string) (JobTypeCatalog, error) {
	if len(raw) == 0 {
		return DefaultJobTypes(), nil
	}
	labels := make(map[int]string, len(raw))
	for k, label := range raw {
		code, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return JobTypeCatalog{}, errors.Errorf("job_types: key %q is not an integer type code", k)
		}
		labels[code] = label
	}
	return NewJobTypeCatalog(labels), nil
}

// Label returns the label for code and whether the code is known.
func (c JobTypeCatalog) Label(code int) (string, bool) {
	l, ok := c.labels[code]
	return l, ok
}

// Codes returns the known codes in ascending order.
func (c JobTypeCatalog) Codes() []int {
	out := make([]int, len(c.codes))
	copy(out, c.codes)
	return out
}

func (c JobTypeCatalog) Len() int { return len(c.codes) }
