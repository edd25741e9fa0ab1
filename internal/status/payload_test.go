package status

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrString(s string) *string { return &s }

func TestParseJobOptions(t *testing.T) {
	opts, err := ParseJobOptions(ptrString(`<JobOptionsRoot><RunManually>False</RunManually><SomethingElse>1</SomethingElse></JobOptionsRoot>`))
	require.NoError(t, err)
	assert.False(t, opts.RunManually)

	opts, err = ParseJobOptions(ptrString(`<JobOptionsRoot><RunManually> True </RunManually></JobOptionsRoot>`))
	require.NoError(t, err)
	assert.True(t, opts.RunManually)
}

func TestParseJobOptionsMalformed(t *testing.T) {
	for name, raw := range map[string]*string{
		"nil":          nil,
		"blank":        ptrString("  "),
		"not xml":      ptrString("{not xml"),
		"missing flag": ptrString("<JobOptionsRoot><Other/></JobOptionsRoot>"),
		"bad flag":     ptrString("<JobOptionsRoot><RunManually>maybe</RunManually></JobOptionsRoot>"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJobOptions(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPayload))
		})
	}
}

func TestParseSessionLog(t *testing.T) {
	raw := `<Root TotalUsn="3">
  <Log Usn="0" Status="ESucceeded" Title="Job started"/>
  <Log Usn="1" Status="EFailed" Title="Processing vm01 Error: disk &lt;full&gt;"/>
  <Log Usn="2" Status="Failed" Title="Processing vm02"/>
</Root>`
	entries, err := ParseSessionLog(&raw)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.False(t, entries[0].Failed())
	assert.True(t, entries[1].Failed())
	assert.Equal(t, "Processing vm01 Error: disk <full>", entries[1].Title)
	assert.True(t, entries[2].Failed())
}

func TestParseSessionLogEmpty(t *testing.T) {
	entries, err := ParseSessionLog(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = ParseSessionLog(ptrString(""))
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = ParseSessionLog(ptrString("<Root/>"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseSessionLogMalformed(t *testing.T) {
	_, err := ParseSessionLog(ptrString("<Root><Log Status="))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedPayload))
}
