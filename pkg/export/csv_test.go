package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	out, err := CSV(Table{
		Headers: []string{"day", "slot", "course"},
		Rows: []map[string]string{
			{"day": "Monday", "slot": "09:00-09:50", "course": "cs101"},
			{"day": "Tuesday", "course": "ma101, lab"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "day,slot,course\nMonday,09:00-09:50,cs101\nTuesday,,\"ma101, lab\"\n", string(out))
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := CSV(Table{})
	assert.Error(t, err)
}
