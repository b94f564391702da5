package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_ProducesPDF(t *testing.T) {
	doc, err := PDF{}.Render("Users", []string{"Type", "Name", "Email", "Mobile"}, [][]string{
		{"Counsellor", "Asha", "asha@example.edu", "9000000000"},
		{"Admin", "Ravi", "", ""},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestRender_NoColumns(t *testing.T) {
	_, err := PDF{}.Render("Empty", nil, nil)
	assert.Error(t, err)
}

func TestPad(t *testing.T) {
	assert.Equal(t, []string{"a", "", ""}, pad([]string{"a"}, 3))
	assert.Equal(t, []string{"a", "b"}, pad([]string{"a", "b", "c"}, 2))
}
