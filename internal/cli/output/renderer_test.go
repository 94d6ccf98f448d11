package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderer_NoColor(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, true)

	r.Header("Tables")
	r.Success("done")
	r.Muted("(2 rows)")
	r.Printf("%d-%s\n", 1, "a")
	r.Error(errors.New("boom"))

	assert.Equal(t, "Tables\n✓ done\n(2 rows)\n1-a\n", out.String())
	assert.Equal(t, "Error: boom\n", errOut.String())
}

func TestRenderer_Writers(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, true)

	assert.Same(t, &out, r.Writer())
	assert.Same(t, &errOut, r.ErrWriter())
	assert.NotNil(t, r.Styles())
}
