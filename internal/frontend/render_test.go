package frontend

import (
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateFuncs_MoneyRendersRefunds(t *testing.T) {
	tmpl := template.Must(template.New("t").Funcs(templateFuncs).Parse(`{{money .}}`))

	for cents, want := range map[int64]string{
		12050: "$120.50",
		-150:  "-$1.50",
	} {
		var b strings.Builder
		require.NoError(t, tmpl.Execute(&b, cents))
		assert.Equal(t, want, b.String())
	}
}
