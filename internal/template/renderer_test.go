package template

import (
	"strings"
	"testing"
	gotemplate "text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTemplateNameDeterministic(t *testing.T) {
	n1 := generateTemplateName("hello {{ . }}")
	n2 := generateTemplateName("hello {{ . }}")
	n3 := generateTemplateName("other")
	assert.Equal(t, n1, n2)
	assert.NotEqual(t, n1, n3)
}

func TestRenderArgs(t *testing.T) {
	r := NewRenderer(nil)
	ctx := NewContext("xint_search").Set("query", "golang").Set("limit", uint64(15))

	out, err := r.Render(`Search: {{ .Args.query }} (limit: {{ .Args.limit }})`, ctx)
	require.NoError(t, err)
	assert.Equal(t, "Search: golang (limit: 15)", out)
}

func TestRenderCachesParsedTemplates(t *testing.T) {
	r := NewRenderer(nil)
	tmpl := `{{ .Tool }}`
	for i := 0; i < 3; i++ {
		out, err := r.Render(tmpl, NewContext("xint_costs"))
		require.NoError(t, err)
		assert.Equal(t, "xint_costs", out)
	}
	assert.Len(t, r.templates, 1)
}

func TestRenderExtraFuncs(t *testing.T) {
	r := NewRenderer(gotemplate.FuncMap{
		"shout": func(s string) string { return strings.ToUpper(s) + "!" },
	})
	out, err := r.Render(`{{ shout .Args.word }}`, NewContext("t").Set("word", "hi"))
	require.NoError(t, err)
	assert.Equal(t, "HI!", out)
}

func TestRenderParseError(t *testing.T) {
	r := NewRenderer(nil)
	_, err := r.Render(`{{ .Args.x `, NewContext("t"))
	assert.Error(t, err)
	assert.Panics(t, func() { r.MustParse(`{{ end }}`) })
}

func TestSprigFunctionsAvailable(t *testing.T) {
	r := NewRenderer(nil)
	ctx := NewContext("t").Set("name", "world")

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "upper function",
			template: `{{ .Args.name | upper }}`,
			expected: "WORLD",
		},
		{
			name:     "trim function",
			template: `{{ "  hello  " | trim }}`,
			expected: "hello",
		},
		{
			name:     "default function",
			template: `{{ .Args.missing | default "fallback" }}`,
			expected: "fallback",
		},
		{
			name:     "join function",
			template: `{{ list "a" "b" | join "," }}`,
			expected: "a,b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(tt.template, ctx)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}
