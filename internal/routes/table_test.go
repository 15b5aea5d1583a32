package routes

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func siteTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New([]Rule{
		{Pattern: "/", Template: "home.html"},
		{Pattern: "/faq", Template: "faq.html"},
		{Pattern: "/install", Template: "basic/install.html"},
	}, "/")
	require.NoError(t, err)
	return tbl
}

func TestMatchExact(t *testing.T) {
	tbl := siteTable(t)
	assert.Equal(t, "faq.html", tbl.Match("/faq").Template)
	assert.Equal(t, "basic/install.html", tbl.Match("/install").Template)
}

func TestMatchFallsBackToDefault(t *testing.T) {
	tbl := siteTable(t)
	assert.Equal(t, "home.html", tbl.Match("/unknown").Template)
	assert.Equal(t, "home.html", tbl.Match("/faq/").Template, "no prefix matching")
	assert.Equal(t, "home.html", tbl.Match("/FAQ").Template, "matching is case sensitive")
}

func TestRootAliases(t *testing.T) {
	tbl := siteTable(t)
	for _, f := range []string{"", "/", "//"} {
		r := tbl.Match(f)
		assert.Equal(t, "/", r.Pattern, "fragment %q", f)
		assert.Equal(t, "home.html", r.Template, "fragment %q", f)
		assert.True(t, IsRoot(f))
	}
	assert.False(t, IsRoot("///"))
}

func TestFirstRegistrationWins(t *testing.T) {
	_, err := New([]Rule{
		{Pattern: "/", Template: "a.html"},
		{Pattern: "/", Template: "b.html"},
	}, "/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, "/")
	assert.Error(t, err)

	_, err = New([]Rule{{Pattern: "faq", Template: "faq.html"}}, "/")
	assert.Error(t, err, "pattern without leading slash")

	_, err = New([]Rule{{Pattern: "/faq", Template: ""}}, "/faq")
	assert.Error(t, err, "empty template")

	_, err = New([]Rule{{Pattern: "/faq", Template: "faq.html"}}, "/")
	assert.Error(t, err, "default not registered")
}

func TestRulesIsCopy(t *testing.T) {
	tbl := siteTable(t)
	rules := tbl.Rules()
	require.Len(t, rules, 3)
	rules[0].Template = "mutated"
	assert.Equal(t, "home.html", tbl.Match("/").Template)
}

func TestLookupHasNoFallback(t *testing.T) {
	tbl := siteTable(t)
	_, ok := tbl.Lookup("/unknown")
	assert.False(t, ok)
	r, ok := tbl.Lookup("//")
	assert.True(t, ok)
	assert.Equal(t, "home.html", r.Template)
}

func TestMatchProperties(t *testing.T) {
	tbl := siteTable(t)
	known := map[string]string{"/": "home.html", "/faq": "faq.html", "/install": "basic/install.html"}

	properties := gopter.NewProperties(nil)

	properties.Property("unknown fragments resolve to the default and stay there", prop.ForAll(
		func(s string) bool {
			f := "/" + s
			if _, ok := known[f]; ok || f == "//" {
				return true
			}
			first := tbl.Match(f)
			again := tbl.Match(first.Pattern)
			return first.Template == "home.html" && again == first
		},
		gen.AlphaString(),
	))

	properties.Property("known fragments resolve to their template", prop.ForAll(
		func(i int) bool {
			rules := tbl.Rules()
			r := rules[i%len(rules)]
			return tbl.Match(r.Pattern).Template == known[r.Pattern]
		},
		gen.IntRange(0, 100),
	))

	properties.Property("matching never panics on arbitrary input", prop.ForAll(
		func(s string) bool {
			r := tbl.Match(s)
			return strings.HasPrefix(r.Pattern, "/")
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
