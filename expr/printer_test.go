package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRoundTrip(t *testing.T) {
	sources := []string{
		`1 + 2 * 3`,
		`{age} >= 18 && {country} == "US"`,
		`"yes" if {active} else "no"`,
		`not {flag}`,
		`-{x}`,
		`len({items}) > 0`,
		`({a} + {b}) * {c}`,
		`{user}.profile.name`,
		`{items}[0]`,
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			n1, err := Parse(src)
			require.NoError(t, err)
			printed := Print(n1)
			n2, err := Parse(printed)
			require.NoError(t, err, "re-parsing printed form %q", printed)
			assert.Equal(t, n1, n2, "printed form %q did not round-trip to the same AST", printed)
		})
	}
}
