package greenberg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/greenberg/rules"
)

const lang2vec = `{
  "CODE": ["S_SVO", "S_VSO", "S_VOS", "S_ADJECTIVE_BEFORE_NOUN", "S_ADJECTIVE_AFTER_NOUN"],
  "eng": [1, 0, 0, 1, 0],
  "fra": [1, 0, 0, 0, 1],
  "gle": [0, 1, 0, "--", "--"]
}`

const languages = `ID,Name,Macroarea,Latitude,Longitude,Family,ISO639P3code
stan1293,English,Eurasia,52,0,Indo-European,eng
stan1290,French,Eurasia,48,2,Indo-European,fra
`

func TestEvaluate(t *testing.T) {
	dir := t.TempDir()
	feat := filepath.Join(dir, "lang2vec.json")
	langs := filepath.Join(dir, "languages.csv")
	require.NoError(t, os.WriteFile(feat, []byte(lang2vec), 0o600))
	require.NoError(t, os.WriteFile(langs, []byte(languages), 0o600))

	results, err := Evaluate(feat, langs, []string{"23"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, 3, res.Coverage.TotalLanguages)
	assert.Equal(t, 2, res.Coverage.TestableLanguages)
	require.Len(t, res.MacroSummary, 1)
	assert.Equal(t, 1, res.MacroSummary[0].NViolations)

	_, err = Evaluate(feat, langs, []string{"nope"})
	assert.ErrorIs(t, err, rules.ErrUnknownRule)

	_, err = Evaluate(feat, langs, nil)
	assert.Error(t, err, "rules 19/20/21/24/41 need columns this table lacks")
}
