package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciome/bmdexpress-web/internal/projects/codec"
)

const liverYAML = `name: liver-study
doseResponseExperiments:
  - name: Liver_Expr
    treatments:
      - {name: control, dose: 0}
      - {dose: 1.5}
    probeResponses:
      - {probeId: p1, responses: [1.0, 2.5]}
bmdResults:
  - name: Liver_BMD
    experimentName: Liver_Expr
    probeStatResults:
      - probeId: p1
        geneSymbols: [Cyp1a1]
        bestModel: Hill
        bmd: 1.2
        bmdl: 0.8
        fits:
          - {model: Hill, bmd: 1.2, bmdl: 0.8, aic: -10.5}
categoryResults: []
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPackAndInspect(t *testing.T) {
	src := writeSource(t, "liver.yaml", liverYAML)
	bundle := filepath.Join(filepath.Dir(src), "liver.bm2")

	out, err := execute(t, "pack", src, "-o", bundle)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+bundle)

	data, err := os.ReadFile(bundle)
	require.NoError(t, err)
	assert.True(t, codec.IsCompressed(data))

	p, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "liver-study", p.Name)
	require.Len(t, p.BMDResults, 1)
	assert.Equal(t, 1.2, *p.BMDResults[0].ProbeStatResults[0].BMD)

	out, err = execute(t, "inspect", bundle)
	require.NoError(t, err)
	assert.Contains(t, out, "project: liver-study")
	assert.Regexp(t, `bmd\s+Liver_BMD\s+11\s+1`, out)
	assert.Regexp(t, `experiment\s+Liver_Expr\s+3\s+1`, out)
}

func TestPackUncompressedJSON(t *testing.T) {
	src := writeSource(t, "study.json", `{"name":"json-study","bmdResults":[{"name":"B","probeStatResults":[]}]}`)

	_, err := execute(t, "pack", src, "--compress=false")
	require.NoError(t, err)

	data, err := os.ReadFile(strings.TrimSuffix(src, ".json") + ".bm2")
	require.NoError(t, err)
	assert.False(t, codec.IsCompressed(data))

	out, err := execute(t, "inspect", "--json", strings.TrimSuffix(src, ".json")+".bm2")
	require.NoError(t, err)
	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "json-study", summary["name"])
	assert.Equal(t, []any{"B"}, summary["bmdResultNames"])
}

func TestPackRequiresName(t *testing.T) {
	src := writeSource(t, "bad.yaml", "bmdResults: []\n")
	_, err := execute(t, "pack", src)
	assert.ErrorContains(t, err, "name is required")
}

func TestInspectRejectsGarbage(t *testing.T) {
	src := writeSource(t, "junk.bm2", "not a bundle")
	_, err := execute(t, "inspect", src)
	assert.Error(t, err)
}

func TestTable(t *testing.T) {
	src := writeSource(t, "liver.yaml", liverYAML)
	bundle := filepath.Join(filepath.Dir(src), "t.bm2")
	_, err := execute(t, "pack", src, "-o", bundle)
	require.NoError(t, err)

	out, err := execute(t, "table", bundle, "bmd-results", "liver_bmd")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Probe ID\tGenes\tBest Model"))
	assert.True(t, strings.HasPrefix(lines[1], "p1\t"))

	_, err = execute(t, "table", bundle, "category", "missing")
	assert.Error(t, err)
}
