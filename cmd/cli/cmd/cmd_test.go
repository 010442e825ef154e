package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/trader-ledger/internal/model"
	"github.com/nimasrn/trader-ledger/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerYAML = `traders:
  - id: t1
    name: Ali
transactions:
  - id: x1
    traderId: t1
    date: "2025-06-01T12:00:00.000Z"
    type: nakit_borc
    amount: 100
  - id: x2
    traderId: t1
    date: "2025-06-02T12:00:00.000Z"
    type: urun_ile_odeme_yapildi
    productType: altin
    quantity: 1
    amount: 0
    conversionId: c-1
productTypes: []
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("REDIS_UNIVERSAL_KEY_PREFIX", "cli:")

	dir := t.TempDir()
	in := filepath.Join(dir, "ledger.yaml")
	require.NoError(t, os.WriteFile(in, []byte(ledgerYAML), 0o600))

	t.Run("import", func(t *testing.T) {
		out, err := run(t, "import", in, "--user", "u1")
		require.NoError(t, err)

		var res services.ImportResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, services.ImportResult{Traders: 1, Transactions: 2}, res)
	})

	t.Run("import requires user", func(t *testing.T) {
		_, err := run(t, "import", in)
		assert.ErrorContains(t, err, "--user")
	})

	t.Run("export to file", func(t *testing.T) {
		dst := filepath.Join(dir, "out.json")
		_, err := run(t, "export", "--user", "u1", "-o", dst)
		require.NoError(t, err)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		var doc model.SnapshotDocument
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Len(t, doc.Traders, 1)
		assert.Len(t, doc.Transactions, 2)
	})

	t.Run("report", func(t *testing.T) {
		out, err := run(t, "report", "--user", "u1")
		require.NoError(t, err)

		var r model.Report
		require.NoError(t, json.Unmarshal([]byte(out), &r))
		assert.Equal(t, 100.0, r.Portfolio.TotalReceivable)
		assert.Equal(t, 1, r.TotalTraders)
	})

	t.Run("trader balance as of", func(t *testing.T) {
		out, err := run(t, "report", "--user", "u1", "--trader", "t1", "--as-of", "2025-06-01T23:59:59Z")
		require.NoError(t, err)

		var b model.TraderBalance
		require.NoError(t, json.Unmarshal([]byte(out), &b))
		assert.Equal(t, 100.0, b.Balances.Money)
		assert.Empty(t, b.Balances.Products)
	})

	t.Run("bad as of", func(t *testing.T) {
		_, err := run(t, "report", "--user", "u1", "--as-of", "soon")
		assert.ErrorContains(t, err, "--as-of")
	})

	t.Run("reconcile all users", func(t *testing.T) {
		out, err := run(t, "reconcile")
		require.NoError(t, err)

		var res map[string]model.ReconcileResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		require.Contains(t, res, "u1")
		require.Len(t, res["u1"].Incomplete, 1)
		assert.Equal(t, "c-1", res["u1"].Incomplete[0].ConversionID)
		assert.Equal(t, 0, res["u1"].Repaired)
	})

	t.Run("migrate needs postgres", func(t *testing.T) {
		_, err := run(t, "migrate")
		assert.ErrorContains(t, err, "postgres")
	})
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, "yaml", formatFor("", "a.yml"))
	assert.Equal(t, "json", formatFor("", "a.json"))
	assert.Equal(t, "json", formatFor("", ""))
	assert.Equal(t, "yaml", formatFor("yaml", "a.json"))
}
