package evaluate

import (
	"bytes"
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/evidence/extract/builtin"
	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/audit/store/memory"
)

const (
	formJSON    = `{"account_holder_name": "Jane", "account_holder_surname": "Doe", "passport_number": "X123"}`
	profileJSON = `{"first_middle_names": "Jane", "last_name": "Doe", "id_passport_number": "X123", "gender": "F"}`
	scanText    = "UTOPIA PASSPORT\nDOE JANE\nX123 F\n"
)

func writeClient(t *testing.T, root, name string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for file, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o600))
	}
}

func consistentClient() map[string]string {
	return map[string]string{"account.json": formJSON, "profile.json": profileJSON, "passport.txt": scanText}
}

func TestParseConfig(t *testing.T) {
	t.Setenv("ONBOARD_BATCH_CONCURRENCY", "8")

	cfg, err := ParseConfig(flag.NewFlagSet("evaluate", flag.ContinueOnError), []string{"-dir", "data", "-expect-accept-upto", "5"})
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.Dir)
	assert.Equal(t, 5, cfg.ExpectAcceptUpTo)
	assert.Equal(t, 8, cfg.Batch.Concurrency)

	cfg, err = ParseConfig(flag.NewFlagSet("evaluate", flag.ContinueOnError), nil)
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.ExpectAcceptUpTo)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeClient(t, root, "client_10", consistentClient())
	writeClient(t, root, "client_2", consistentClient())
	writeClient(t, root, "client_3", map[string]string{"account.json": formJSON, "profile.json": profileJSON, "passport.png": "binary"})
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.txt"), []byte("ignored"), 0o600))

	registry, err := builtin.NewRegistry(builtin.Config{})
	require.NoError(t, err)

	items, skipped, err := Discover(root, registry)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "client_2", items[0].ClientID, "numeric order, not lexical")
	assert.Equal(t, "client_10", items[1].ClientID)
	assert.Equal(t, filepath.Join(root, "client_2", "passport.txt"), items[0].Sources.ImagePath)

	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Reason, "passport", "png needs tesseract")
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	writeClient(t, root, "client_1", consistentClient())
	inconsistent := consistentClient()
	inconsistent["profile.json"] = `{"first_middle_names": "Jane", "last_name": "Smith", "id_passport_number": "X123", "gender": "F"}`
	writeClient(t, root, "client_2", inconsistent)

	t.Run("labels agree", func(t *testing.T) {
		var out bytes.Buffer
		err := Run(context.Background(), Config{Dir: root, ExpectAcceptUpTo: 1, LogLevel: "error"}, &out)
		require.NoError(t, err)

		assert.Contains(t, out.String(), "client_1  accept  all_checks_passed")
		assert.Contains(t, out.String(), "merge_mismatch")
		assert.Contains(t, out.String(), "total=2 accepted=1 rejected=1 failed=0 disagreements=0")
	})

	t.Run("labels disagree", func(t *testing.T) {
		var out bytes.Buffer
		err := Run(context.Background(), Config{Dir: root, ExpectAcceptUpTo: 2, LogLevel: "error"}, &out)
		assert.ErrorIs(t, err, ErrDisagreement)
		assert.Contains(t, out.String(), "UNEXPECTED")
	})

	t.Run("missing directory", func(t *testing.T) {
		err := Run(context.Background(), Config{Dir: filepath.Join(root, "nope"), ExpectAcceptUpTo: -1}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestRunRecordsAuditTrail(t *testing.T) {
	root := t.TempDir()
	writeClient(t, root, "client_1", consistentClient())

	store := memory.NewInMemoryStore()
	err := run(context.Background(), Config{Dir: root, ExpectAcceptUpTo: -1}, &bytes.Buffer{}, slog.New(slog.DiscardHandler), store)
	require.NoError(t, err)

	decisions, err := store.ListByClient(context.Background(), "client_1")
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, string(audit.EventEvaluationAccepted), decisions[0].Action)

	events, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	var batch []audit.Event
	for _, e := range events {
		if e.Action == string(audit.EventBatchCompleted) {
			batch = append(batch, e)
		}
	}
	require.Len(t, batch, 1)
	assert.Equal(t, audit.CategoryOperations, batch[0].Category)
	assert.Contains(t, batch[0].Details, "total=1")
}
