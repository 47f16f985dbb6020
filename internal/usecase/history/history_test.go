package history

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/savespendshare-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	aliceID = uuid.New()
	bobID   = uuid.New()
	base    = time.Date(2024, time.January, 14, 10, 5, 0, 0, time.UTC)
)

func tx(childID uuid.UUID, name string, bucket domain.Bucket, kind domain.TransactionKind, amount string, desc string, age time.Duration) domain.Transaction {
	return domain.Transaction{
		ID:          uuid.New(),
		Timestamp:   base.Add(-age),
		ChildID:     childID,
		ChildName:   name,
		Bucket:      bucket,
		Amount:      decimal.RequireFromString(amount),
		Description: desc,
		Kind:        kind,
	}
}

func sampleLog() []domain.Transaction {
	return []domain.Transaction{
		tx(bobID, "Bob", domain.BucketSpend, domain.KindDeduction, "2.5", `Ice "cream"`, 0),
		tx(aliceID, "Alice", domain.BucketSave, domain.KindManualAddition, "20", "Gift from Grandma", time.Hour),
		tx(bobID, "Bob", domain.BucketAll, domain.KindAllowance, "7", "Weekly allowance", 2*time.Hour),
		tx(aliceID, "Alice", domain.BucketAll, domain.KindAllowance, "10", "Weekly allowance", 2*time.Hour),
	}
}

func TestQuery(t *testing.T) {
	log := sampleLog()

	tests := []struct {
		name    string
		filter  Filter
		wantLen int
	}{
		{"no filter", Filter{}, 4},
		{"by child", Filter{ChildID: aliceID}, 2},
		{"by bucket", Filter{Bucket: domain.BucketAll}, 2},
		{"by kind", Filter{Kind: domain.KindDeduction}, 1},
		{"search description ignores case", Filter{Search: "GRANDMA"}, 1},
		{"search child name", Filter{Search: "bob"}, 2},
		{"combined", Filter{ChildID: bobID, Kind: domain.KindAllowance, Search: "weekly"}, 1},
		{"no match", Filter{Search: "bicycle"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Query(log, tt.filter)
			assert.Len(t, got, tt.wantLen)
			assert.NotNil(t, got)
		})
	}
}

func TestQuery_KeepsOrder(t *testing.T) {
	log := sampleLog()

	got := Query(log, Filter{ChildID: bobID})

	require.Len(t, got, 2)
	assert.Equal(t, log[0].ID, got[0].ID)
	assert.Equal(t, log[2].ID, got[1].ID)
}

func TestRecent(t *testing.T) {
	log := sampleLog()

	assert.Len(t, Recent(log, 2), 2)
	assert.Len(t, Recent(log, 10), 4)
	assert.Empty(t, Recent(log, -1))
	assert.Equal(t, log[0].ID, Recent(log, 1)[0].ID)
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer

	err := ExportCSV(&buf, sampleLog()[:2], time.UTC)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Time,Child,Bucket,Kind,Amount,Description", lines[0])
	assert.Equal(t, `2024-01-14,10:05:00,"Bob",spend,deduction,2.50,"Ice ""cream"""`, lines[1])
	assert.Equal(t, `2024-01-14,09:05:00,"Alice",save,manual_addition,20.00,"Gift from Grandma"`, lines[2])
}

func TestBackupRoundTrip(t *testing.T) {
	state := domain.NewAppState()
	state.Kids = []domain.Child{{
		ID:       aliceID,
		Name:     "Alice",
		Birthday: domain.NewDate(2014, time.January, 1),
		Balances: domain.Balances{Save: decimal.NewFromInt(30), Spend: decimal.NewFromInt(3), Share: decimal.NewFromInt(3)},
	}}
	state.Transactions = sampleLog()[1:2]

	var buf bytes.Buffer
	require.NoError(t, ExportBackup(&buf, state))

	restored, err := ImportBackup(&buf)

	require.NoError(t, err)
	require.Len(t, restored.Kids, 1)
	assert.Equal(t, aliceID, restored.Kids[0].ID)
	require.Len(t, restored.Transactions, 1)
	assert.Equal(t, state.Transactions[0].ID, restored.Transactions[0].ID)
}

func TestImportBackup_Rejects(t *testing.T) {
	_, err := ImportBackup(strings.NewReader(`{"kids":[]}`))

	var sErr *domain.StructuralIntegrityError
	assert.ErrorAs(t, err, &sErr)
}

func TestBackupFileName(t *testing.T) {
	assert.Equal(t, "save-spend-share-backup-2024-01-14.json", BackupFileName(base))
}
