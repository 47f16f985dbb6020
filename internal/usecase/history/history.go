// Package history queries and exports the transaction log.
package history

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/savespendshare-backend/internal/adapter/codec"
	"github.com/simaogato/savespendshare-backend/internal/domain"
	"golang.org/x/text/cases"
)

// Filter selects transactions. Zero fields match everything.
type Filter struct {
	ChildID uuid.UUID
	Bucket  domain.Bucket
	Kind    domain.TransactionKind
	// Search matches description or child name, ignoring case.
	Search string
}

// Query returns the matching transactions, keeping log order (newest first).
func Query(txs []domain.Transaction, f Filter) []domain.Transaction {
	fold := cases.Fold()
	search := fold.String(strings.TrimSpace(f.Search))

	out := []domain.Transaction{}
	for _, tx := range txs {
		if f.ChildID != uuid.Nil && tx.ChildID != f.ChildID {
			continue
		}
		if f.Bucket != "" && tx.Bucket != f.Bucket {
			continue
		}
		if f.Kind != "" && tx.Kind != f.Kind {
			continue
		}
		if search != "" &&
			!strings.Contains(fold.String(tx.Description), search) &&
			!strings.Contains(fold.String(tx.ChildName), search) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Recent returns the n newest transactions.
func Recent(txs []domain.Transaction, n int) []domain.Transaction {
	if n < 0 {
		n = 0
	}
	return txs[:min(n, len(txs))]
}

// ExportCSV writes one row per transaction with the columns
// Date,Time,Child,Bucket,Kind,Amount,Description. Timestamps are rendered in
// loc; amounts always carry two decimals. Child and Description are always
// quoted, which encoding/csv cannot force, so rows are built by hand.
func ExportCSV(w io.Writer, txs []domain.Transaction, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	if _, err := io.WriteString(w, "Date,Time,Child,Bucket,Kind,Amount,Description\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range txs {
		ts := tx.Timestamp.In(loc)
		row := fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s\n",
			ts.Format("2006-01-02"),
			ts.Format("15:04:05"),
			quote(tx.ChildName),
			tx.Bucket,
			tx.Kind,
			tx.Amount.StringFixed(2),
			quote(tx.Description),
		)
		if _, err := io.WriteString(w, row); err != nil {
			return fmt.Errorf("write row %s: %w", tx.ID, err)
		}
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ExportBackup writes the complete state as a human readable document that
// ImportBackup accepts.
func ExportBackup(w io.Writer, state *domain.AppState) error {
	data, err := codec.Encode(state)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// ImportBackup reads a document written by ExportBackup.
func ImportBackup(r io.Reader) (*domain.AppState, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	return codec.Decode(data)
}

// BackupFileName is the conventional name of a backup taken on day.
func BackupFileName(day time.Time) string {
	return fmt.Sprintf("save-spend-share-backup-%s.json", day.Format("2006-01-02"))
}
