package logger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readJournal(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestSaleJournalConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales", "journal.csv")

	j, err := NewSaleJournal(path, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	workers, perWorker := 5, 40
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(id int) {
			defer wg.Done()
			for n := 0; n < perWorker; n++ {
				err := j.Record(SaleRecord{
					Order:     fmt.Sprintf("order_%d_%d", id, n),
					Price:     uint64(n),
					TokenSize: 1,
					Attempts:  1,
					Status:    SaleConfirmed,
				})
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	records, _ := j.GetStats()
	assert.Equal(t, uint64(workers*perWorker), records)
	require.NoError(t, j.Close())

	rows := readJournal(t, path)
	require.Len(t, rows, workers*perWorker+1)
	assert.Equal(t, journalHeader, rows[0])
}

func TestSaleJournalAppendsWithoutSecondHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.csv")
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	j, err := NewSaleJournal(path, time.Second, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, j.Record(SaleRecord{Time: ts, Order: "first", Status: SaleConfirmed, Signature: "sig"}))
	require.NoError(t, j.Close())

	j, err = NewSaleJournal(path, time.Second, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, j.Record(SaleRecord{
		Time:      ts,
		OrderID:   7,
		Order:     "second",
		Price:     1500000000,
		TokenSize: 1,
		Attempts:  3,
		Status:    SaleFailed,
		Err:       errors.New("blockhash not found"),
	}))
	require.NoError(t, j.Close())

	rows := readJournal(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "first", rows[1][2])
	assert.Equal(t, []string{
		"2024-05-01T12:00:00Z", "7", "second", "", "", "", "",
		"1500000000", "1", "3", "", SaleFailed, "blockhash not found",
	}, rows[2])
}
