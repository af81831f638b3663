// internal/logger/journal.go
package logger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Статусы записи журнала продаж
const (
	SaleConfirmed = "confirmed"
	SaleRejected  = "rejected"
	SaleFailed    = "failed"
	SaleDryRun    = "dry_run"
)

var journalHeader = []string{
	"timestamp", "order_id", "order", "auction_house", "mint", "buyer", "seller",
	"price", "token_size", "attempts", "signature", "status", "error",
}

// SaleRecord is one line of the sale journal.
type SaleRecord struct {
	Time         time.Time
	OrderID      int
	Order        string
	AuctionHouse string
	Mint         string
	Buyer        string
	Seller       string
	Price        uint64
	TokenSize    uint64
	Attempts     int
	Signature    string
	Status       string
	Err          error
}

func (r SaleRecord) fields() []string {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	errText := ""
	if r.Err != nil {
		errText = r.Err.Error()
	}
	return []string{
		ts.UTC().Format(time.RFC3339),
		strconv.Itoa(r.OrderID),
		r.Order,
		r.AuctionHouse,
		r.Mint,
		r.Buyer,
		r.Seller,
		strconv.FormatUint(r.Price, 10),
		strconv.FormatUint(r.TokenSize, 10),
		strconv.Itoa(r.Attempts),
		r.Signature,
		r.Status,
		errText,
	}
}

// SaleJournal appends sale outcomes to a CSV file. Safe for concurrent use.
type SaleJournal struct {
	mu       sync.Mutex
	writer   *csv.Writer
	file     *os.File
	ticker   *time.Ticker
	done     chan struct{}
	logger   *zap.Logger
	filePath string

	writtenRecords uint64
	flushCount     uint64
}

// NewSaleJournal opens filePath for appending and writes the header into an
// empty file. Buffered records are flushed every flushInterval.
func NewSaleJournal(filePath string, flushInterval time.Duration, logger *zap.Logger) (*SaleJournal, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	j := &SaleJournal{
		writer:   csv.NewWriter(file),
		file:     file,
		ticker:   time.NewTicker(flushInterval),
		done:     make(chan struct{}),
		logger:   logger,
		filePath: filePath,
	}

	if stat.Size() == 0 {
		// Заголовок не считается записью
		if err := j.writer.Write(journalHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		j.writer.Flush()
	}

	go j.periodicFlush()

	return j, nil
}

// Record appends r to the journal.
func (j *SaleJournal) Record(r SaleRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.writer.Write(r.fields()); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	j.writtenRecords++
	return nil
}

// Flush forces a write of any buffered data
func (j *SaleJournal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.writer.Flush()
	if err := j.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	j.flushCount++
	return nil
}

func (j *SaleJournal) periodicFlush() {
	for {
		select {
		case <-j.ticker.C:
			if err := j.Flush(); err != nil {
				j.logger.Error("Periodic journal flush failed",
					zap.String("file", j.filePath),
					zap.Error(err))
			}
		case <-j.done:
			return
		}
	}
}

// Close flushes the journal and closes the file.
func (j *SaleJournal) Close() error {
	close(j.done)
	j.ticker.Stop()

	j.mu.Lock()
	defer j.mu.Unlock()

	j.writer.Flush()
	if err := j.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error on close: %w", err)
	}
	if err := j.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	j.logger.Info("Sale journal closed",
		zap.String("file", j.filePath),
		zap.Uint64("writtenRecords", j.writtenRecords),
		zap.Uint64("flushCount", j.flushCount))
	return nil
}

// GetStats returns journal statistics
func (j *SaleJournal) GetStats() (records, flushes uint64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.writtenRecords, j.flushCount
}
