package tables

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// HeaderSize is the fixed-size header every table file carries: an 8-byte
// format magic, an 8-byte row count, and an 8-byte creation timestamp.
const HeaderSize = 24

// formatMagic identifies the current binary table layout. Bumping it
// invalidates every table on disk, forcing a regeneration from a fresh
// crates.io dump.
const formatMagic uint64 = 0xC0DE_C0DE_C0DE_0001

// guardBytes pads the end of the row data so a varint decode can never
// read past the end of the memory-mapped region.
const guardBytes = 10

// Index is a byte offset into a table's row data, captured while
// iterating and later usable with Table.Get for direct random access.
type Index int

// Table is a memory-mapped, read-only view over one binary table file.
// Row is the decoded row type; readRow knows how to decode exactly one
// row starting at the reader's current position.
type Table[Row any] struct {
	mmap      []byte
	data      []byte
	count     uint64
	timestamp time.Time
	readRow   func(*RowReader) Row
}

// Open memory-maps tableName under tablesRoot and validates its header.
// If the table is older than maxTTL it is rejected with ErrCacheStale-class
// behavior (the caller is expected to regenerate it).
func Open[Row any](tablesRoot, tableName string, maxTTL time.Duration, now time.Time, readRow func(*RowReader) Row) (*Table[Row], error) {
	path := filepath.Join(tablesRoot, tableName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open table file %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("unable to stat table file %q: %w", path, err)
	}
	size := int(info.Size())
	if size == 0 {
		return nil, fmt.Errorf("invalid table %q: empty file", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("unable to memory-map table file %q: %w", path, err)
	}
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	count, timestamp, err := validateHeader(data, maxTTL, now)
	if err != nil {
		_ = unix.Munmap(data)
		return nil, err
	}

	return &Table[Row]{
		mmap:      data,
		data:      data[HeaderSize:],
		count:     count,
		timestamp: timestamp,
		readRow:   readRow,
	}, nil
}

// Close releases the memory mapping. The Table must not be used
// afterward.
func (t *Table[Row]) Close() error {
	return unix.Munmap(t.mmap)
}

// Len returns the number of rows in the table.
func (t *Table[Row]) Len() int { return int(t.count) }

// Timestamp returns when the table was generated.
func (t *Table[Row]) Timestamp() time.Time { return t.timestamp }

// Get decodes the row starting at index's byte offset.
func (t *Table[Row]) Get(index Index) Row {
	r := NewRowReader(t.data[int(index):])
	return t.readRow(r)
}

// All iterates every row in file order, yielding each row alongside the
// Index that can later be used to re-fetch it directly via Get.
func (t *Table[Row]) All() iter.Seq2[Row, Index] {
	return func(yield func(Row, Index) bool) {
		r := NewRowReader(t.data)
		for i := uint64(0); i < t.count; i++ {
			pos := r.Position()
			row := t.readRow(r)
			if !yield(row, Index(pos)) {
				return
			}
		}
	}
}

func validateHeader(data []byte, maxTTL time.Duration, now time.Time) (uint64, time.Time, error) {
	if len(data) < HeaderSize {
		return 0, time.Time{}, fmt.Errorf("invalid table: file too short (need at least %d bytes for header)", HeaderSize)
	}

	magic := binary.LittleEndian.Uint64(data[0:8])
	if magic != formatMagic {
		return 0, time.Time{}, fmt.Errorf("invalid table format: expected magic 0x%016X, found 0x%016X; database needs regeneration", formatMagic, magic)
	}

	count := binary.LittleEndian.Uint64(data[8:16])
	tableTimestamp := binary.LittleEndian.Uint64(data[16:24])

	nowSecs := uint64(now.Unix())
	var ageSeconds uint64
	if nowSecs > tableTimestamp {
		ageSeconds = nowSecs - tableTimestamp
	}
	age := time.Duration(ageSeconds) * time.Second
	if age > maxTTL {
		return 0, time.Time{}, fmt.Errorf("table is stale: age %s exceeds TTL %s", age, maxTTL)
	}

	return count, time.Unix(int64(tableTimestamp), 0).UTC(), nil
}

// Create converts one CSV file into a binary table file under tablesRoot,
// via writeRow, which is invoked once per CSV record with the header's
// column-name-to-index mapping.
func Create(tablesRoot, tableName string, csvData io.Reader, now time.Time, writeRow func(record []string, header map[string]int, w *RowWriter) error) error {
	if err := os.MkdirAll(tablesRoot, 0o755); err != nil {
		return fmt.Errorf("unable to create tables directory %q: %w", tablesRoot, err)
	}
	path := filepath.Join(tablesRoot, tableName)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("unable to create table file %q: %w", path, err)
	}
	defer f.Close()

	bufWriter := bufio.NewWriterSize(f, 1024*1024)

	if _, err := bufWriter.Write(make([]byte, HeaderSize)); err != nil {
		return fmt.Errorf("writing table header placeholder: %w", err)
	}

	rowWriter := NewRowWriter(bufWriter)

	reader := csv.NewReader(csvData)
	reader.ReuseRecord = true
	headerRow, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading CSV header for %q: %w", tableName, err)
	}
	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[name] = i
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading CSV record for %q: %w", tableName, err)
		}
		if err := writeRow(record, header, rowWriter); err != nil {
			return fmt.Errorf("encoding row for %q: %w", tableName, err)
		}
		if err := rowWriter.Done(); err != nil {
			return err
		}
	}

	count := rowWriter.RowCount()
	timestamp := uint64(now.Unix())

	if _, err := bufWriter.Write(make([]byte, guardBytes)); err != nil {
		return fmt.Errorf("writing table guard padding: %w", err)
	}
	if err := bufWriter.Flush(); err != nil {
		return fmt.Errorf("flushing table file %q: %w", path, err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to table header for %q: %w", path, err)
	}
	var header24 [HeaderSize]byte
	binary.LittleEndian.PutUint64(header24[0:8], formatMagic)
	binary.LittleEndian.PutUint64(header24[8:16], count)
	binary.LittleEndian.PutUint64(header24[16:24], timestamp)
	if _, err := f.Write(header24[:]); err != nil {
		return fmt.Errorf("writing table header for %q: %w", path, err)
	}

	return f.Sync()
}
