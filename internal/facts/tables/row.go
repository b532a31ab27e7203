// Package tables implements the binary-table store: crates.io's CSV
// database dump is converted once into a set of memory-mapped, densely
// packed binary files and then read with zero-copy row access.
package tables

import (
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// RowWriter accumulates one row's encoded bytes at a time, then flushes
// them to the underlying writer via Done. Reusing the internal buffer
// across rows avoids an allocation per row during ingest.
type RowWriter struct {
	buf      []byte
	writer   interface{ Write([]byte) (int, error) }
	rowCount uint64
}

// NewRowWriter returns a RowWriter that appends completed rows to w.
func NewRowWriter(w interface{ Write([]byte) (int, error) }) *RowWriter {
	return &RowWriter{writer: w}
}

// RowCount returns the number of rows flushed so far.
func (w *RowWriter) RowCount() uint64 { return w.rowCount }

// Done flushes the accumulated row bytes and resets the buffer for the
// next row.
func (w *RowWriter) Done() error {
	if _, err := w.writer.Write(w.buf); err != nil {
		return fmt.Errorf("writing row: %w", err)
	}
	w.buf = w.buf[:0]
	w.rowCount++
	return nil
}

func (w *RowWriter) WriteByte_(b byte) { w.buf = append(w.buf, b) }

// WriteUint64 appends value as an unsigned varint.
func (w *RowWriter) WriteUint64(value uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], value)
	w.buf = append(w.buf, tmp[:n]...)
}

// WriteString appends a varint length prefix followed by the raw bytes.
func (w *RowWriter) WriteString(s string) {
	w.WriteUint64(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *RowWriter) WriteBool(value bool) {
	if value {
		w.WriteByte_(1)
	} else {
		w.WriteByte_(0)
	}
}

// WriteOptionalUint64 appends a presence byte followed by the value when
// present.
func (w *RowWriter) WriteOptionalUint64(value *uint64) {
	if value == nil {
		w.WriteByte_(0)
		return
	}
	w.WriteByte_(1)
	w.WriteUint64(*value)
}

// WriteStringAsUint64 parses s as a uint64 and writes it.
func (w *RowWriter) WriteStringAsUint64(s string) error {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("unable to parse u64 from %q: %w", s, err)
	}
	w.WriteUint64(v)
	return nil
}

// WriteOptionalStringAsUint64 treats an empty string as absent.
func (w *RowWriter) WriteOptionalStringAsUint64(s string) error {
	if s == "" {
		w.WriteByte_(0)
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("unable to parse u64 from %q: %w", s, err)
	}
	w.WriteOptionalUint64(&v)
	return nil
}

// WriteStringAsDateTime parses a PostgreSQL COPY-format timestamp (or
// RFC3339 as a fallback) and writes it as epoch seconds.
func (w *RowWriter) WriteStringAsDateTime(s string) error {
	ts, err := parsePgTimestamp(s)
	if err != nil {
		return err
	}
	w.WriteUint64(ts)
	return nil
}

// WriteStringAsDate parses a YYYY-MM-DD date and writes it as days since
// the Unix epoch.
func (w *RowWriter) WriteStringAsDate(s string) error {
	days, err := parsePgDate(s)
	if err != nil {
		return err
	}
	w.WriteUint64(days)
	return nil
}

// WriteStringAsURL writes s verbatim if it parses as a URL, or with an
// "https://" prefix if that makes it parse; fails otherwise.
func (w *RowWriter) WriteStringAsURL(s string) error {
	if s == "" {
		w.WriteString(s)
		return nil
	}
	if isValidURL(s) {
		w.WriteString(s)
		return nil
	}
	withScheme := "https://" + s
	if isValidURL(withScheme) {
		w.WriteString(withScheme)
		return nil
	}
	return fmt.Errorf("unable to parse URL from %q", s)
}

// WriteStringAsBool accepts PostgreSQL COPY boolean spellings.
func (w *RowWriter) WriteStringAsBool(s string) error {
	switch s {
	case "t", "true":
		w.WriteBool(true)
	case "f", "false", "":
		w.WriteBool(false)
	default:
		return fmt.Errorf("invalid boolean value: expected t/true/f/false/empty, got %q", s)
	}
	return nil
}

// WriteStringAsVersion parses a semver string and writes its five
// components (major, minor, patch, prerelease, build metadata).
func (w *RowWriter) WriteStringAsVersion(s string) error {
	v, err := semver.NewVersion(s)
	if err != nil {
		return fmt.Errorf("unable to parse version %q: %w", s, err)
	}
	w.WriteUint64(v.Major())
	w.WriteUint64(v.Minor())
	w.WriteUint64(v.Patch())
	w.WriteString(v.Prerelease())
	w.WriteString(v.Metadata())
	return nil
}

// WritePgArrayAsStringSlice parses a PostgreSQL COPY array literal
// ("{a,b,c}") and writes it as a length-prefixed string vector.
func (w *RowWriter) WritePgArrayAsStringSlice(s string) error {
	inner, ok := strings.CutPrefix(s, "{")
	if !ok {
		return fmt.Errorf("invalid PostgreSQL array format: expected '{...}', got %q", s)
	}
	inner, ok = strings.CutSuffix(inner, "}")
	if !ok {
		return fmt.Errorf("invalid PostgreSQL array format: expected '{...}', got %q", s)
	}

	if inner == "" {
		w.WriteUint64(0)
		return nil
	}
	elements := strings.Split(inner, ",")
	w.WriteUint64(uint64(len(elements)))
	for _, e := range elements {
		w.WriteString(e)
	}
	return nil
}

func isValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != "" && !strings.ContainsAny(s, " \t\n")
}

func parsePgTimestamp(s string) (uint64, error) {
	layouts := []string{
		"2006-01-02 15:04:05.999999-07",
		"2006-01-02 15:04:05-07",
		time.RFC3339,
		time.RFC3339Nano,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			secs := t.Unix()
			if secs < 0 {
				secs = 0
			}
			return uint64(secs), nil
		}
	}
	return 0, fmt.Errorf("unable to parse timestamp %q", s)
}

func parsePgDate(s string) (uint64, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, fmt.Errorf("unable to parse date %q: %w", s, err)
	}
	days := t.Unix() / 86400
	if days < 0 {
		days = 0
	}
	return uint64(days), nil
}

// RowReader decodes a row at a time from a contiguous byte slice,
// typically a window into a memory-mapped table file.
type RowReader struct {
	data []byte
	pos  int
}

// NewRowReader returns a reader positioned at the start of data.
func NewRowReader(data []byte) *RowReader {
	return &RowReader{data: data}
}

// Position returns the current byte offset within data.
func (r *RowReader) Position() int { return r.pos }

func (r *RowReader) ReadByte_() byte {
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *RowReader) ReadUint64() uint64 {
	v, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		panic("corrupt table: invalid varint")
	}
	r.pos += n
	return v
}

func (r *RowReader) ReadBool() bool { return r.ReadByte_() != 0 }

func (r *RowReader) ReadString() string {
	n := int(r.ReadUint64())
	end := r.pos + n
	s := string(r.data[r.pos:end])
	r.pos = end
	return s
}

func (r *RowReader) ReadOptionalUint64() *uint64 {
	if r.ReadByte_() == 0 {
		return nil
	}
	v := r.ReadUint64()
	return &v
}

func (r *RowReader) ReadDateTime() time.Time {
	return time.Unix(int64(r.ReadUint64()), 0).UTC()
}

func (r *RowReader) ReadDate() time.Time {
	days := int64(r.ReadUint64())
	return time.Unix(days*86400, 0).UTC()
}

func (r *RowReader) ReadVersion() *semver.Version {
	major := r.ReadUint64()
	minor := r.ReadUint64()
	patch := r.ReadUint64()
	pre := r.ReadString()
	build := r.ReadString()

	var s strings.Builder
	fmt.Fprintf(&s, "%d.%d.%d", major, minor, patch)
	if pre != "" {
		s.WriteString("-" + pre)
	}
	if build != "" {
		s.WriteString("+" + build)
	}
	v, err := semver.NewVersion(s.String())
	if err != nil {
		// The bytes came from our own writer; a parse failure here means
		// the table is corrupt.
		panic(fmt.Sprintf("corrupt table: invalid version %q: %v", s.String(), err))
	}
	return v
}

func (r *RowReader) ReadStringSlice() []string {
	count := int(r.ReadUint64())
	result := make([]string, count)
	for i := range result {
		result[i] = r.ReadString()
	}
	return result
}
