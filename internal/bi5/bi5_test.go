package bi5

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ulikunitz/xz/lzma"

	"github.com/mayeranalytics/go-bi5/api/tickdata"
)

func encodeTick(tick tickdata.Tick) []byte {
	data := make([]byte, TickBytes)
	binary.BigEndian.PutUint32(data[0:4], tick.TimeMs)
	binary.BigEndian.PutUint32(data[4:8], tick.Ask)
	binary.BigEndian.PutUint32(data[8:12], tick.Bid)
	binary.BigEndian.PutUint32(data[12:16], math.Float32bits(tick.AskSize))
	binary.BigEndian.PutUint32(data[16:20], math.Float32bits(tick.BidSize))
	return data
}

func compress(t *testing.T, payload []byte) []byte {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	_, err = w.Write(payload)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecodeTick(t *testing.T) {
	want := tickdata.Tick{
		TimeMs:  1860002,
		Ask:     133153,
		Bid:     133117,
		AskSize: 0.015,
		BidSize: 0.02,
	}

	tick, err := DecodeTick(encodeTick(want))
	assert.NoError(t, err)
	assert.Equal(t, want, tick)
}

func TestDecodeTick_ShortBuffer(t *testing.T) {
	_, err := DecodeTick(make([]byte, TickBytes-1))
	assert.Error(t, err)
}

func TestDecompress_EmptyInput(t *testing.T) {
	buf, err := Decompress(bytes.NewReader(nil), 0)
	assert.NoError(t, err)
	assert.Empty(t, buf)
}

func TestDecompress_RoundTrip(t *testing.T) {
	ticks := []tickdata.Tick{
		{TimeMs: 2, Ask: 133153, Bid: 133117, AskSize: 0.015, BidSize: 0.02},
		{TimeMs: 1042, Ask: 133163, Bid: 133127, AskSize: 0.075, BidSize: 0.015},
		{TimeMs: 3599899, Ask: 131453, Bid: 131427, AskSize: 0.015, BidSize: 0.02},
	}
	var payload []byte
	for _, tick := range ticks {
		payload = append(payload, encodeTick(tick)...)
	}
	compressed := compress(t, payload)

	buf, err := Decompress(bytes.NewReader(compressed), int64(len(compressed)))
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	assert.Len(t, buf, len(ticks)*TickBytes)

	for i, want := range ticks {
		tick, derr := DecodeTick(buf[i*TickBytes:])
		assert.NoError(t, derr)
		assert.Equal(t, want, tick)
	}
}

func TestDecompress_LengthInvariant(t *testing.T) {
	compressed := compress(t, make([]byte, TickBytes+1))

	_, err := Decompress(bytes.NewReader(compressed), int64(len(compressed)))
	if !assert.Error(t, err) {
		t.FailNow()
	}

	var ferr FormatError
	if assert.ErrorAs(t, err, &ferr) {
		assert.Equal(t, TickBytes+1, ferr.Length)
		assert.Equal(t, TickBytes, ferr.RecordSize)
	}
	assert.Contains(t, err.Error(), "21")
	assert.Contains(t, err.Error(), "20")
}

func TestDecompress_CorruptStream(t *testing.T) {
	// 0xFF is not a valid LZMA properties byte.
	corrupt := bytes.Repeat([]byte{0xFF}, 21)

	_, err := Decompress(bytes.NewReader(corrupt), int64(len(corrupt)))
	assert.Error(t, err)
}

func TestDecompressFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "00h_ticks.bi5")
	if !assert.NoError(t, os.WriteFile(path, nil, 0o666)) {
		t.FailNow()
	}

	buf, err := DecompressFile(path)
	assert.NoError(t, err)
	assert.Empty(t, buf)
}

func TestDecompressFile_Missing(t *testing.T) {
	_, err := DecompressFile(filepath.Join(t.TempDir(), "does-not-exist.bi5"))
	assert.Error(t, err)
}

// The reference fixture holds one hour of ticks; count, first and last
// records are known.
func TestDecompressFile_ReferenceFixture(t *testing.T) {
	buf, err := DecompressFile(filepath.Join("testdata", "test.bi5"))
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	if !assert.Equal(t, 10412*TickBytes, len(buf)) {
		t.FailNow()
	}

	first, err := DecodeTick(buf)
	assert.NoError(t, err)
	assert.Equal(t, tickdata.Tick{TimeMs: 1860002, Ask: 133153, Bid: 133117, AskSize: 0.015, BidSize: 0.02}, first)

	last, err := DecodeTick(buf[len(buf)-TickBytes:])
	assert.NoError(t, err)
	assert.Equal(t, tickdata.Tick{TimeMs: 3599899, Ask: 131453, Bid: 131427, AskSize: 0.015, BidSize: 0.02}, last)
}
