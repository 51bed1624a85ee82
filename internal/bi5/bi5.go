package bi5

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/mayeranalytics/go-bi5/api/tickdata"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz/lzma"
)

// TickBytes is the wire width of one tick record.
const TickBytes = 20

// FormatError reports a decompressed payload whose length is not a whole
// number of tick records. There is no checksum in the bi5 format; this
// length invariant is the only integrity check on the payload.
type FormatError struct {
	Length     int
	RecordSize int
}

func (e FormatError) Error() string {
	return fmt.Sprintf("decompressed length %d is not a multiple of %d", e.Length, e.RecordSize)
}

// DecodeTick decodes one record from the front of data:
//
//	[u32 timeMs][u32 ask][u32 bid][f32 askSize][f32 bidSize]  big-endian
//
// It fails when fewer than TickBytes remain.
func DecodeTick(data []byte) (tickdata.Tick, error) {
	if len(data) < TickBytes {
		return tickdata.Tick{}, errors.Errorf("tick record needs %d bytes, got %d", TickBytes, len(data))
	}

	return tickdata.Tick{
		TimeMs:  binary.BigEndian.Uint32(data[0:4]),
		Ask:     binary.BigEndian.Uint32(data[4:8]),
		Bid:     binary.BigEndian.Uint32(data[8:12]),
		AskSize: math.Float32frombits(binary.BigEndian.Uint32(data[12:16])),
		BidSize: math.Float32frombits(binary.BigEndian.Uint32(data[16:20])),
	}, nil
}

// Decompress reads a whole LZMA stream into memory and validates the tick
// record-length invariant. A size of zero yields an empty payload without
// touching the decompressor, so an empty file is not mistaken for a
// truncated stream.
func Decompress(r io.Reader, size int64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}

	lz, err := lzma.NewReader(bufio.NewReader(r))
	if err != nil {
		return nil, errors.Wrap(err, "create lzma reader")
	}

	buf, err := io.ReadAll(lz)
	if err != nil {
		return nil, errors.Wrap(err, "lzma decompress")
	}

	if len(buf)%TickBytes != 0 {
		return nil, FormatError{Length: len(buf), RecordSize: TickBytes}
	}
	return buf, nil
}

// DecompressFile decompresses one bi5 file into memory.
func DecompressFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open ["+path+"]")
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat ["+path+"]")
	}

	buf, err := Decompress(f, fi.Size())
	if err != nil {
		return nil, errors.Wrap(err, "decode ["+path+"]")
	}
	return buf, nil
}
