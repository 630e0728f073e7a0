package tuiengine

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/zeebo/blake3"
)

// Frame file layout: a 16-byte header {magic, version, frame_count,
// reserved}, then one record per frame {width u16, height u16, checksum
// u64, width*height cell records}. Everything is little-endian.
const (
	frameFileMagic   uint32 = 0x4d524654 // "TFRM"
	frameFileVersion uint32 = 1
)

// Cell record content tags.
const (
	cellTagBlank        byte = 0
	cellTagChar         byte = 1
	cellTagPool         byte = 2
	cellTagContinuation byte = 3
)

const cellRecordSize = 1 + 4 + 4 + 4 + 4 + 2 + 4 // tag, content, fg, bg, ul, flags, link

// bufferChecksum returns a stable 64-bit hash of the buffer's cell
// sequence, suitable for chain verification across replays. It is the first
// eight bytes of the BLAKE3 digest of the serialized cells.
func bufferChecksum(buf *Buffer) uint64 {
	return checksumCells(encodeBufferCells(buf))
}

func checksumCells(data []byte) uint64 {
	sum := blake3.Sum256(data)
	return binary.LittleEndian.Uint64(sum[:8])
}

// encodeBufferCells serializes every cell in row-major order. Hyperlinks are
// numbered by first appearance so the encoding is deterministic.
func encodeBufferCells(buf *Buffer) []byte {
	out := make([]byte, 0, buf.Rows()*buf.Cols()*cellRecordSize)
	links := make(map[string]uint32)

	for row := 0; row < buf.Rows(); row++ {
		for col := 0; col < buf.Cols(); col++ {
			out = appendCellRecord(out, buf.Cell(row, col), links)
		}
	}
	return out
}

func appendCellRecord(out []byte, cell *Cell, links map[string]uint32) []byte {
	var tag byte
	var content uint32
	switch {
	case cell.IsWideSpacer():
		tag = cellTagContinuation
	case cell.Grapheme != 0:
		tag = cellTagPool
		content = uint32(cell.Grapheme)
	case cell.IsBlank():
		tag = cellTagBlank
	default:
		tag = cellTagChar
		content = uint32(cell.Char)
	}

	var link uint32
	if cell.Hyperlink != nil {
		key := cell.Hyperlink.ID + "\x00" + cell.Hyperlink.URI
		id, ok := links[key]
		if !ok {
			id = uint32(len(links) + 1)
			links[key] = id
		}
		link = id
	}

	out = append(out, tag)
	out = binary.LittleEndian.AppendUint32(out, content)
	out = binary.LittleEndian.AppendUint32(out, uint32(cell.Fg))
	out = binary.LittleEndian.AppendUint32(out, uint32(cell.Bg))
	out = binary.LittleEndian.AppendUint32(out, uint32(cell.UnderlineColor))
	out = binary.LittleEndian.AppendUint16(out, uint16(cell.Flags))
	out = binary.LittleEndian.AppendUint32(out, link)
	return out
}

// WriteFrameFile serializes captured frames to the persisted replay layout.
func WriteFrameFile(w io.Writer, frames []CapturedFrame) error {
	header := make([]byte, 0, 16)
	header = binary.LittleEndian.AppendUint32(header, frameFileMagic)
	header = binary.LittleEndian.AppendUint32(header, frameFileVersion)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(frames)))
	header = binary.LittleEndian.AppendUint32(header, 0) // reserved
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("framefile: %w", err)
	}

	for i, frame := range frames {
		buf := frame.Buffer
		cells := encodeBufferCells(buf)

		record := make([]byte, 0, 12)
		record = binary.LittleEndian.AppendUint16(record, uint16(buf.Cols()))
		record = binary.LittleEndian.AppendUint16(record, uint16(buf.Rows()))
		record = binary.LittleEndian.AppendUint64(record, checksumCells(cells))
		if _, err := w.Write(record); err != nil {
			return fmt.Errorf("framefile: frame %d: %w", i, err)
		}
		if _, err := w.Write(cells); err != nil {
			return fmt.Errorf("framefile: frame %d: %w", i, err)
		}
	}
	return nil
}

// FrameFileHeader is the decoded fixed-size header.
type FrameFileHeader struct {
	Magic      uint32
	Version    uint32
	FrameCount uint32
}

// ReadFrameFileHeader decodes and validates the header.
func ReadFrameFileHeader(r io.Reader) (FrameFileHeader, error) {
	raw := make([]byte, 16)
	if _, err := io.ReadFull(r, raw); err != nil {
		return FrameFileHeader{}, fmt.Errorf("framefile: header: %w", err)
	}

	header := FrameFileHeader{
		Magic:      binary.LittleEndian.Uint32(raw[0:4]),
		Version:    binary.LittleEndian.Uint32(raw[4:8]),
		FrameCount: binary.LittleEndian.Uint32(raw[8:12]),
	}
	if header.Magic != frameFileMagic {
		return header, fmt.Errorf("framefile: bad magic %#x", header.Magic)
	}
	if header.Version != frameFileVersion {
		return header, fmt.Errorf("framefile: unsupported version %d", header.Version)
	}
	return header, nil
}

// ReadFrameFile decodes captured frames, verifying each frame's checksum
// against its serialized cells.
func ReadFrameFile(r io.Reader) ([]CapturedFrame, error) {
	header, err := ReadFrameFileHeader(r)
	if err != nil {
		return nil, err
	}

	frames := make([]CapturedFrame, 0, header.FrameCount)
	for i := uint32(0); i < header.FrameCount; i++ {
		record := make([]byte, 12)
		if _, err := io.ReadFull(r, record); err != nil {
			return nil, fmt.Errorf("framefile: frame %d: %w", i, err)
		}
		cols := int(binary.LittleEndian.Uint16(record[0:2]))
		rows := int(binary.LittleEndian.Uint16(record[2:4]))
		checksum := binary.LittleEndian.Uint64(record[4:12])
		if cols <= 0 || rows <= 0 {
			return nil, fmt.Errorf("framefile: frame %d: invalid dimensions %dx%d", i, cols, rows)
		}

		cells := make([]byte, rows*cols*cellRecordSize)
		if _, err := io.ReadFull(r, cells); err != nil {
			return nil, fmt.Errorf("framefile: frame %d: %w", i, err)
		}
		if got := checksumCells(cells); got != checksum {
			return nil, fmt.Errorf("framefile: frame %d: checksum mismatch (want %#x, got %#x)", i, checksum, got)
		}

		buf := NewBuffer(rows, cols)
		decodeBufferCells(buf, cells)
		frames = append(frames, CapturedFrame{Buffer: buf, Checksum: checksum})
	}
	return frames, nil
}

func decodeBufferCells(buf *Buffer, data []byte) {
	offset := 0
	for row := 0; row < buf.Rows(); row++ {
		for col := 0; col < buf.Cols(); col++ {
			rec := data[offset : offset+cellRecordSize]
			offset += cellRecordSize

			cell := NewCell()
			tag := rec[0]
			content := binary.LittleEndian.Uint32(rec[1:5])
			cell.Fg = Color(binary.LittleEndian.Uint32(rec[5:9]))
			cell.Bg = Color(binary.LittleEndian.Uint32(rec[9:13]))
			cell.UnderlineColor = Color(binary.LittleEndian.Uint32(rec[13:17]))
			cell.Flags = CellFlags(binary.LittleEndian.Uint16(rec[17:19]))

			switch tag {
			case cellTagChar:
				cell.Char = rune(content)
			case cellTagPool:
				cell.Char = 0
				cell.Grapheme = GraphemeID(content)
			case cellTagContinuation:
				cell.Char = 0
			}

			if link := binary.LittleEndian.Uint32(rec[19:23]); link != 0 {
				cell.Hyperlink = &Hyperlink{ID: strconv.FormatUint(uint64(link), 10)}
			}

			*buf.Cell(row, col) = cell
		}
	}
}

// SaveFrames writes the player's frames to a file.
func (p *FramePlayer) SaveFrames(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("framefile: %w", err)
	}
	defer f.Close()

	if err := WriteFrameFile(f, p.frames); err != nil {
		return err
	}
	return f.Close()
}

// LoadFrames replaces the player's frames with the contents of a file and
// rewinds to frame zero.
func (p *FramePlayer) LoadFrames(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("framefile: %w", err)
	}
	defer f.Close()

	frames, err := ReadFrameFile(f)
	if err != nil {
		return err
	}
	p.frames = frames
	p.current = 0
	p.state = PlaybackPaused
	return nil
}
