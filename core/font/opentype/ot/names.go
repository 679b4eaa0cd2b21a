package ot

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// NameID identifies a string in a font's naming table.
type NameID uint16

// Name IDs we care about. For a complete list see
// https://docs.microsoft.com/en-us/typography/opentype/spec/name#name-ids
const (
	NameFamily               NameID = 1
	NameSubfamily            NameID = 2
	NameFull                 NameID = 4
	NameTypographicFamily    NameID = 16
	NameTypographicSubfamily NameID = 17
)

// NameTable holds the naming records of a font, i.e. strings like the
// family name or the style name.
type NameTable struct {
	tableBase
	strbuf  binarySegm
	records []nameRecord
}

type nameRecord struct {
	platform, encoding, language uint16
	id                           NameID
	str                          binarySegm
}

func parseNames(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if len(b) < 6 {
		return nil, errFontFormat("name section corrupt")
	}
	N, _ := b.u16(2)
	strOffset, _ := b.u16(4)
	strbuf, err := b.tail(int(strOffset))
	if err != nil || len(b) < 6+12*int(N) {
		return nil, errFontFormat("name section corrupt")
	}
	tracer().Debugf("name table has %d strings, starting at %d", N, strOffset)
	t := &NameTable{tableBase: makeTableBase(tag, b, offset, size), strbuf: strbuf}
	t.self = t
	for i := 0; i < int(N); i++ {
		rec := b[6+12*i : 6+12*(i+1)]
		length, off := int(u16(rec[8:])), int(u16(rec[10:]))
		str, err := strbuf.view(off, length)
		if err != nil {
			continue // skip broken records, and empty ones
		}
		t.records = append(t.records, nameRecord{
			platform: u16(rec),
			encoding: u16(rec[2:]),
			language: u16(rec[4:]),
			id:       NameID(u16(rec[6:])),
			str:      str,
		})
	}
	return t, nil
}

// Name returns the string for a given name ID. If more than one record exists,
// Windows/Unicode English entries are preferred. If no suitable record exists,
// the empty string is returned.
func (t *NameTable) Name(id NameID) string {
	if t == nil {
		return ""
	}
	best, bestRank := -1, 0
	for i, rec := range t.records {
		if rec.id != id {
			continue
		}
		if rank := recordRank(rec); rank > bestRank {
			best, bestRank = i, rank
		}
	}
	if best < 0 {
		return ""
	}
	s, err := decodeName(t.records[best])
	if err != nil {
		tracer().Infof("cannot decode name record %d: %v", id, err)
		return ""
	}
	return s
}

func recordRank(rec nameRecord) int {
	switch {
	case rec.platform == 3 && (rec.encoding == 1 || rec.encoding == 10) && rec.language == 0x409:
		return 4
	case rec.platform == 3 && (rec.encoding == 1 || rec.encoding == 10):
		return 3
	case rec.platform == 0:
		return 2
	case rec.platform == 1 && rec.encoding == 0:
		return 1
	}
	return 0 // unsupported platform/encoding combination
}

func decodeName(rec nameRecord) (string, error) {
	if rec.platform == 1 {
		s, err := charmap.Macintosh.NewDecoder().Bytes(rec.str)
		return string(s), err
	}
	return decodeUtf16(rec.str)
}

func decodeUtf16(str []byte) (string, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	decoder := enc.NewDecoder()
	s, err := decoder.Bytes(str)
	if err != nil {
		return "", fmt.Errorf("decoding UTF-16 error: %v", err)
	}
	return string(s), nil
}
