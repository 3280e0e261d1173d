package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"ingest-service/internal/grid"
)

// readCSV auto-detects encoding and delimiter. Valid UTF-8 is taken as is
// (BOM stripped); otherwise the detector picks among the Latin-1 family
// and anything it is unsure about is read as Windows-1252.
func readCSV(r io.Reader) ([][]grid.Cell, error) {
	br := bufio.NewReaderSize(r, peekSize)
	peek, _ := br.Peek(peekSize)

	dec := decoderFor(peek, len(peek) == peekSize)
	cr := csv.NewReader(transform.NewReader(br, dec.NewDecoder()))
	cr.Comma = sniffDelimiter(peek)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return textRows(rows), nil
}

const peekSize = 4096

func decoderFor(peek []byte, truncated bool) encoding.Encoding {
	if validUTF8Prefix(peek, truncated) {
		return unicode.UTF8BOM
	}
	if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
		switch strings.ToLower(det.Charset) {
		case "iso-8859-1":
			return charmap.ISO8859_1
		case "iso-8859-15":
			return charmap.ISO8859_15
		}
	}
	return charmap.Windows1252
}

// validUTF8Prefix tolerates a rune cut at the end of a truncated peek window.
func validUTF8Prefix(p []byte, truncated bool) bool {
	if !truncated {
		return utf8.Valid(p)
	}
	for i := 0; i < utf8.UTFMax && i <= len(p); i++ {
		if utf8.Valid(p[:len(p)-i]) {
			return true
		}
	}
	return false
}

// sniffDelimiter counts candidates over the first lines: spreadsheet
// exports in pt-BR use ';' because ',' is the decimal separator.
// Title rows carry no delimiter at all, so one line is not enough.
func sniffDelimiter(peek []byte) rune {
	lines := bytes.SplitN(peek, []byte{'\n'}, 11)
	if len(lines) > 10 {
		lines = lines[:10]
	}
	head := bytes.Join(lines, nil)
	best, n := ',', bytes.Count(head, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if c := bytes.Count(head, []byte(string(d))); c > n {
			best, n = d, c
		}
	}
	return best
}
