package tabular

import (
	"bufio"
	"io"
	"strings"
)

var tsvEscaper = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// WriteTSV writes p as tab-separated values: the header line followed by
// one line per row. Tabs and line breaks inside cells become spaces.
func WriteTSV(w io.Writer, p Projection) error {
	bw := bufio.NewWriter(w)
	writeLine(bw, p.ColumnHeader)
	for _, row := range p.Rows {
		writeLine(bw, row)
	}
	return bw.Flush()
}

func writeLine(w *bufio.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			w.WriteByte('\t')
		}
		w.WriteString(tsvEscaper.Replace(c))
	}
	w.WriteByte('\n')
}
