package cqlclient

import (
	"fmt"
	"io"
	"strings"

	"github.com/hkhamm/cqlclient/types"
)

const (
	reportFormat    = "%-30s\t%-20s\t%-20s\n"
	reportSeparator = "-------------------------------+-----------------------+--------------------\n"
)

// reportColumns are the text columns the song report prints.
var reportColumns = []string{"title", "album", "artist"}

// Reporter prints song listings and logs query faults.
type Reporter struct {
	out    io.Writer
	logger types.Logger
}

// NewReporter creates a reporter writing listings to out and faults to logger.
func NewReporter(out io.Writer, logger types.Logger) *Reporter {
	return &Reporter{out: out, logger: logger}
}

// ReportResults prints a title/album/artist listing of rs.
//
// The result set must carry text columns title, album and artist. If any is
// missing or holds a non-text value, nothing is printed and a
// *types.SchemaMismatchError naming the offending columns is returned.
//
// Parameters:
//   - rs: The rows to print
//
// Returns:
//   - error: *types.SchemaMismatchError, or a write error from the output
func (r *Reporter) ReportResults(rs *types.ResultSet) error {
	if missing := mismatchedColumns(rs); len(missing) > 0 {
		return &types.SchemaMismatchError{Missing: missing}
	}

	var b strings.Builder
	fmt.Fprintf(&b, reportFormat, "title", "album", "artist")
	b.WriteString(reportSeparator)
	for _, row := range rs.Rows {
		fmt.Fprintf(&b, reportFormat, text(row["title"]), text(row["album"]), text(row["artist"]))
	}

	_, err := io.WriteString(r.out, b.String())

	return err
}

// ReportErrors writes a query fault to the error log.
func (r *Reporter) ReportErrors(err error) {
	if err == nil {
		return
	}
	r.logger.Error("query failed", "error", err)
}

func mismatchedColumns(rs *types.ResultSet) []string {
	var missing []string
	for _, col := range reportColumns {
		if !rs.HasColumn(col) {
			missing = append(missing, col)
			continue
		}
		for _, row := range rs.Rows {
			if v := row[col]; v != nil {
				if _, ok := v.(string); !ok {
					missing = append(missing, col)
					break
				}
			}
		}
	}

	return missing
}

// text returns v as a string; a null text cell prints empty.
func text(v any) string {
	s, _ := v.(string)

	return s
}
