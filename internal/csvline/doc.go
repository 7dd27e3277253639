// Package csvline serializes one row of fields to a single delimited line
// and back.
//
// The format matches the record files written by earlier releases: comma
// delimiter, double-quote enclosure, backslash escape. A field is enclosed
// when it contains the delimiter, a quote, a backslash, a space, a tab, or a
// line break. Inside an enclosure a quote is doubled unless the preceding
// character is the escape character, and the decoder keeps escape sequences
// verbatim, so DecodeLine(EncodeRow(r)) == r for every row whose enclosed
// fields do not end in an unpaired backslash.
//
// encoding/csv is not used because it has no escape character and would
// read existing files with \" sequences differently.
//
// Neutralize guards values against spreadsheet formula injection. It is
// applied before encoding and is deliberately not reversed on decode.
package csvline
