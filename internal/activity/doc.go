// Package activity is the per-profile append-only feed of things that
// happened: settings changes, memories added, stages reached.
//
// Layout (byte-wise, lexicographically sortable):
//   - ns/{profile}/activity/m            last sequence, 8 bytes big-endian
//   - ns/{profile}/activity/e/{seq_be8}  record
//
// Records are varint headerLen | header | payload | crc32c(header|payload);
// the header carries the entry kind and the payload the JSON Entry. Records
// that fail the checksum are skipped on read.
package activity
