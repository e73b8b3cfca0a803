// Package id generates the record IDs used for users, profiles, memories
// and photos.
//
// An ID is 16 bytes: a big-endian unix millisecond timestamp followed by a
// big-endian sequence number. Byte order is creation order, so the hex form
// used in pebble keys makes prefix scans return records oldest first.
package id
