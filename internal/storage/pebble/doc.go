// Package pebblestore wraps Pebble with an fsync policy, batches, prefix
// scans and a metrics hook.
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeInterval,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	_ = db.Set([]byte("users/u/1"), []byte(`{...}`))
//	_ = db.ScanPrefix([]byte("users/u/"), func(k, v []byte) bool { return true })
package pebblestore
