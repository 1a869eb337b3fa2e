package hfabric

import "io"

// Close releases resources held by this handle. Queries on a closed handle
// fail with ErrClosed. Close is idempotent.
//
// Materialized structures hold no file mappings, so records returned
// earlier stay valid after Close.
func (hf *HF) Close() error {
	if hf == nil || !hf.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c, ok := hf.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
