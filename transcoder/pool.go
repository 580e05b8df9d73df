package transcoder

import (
	"reflect"
	"sync"
)

const (
	// Pool limits to prevent memory bloat
	poolMaxKeys  = 1024 // max map keys kept in a pooled buffer
	poolInitKeys = 16
)

// map key buffer pool for sorted map encoding
var keyBufPool = sync.Pool{
	New: func() any {
		buf := make([]reflect.Value, 0, poolInitKeys)
		return &buf
	},
}

func getKeyBuf() *[]reflect.Value {
	return keyBufPool.Get().(*[]reflect.Value)
}

func putKeyBuf(buf *[]reflect.Value) {
	if buf == nil || cap(*buf) > poolMaxKeys {
		return // reject oversized
	}
	clear(*buf)
	*buf = (*buf)[:0]
	keyBufPool.Put(buf)
}
