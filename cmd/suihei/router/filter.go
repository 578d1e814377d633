package router

import (
	"github.com/tjper/suihei/cmd/suihei/model"
)

// KeyedFilter creates a Filter matching records whose key equals want. Keys
// are computed per record kind by key; records for which key reports false
// never match. A nil want matches every record.
func KeyedFilter(key func(model.Record) (string, bool), want *string) Filter {
	if want == nil {
		return func(model.Record) bool { return true }
	}
	return func(record model.Record) bool {
		k, ok := key(record)
		return ok && k == *want
	}
}

// Never is a Filter matching no record.
func Never(model.Record) bool { return false }
