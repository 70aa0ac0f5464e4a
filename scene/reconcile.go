package scene

import (
	"sort"
	"strings"
)

// ReconcileExtensions merges the document's extensions object with every
// other top-level object whose key contains "extension" or "VRM".
//
// The alternate objects are merged entry by entry in sorted key order and
// overwrite entries already present, so the last source wins on collision.
// Decoders are known to surface extensions under keys other than "extensions".
func ReconcileExtensions(doc *Document) map[string]interface{} {
	merged := map[string]interface{}{}
	for k, v := range doc.Extensions() {
		merged[k] = v
	}

	var keys []string
	for k, v := range doc.Fields {
		if k == "extensions" {
			continue
		}
		if !strings.Contains(k, "extension") && !strings.Contains(k, "VRM") {
			continue
		}
		if _, ok := v.(map[string]interface{}); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		for name, ext := range doc.Fields[k].(map[string]interface{}) {
			merged[name] = ext
		}
	}
	return merged
}
