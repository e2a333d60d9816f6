package luavalue

import "math"

// Table is a Lua table: a hybrid array/hash associative container.
//
// Integer keys in the range [1, Len()] live in a dense array part;
// every other key lives in a hash part. This split exists purely to
// give Len() ("#t") a cheap, well-defined answer for the common
// sequence case — get/set hide the distinction completely (spec.md
// §3, §4.D, §9 "Table hybrid storage").
//
// No example repo in the retrieved pack implements this hybrid
// strategy (256lights-zb/internal/mylua/table.go instead keeps a
// single sorted slice of entries); this type is built directly from
// spec.md's description, reusing only the teacher pack's naming
// conventions (get/set/len) and its float-key-normalization snippet.
type Table struct {
	arr  []Value
	hash map[Value]Value
}

// NewTable creates an empty table, reserving capacity for nArr array
// slots and nRec hash entries. The hints only affect preallocation;
// they never change semantics.
func NewTable(nArr, nRec int) *Table {
	t := &Table{}
	if nArr > 0 {
		t.arr = make([]Value, 0, nArr)
	}
	if nRec > 0 {
		t.hash = make(map[Value]Value, nRec)
	}
	return t
}

// normalizeKey converts a float key that exactly represents an integer
// into that integer, so that t[1.0] and t[1] address the same slot.
// Other values pass through unchanged.
func normalizeKey(k Value) Value {
	f, ok := k.(float64)
	if !ok {
		return k
	}
	if i, ok := floatToInteger(f); ok {
		return i
	}
	return k
}

// Get returns the value stored at key k, or nil if k has no entry.
func (t *Table) Get(k Value) Value {
	if t == nil {
		return nil
	}
	k = normalizeKey(k)
	if i, ok := k.(int64); ok && i >= 1 && i <= int64(len(t.arr)) {
		return t.arr[i-1]
	}
	if t.hash == nil {
		return nil
	}
	return t.hash[k]
}

// Set stores v at key k, following the array/hash migration rules in
// spec.md §3: writing a non-nil value at key |arr|+1 appends to the
// array and then migrates any contiguous successors out of the hash
// part; writing nil to the last array slot shrinks the array past the
// new trailing nils. Set returns [ErrTableIndexIsNil] for a nil key
// and [ErrTableIndexIsNaN] for a NaN float key.
func (t *Table) Set(k, v Value) error {
	if k == nil {
		return ErrTableIndexIsNil
	}
	if f, ok := k.(float64); ok && math.IsNaN(f) {
		return ErrTableIndexIsNaN
	}
	k = normalizeKey(k)

	i, isInt := k.(int64)
	switch {
	case isInt && i >= 1 && i <= int64(len(t.arr)):
		t.arr[i-1] = v
		if v == nil && i == int64(len(t.arr)) {
			t.shrink()
		}
	case isInt && i == int64(len(t.arr))+1 && v != nil:
		t.arr = append(t.arr, v)
		t.migrateFromHash()
	default:
		if v == nil {
			delete(t.hash, k)
			return nil
		}
		if t.hash == nil {
			t.hash = make(map[Value]Value)
		}
		t.hash[k] = v
	}
	return nil
}

// shrink drops trailing nils from the array part.
func (t *Table) shrink() {
	n := len(t.arr)
	for n > 0 && t.arr[n-1] == nil {
		n--
	}
	t.arr = t.arr[:n]
}

// migrateFromHash pulls the contiguous run of integer keys immediately
// following the array part out of the hash and appends them to the
// array, so that a sequence built via out-of-order inserts still ends
// up entirely in the array part once it becomes contiguous.
func (t *Table) migrateFromHash() {
	if t.hash == nil {
		return
	}
	for {
		next := int64(len(t.arr)) + 1
		v, ok := t.hash[next]
		if !ok {
			return
		}
		t.arr = append(t.arr, v)
		delete(t.hash, next)
	}
}

// Len returns |arr|, the table's array-part length. This is the Lua
// length operator's value for this representation: a border by
// construction, since the array part is migrated to stay contiguous
// from key 1.
func (t *Table) Len() int64 {
	if t == nil {
		return 0
	}
	return int64(len(t.arr))
}
