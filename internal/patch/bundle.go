package patch

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/born-ml/volpatch/internal/tensor"
)

// Kind is the container shape of a Bundle.
type Kind int

// Bundle kinds.
const (
	Single Kind = iota // one array
	List               // ordered items
	Keyed              // items by name
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case List:
		return "list"
	case Keyed:
		return "keyed"
	default:
		return "unknown"
	}
}

// Item is one member of a Bundle: either an array, which is cropped along
// with the rest of the bundle, or an opaque value passed through unchanged
// (a sample id, a spacing vector, a file name).
type Item struct {
	array *tensor.RawTensor
	value any
}

// ArrayItem wraps an array member.
func ArrayItem(x *tensor.RawTensor) Item {
	return Item{array: x}
}

// TensorItem wraps a typed tensor as an array member.
func TensorItem[T tensor.DType, B tensor.Backend](x *tensor.Tensor[T, B]) Item {
	return Item{array: x.Raw()}
}

// ValueItem wraps a passthrough member.
func ValueItem(v any) Item {
	return Item{value: v}
}

// IsArray reports whether the item is cropped.
func (it Item) IsArray() bool {
	return it.array != nil
}

// Array returns the array member, or nil for passthrough items.
func (it Item) Array() *tensor.RawTensor {
	return it.array
}

// Value returns the passthrough value, or nil for array items.
func (it Item) Value() any {
	return it.value
}

// Bundle is the data a PatchPicker crops from: a single array, an ordered
// list of items, or items keyed by name. Cropping produces a new Bundle of
// the same kind; the source is never modified.
type Bundle struct {
	kind  Kind
	items []Item
	keys  []string // Keyed only, sorted, parallel to items
}

// NewSingle creates a Bundle holding one array.
func NewSingle(x *tensor.RawTensor) Bundle {
	return Bundle{kind: Single, items: []Item{ArrayItem(x)}}
}

// NewList creates an ordered Bundle.
func NewList(items ...Item) Bundle {
	return Bundle{kind: List, items: append([]Item(nil), items...)}
}

// NewKeyed creates a keyed Bundle. Keys are kept in sorted order.
func NewKeyed(entries map[string]Item) Bundle {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	items := make([]Item, len(keys))
	for i, k := range keys {
		items[i] = entries[k]
	}
	return Bundle{kind: Keyed, items: items, keys: keys}
}

// Kind returns the container kind.
func (b Bundle) Kind() Kind {
	return b.kind
}

// Len returns the number of members.
func (b Bundle) Len() int {
	return len(b.items)
}

// IsZero reports whether b is the zero Bundle.
func (b Bundle) IsZero() bool {
	return len(b.items) == 0 && b.kind == Single
}

// Item returns the i-th member. Keyed members are ordered by key.
func (b Bundle) Item(i int) Item {
	return b.items[i]
}

// Get returns the member stored under key in a keyed Bundle.
func (b Bundle) Get(key string) (Item, bool) {
	if b.kind != Keyed {
		return Item{}, false
	}
	i, found := slices.BinarySearch(b.keys, key)
	if !found {
		return Item{}, false
	}
	return b.items[i], true
}

// Keys returns the sorted keys of a keyed Bundle, nil otherwise.
func (b Bundle) Keys() []string {
	return slices.Clone(b.keys)
}

// Array returns the array of a single-array Bundle.
// Panics for other kinds.
func (b Bundle) Array() *tensor.RawTensor {
	if b.kind != Single || len(b.items) != 1 {
		panic(fmt.Sprintf("bundle: Array called on %s bundle", b.kind))
	}
	return b.items[0].array
}

// Arrays returns every array member in order.
func (b Bundle) Arrays() []*tensor.RawTensor {
	var out []*tensor.RawTensor
	for _, it := range b.items {
		if it.IsArray() {
			out = append(out, it.array)
		}
	}
	return out
}

// Crop returns a Bundle of the same kind with every array member replaced
// by its patch centered at center. Passthrough members are copied as is.
//
// Panics with an error wrapping ErrOutOfBounds if any array is too small.
func (b Bundle) Crop(backend tensor.Backend, center Coordinate, shape tensor.Shape) Bundle {
	items := make([]Item, len(b.items))
	for i, it := range b.items {
		if it.IsArray() {
			items[i] = ArrayItem(CentralCrop(backend, it.array, center, shape))
		} else {
			items[i] = it
		}
	}
	return Bundle{kind: b.kind, items: items, keys: b.keys}
}
