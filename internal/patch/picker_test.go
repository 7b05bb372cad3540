package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/volpatch/internal/backend/cpu"
	"github.com/born-ml/volpatch/internal/tensor"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "single", Single.String())
	assert.Equal(t, "list", List.String())
	assert.Equal(t, "keyed", Keyed.String())
	assert.Equal(t, "unknown", Kind(9).String())
}

func TestBundleAccessors(t *testing.T) {
	backend := cpu.New()
	image := tensor.Iota[float32](tensor.Shape{1, 6, 6}, backend)
	label := tensor.Zeros[uint8](tensor.Shape{6, 6}, backend)

	keyed := NewKeyed(map[string]Item{
		"label": TensorItem(label),
		"image": TensorItem(image),
		"id":    ValueItem("case-017"),
	})
	assert.Equal(t, Keyed, keyed.Kind())
	assert.Equal(t, 3, keyed.Len())
	assert.Equal(t, []string{"id", "image", "label"}, keyed.Keys())
	assert.Len(t, keyed.Arrays(), 2)

	id, ok := keyed.Get("id")
	require.True(t, ok)
	assert.False(t, id.IsArray())
	assert.Equal(t, "case-017", id.Value())

	img, ok := keyed.Get("image")
	require.True(t, ok)
	assert.Same(t, image.Raw(), img.Array())

	_, ok = keyed.Get("spacing")
	assert.False(t, ok)

	list := NewList(TensorItem(image), ValueItem(3))
	assert.Equal(t, List, list.Kind())
	assert.Nil(t, list.Keys())
	_, ok = list.Get("image")
	assert.False(t, ok)
	assert.Panics(t, func() { list.Array() })

	single := NewSingle(image.Raw())
	assert.Same(t, image.Raw(), single.Array())
	assert.False(t, single.IsZero())
	assert.True(t, Bundle{}.IsZero())
}

func TestBundleCropKeepsKind(t *testing.T) {
	backend := cpu.New()
	image := tensor.Iota[float32](tensor.Shape{2, 8, 8}, backend)
	label := tensor.Iota[int64](tensor.Shape{8, 8}, backend)
	center := Coordinate{3, 4}
	shape := tensor.Shape{4, 3}

	t.Run("single", func(t *testing.T) {
		out := NewSingle(image.Raw()).Crop(backend, center, shape)
		assert.Equal(t, Single, out.Kind())
		assert.Equal(t, tensor.Shape{2, 4, 3}, out.Array().Shape())
	})

	t.Run("list", func(t *testing.T) {
		spacing := []float64{1.5, 1.5}
		out := NewList(TensorItem(image), ValueItem(spacing), TensorItem(label)).Crop(backend, center, shape)
		require.Equal(t, List, out.Kind())
		require.Equal(t, 3, out.Len())
		assert.Equal(t, tensor.Shape{2, 4, 3}, out.Item(0).Array().Shape())
		assert.Equal(t, spacing, out.Item(1).Value())
		assert.Equal(t, tensor.Shape{4, 3}, out.Item(2).Array().Shape())
	})

	t.Run("keyed", func(t *testing.T) {
		in := NewKeyed(map[string]Item{"image": TensorItem(image), "label": TensorItem(label), "id": ValueItem(7)})
		out := in.Crop(backend, center, shape)
		require.Equal(t, Keyed, out.Kind())
		assert.Equal(t, in.Keys(), out.Keys())

		lbl, ok := out.Get("label")
		require.True(t, ok)
		// Origin is (2, 3): first row of the crop is label[2, 3:6].
		assert.Equal(t, []int64{19, 20, 21}, lbl.Array().AsInt64()[:3])

		id, _ := out.Get("id")
		assert.Equal(t, 7, id.Value())
	})

	t.Run("source untouched", func(t *testing.T) {
		out := NewSingle(label.Raw()).Crop(backend, center, shape)
		out.Array().AsInt64()[0] = -1
		assert.Equal(t, int64(19), label.At(2, 3))
	})
}

func TestPatchPickerGrid(t *testing.T) {
	backend := cpu.New()
	data := tensor.Iota[float32](tensor.Shape{10}, backend)
	coords, err := NewGridCoordinates(tensor.Shape{10}, tensor.Shape{4}, tensor.Shape{4})
	require.NoError(t, err)

	p := NewPatchPicker(NewSingle(data.Raw()), tensor.Shape{4}, coords, backend)
	require.Equal(t, 3, p.Len())

	var firsts []float32
	for {
		b, ok := p.Next()
		if !ok {
			break
		}
		firsts = append(firsts, b.Array().AsFloat32()[0])
	}
	assert.Equal(t, []float32{0, 4, 6}, firsts)

	// Exhaustion is sticky and changes nothing.
	assert.Equal(t, 0, p.Remaining())
	_, ok := p.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, p.Remaining())

	p.Reset()
	assert.Equal(t, 3, p.Remaining())
	b, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, float32(0), b.Array().AsFloat32()[0])
}

func TestPatchPickerResetRedrawsBalanced(t *testing.T) {
	backend := cpu.New()
	image := tensor.Iota[float32](tensor.Shape{1, 16, 16}, backend)
	weights := tensor.Full[float32](tensor.Shape{16, 16}, 1, backend)

	coords, err := NewBalancedCoordinates(4, weights.Raw(), tensor.Shape{4, 4}, WithSeed(8))
	require.NoError(t, err)

	data := NewKeyed(map[string]Item{"image": TensorItem(image), "name": ValueItem("a")})
	p := NewPatchPicker(data, tensor.Shape{4, 4}, coords, backend)

	drain := func() [][]float32 {
		var out [][]float32
		for b, ok := p.Next(); ok; b, ok = p.Next() {
			img, _ := b.Get("image")
			require.Equal(t, tensor.Shape{1, 4, 4}, img.Array().Shape())
			out = append(out, append([]float32(nil), img.Array().AsFloat32()...))
		}
		return out
	}

	first := drain()
	require.Len(t, first, 4)
	p.Reset()
	second := drain()
	require.Len(t, second, 4)
	assert.NotEqual(t, first, second)
	assert.Same(t, image.Raw(), func() *tensor.RawTensor { it, _ := p.Data().Get("image"); return it.Array() }())
}
