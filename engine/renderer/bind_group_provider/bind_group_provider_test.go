package bind_group_provider

import "testing"

type fixedBytes []byte

func (f fixedBytes) Marshal() []byte { return f }

func TestProviderHoldsBindings(t *testing.T) {
	p := NewBindGroupProvider("image[0]", WithSharedBuffer(0, nil), WithTextureView(2, nil))
	if p.Label() != "image[0]" {
		t.Errorf("Label = %q", p.Label())
	}
	if p.BindGroup() != nil || p.Buffer(0) != nil || p.TextureView(2) != nil {
		t.Error("unset resources must be nil")
	}
	p.Release()
	p.Release()
}

func TestNewBufferWrite(t *testing.T) {
	p := NewBindGroupProvider("state")
	w := NewBufferWrite(p, 1, fixedBytes{1, 2, 3})
	if w.Provider != p || w.Binding != 1 || w.Offset != 0 || len(w.Data) != 3 {
		t.Errorf("write = %+v", w)
	}
}
