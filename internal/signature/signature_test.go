package signature

import "testing"

func TestComputeDeterministic(t *testing.T) {
	a := Compute("model-1", []string{"g1", "g2"})
	b := Compute("model-1", []string{"g1", "g2"})

	if a != b {
		t.Errorf("same inputs must yield same signature: %s != %s", a, b)
	}
	if len(a) != Size*2 {
		t.Errorf("expected %d hex chars, got %d", Size*2, len(a))
	}
}

func TestComputeOrderSensitive(t *testing.T) {
	ab := Compute("model-1", []string{"g1", "g2"})
	ba := Compute("model-1", []string{"g2", "g1"})

	if ab == ba {
		t.Error("signature must be order-sensitive")
	}
}

func TestComputeBaseModelSensitive(t *testing.T) {
	a := Compute("model-1", []string{"g1"})
	b := Compute("model-2", []string{"g1"})

	if a == b {
		t.Error("signature must include the base-model identity")
	}
}

func TestComputeNoConcatenationAmbiguity(t *testing.T) {
	// ["ab","c"] and ["a","bc"] concatenate identically; the length
	// prefixes must keep them apart.
	a := Compute("m", []string{"ab", "c"})
	b := Compute("m", []string{"a", "bc"})

	if a == b {
		t.Error("length-prefixed fields must prevent concatenation collisions")
	}
}

func TestComputeEmptyStackDiffersFromLayered(t *testing.T) {
	base := Compute("m", nil)
	layered := Compute("m", []string{"g1"})

	if base == layered {
		t.Error("base-only signature must differ from layered signature")
	}
	if base.IsEmpty() {
		t.Error("a computed signature is never the zero value")
	}
}

func TestShort(t *testing.T) {
	sig := Compute("m", nil)
	if len(sig.Short()) != 8 {
		t.Errorf("expected 8-char short form, got %q", sig.Short())
	}
	if Empty.Short() != "" {
		t.Errorf("short form of empty signature should be empty, got %q", Empty.Short())
	}
}
