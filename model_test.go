package decodex

import "testing"

func TestChainAppendEnforcesAdjacency(t *testing.T) {
	chain := NewChain()
	chain, err := chain.Append(TransformationStep{TransformationName: "base64", InputText: "aGVsbG8=", OutputText: "hello"})
	if err != nil {
		t.Fatalf("unexpected error appending root step: %v", err)
	}
	if chain.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", chain.Depth())
	}

	if _, err := chain.Append(TransformationStep{TransformationName: "rot13", InputText: "wrong-input", OutputText: "uryyb"}); err == nil {
		t.Fatal("expected an adjacency violation error, got nil")
	}

	chain2, err := chain.Append(TransformationStep{TransformationName: "rot13", InputText: "hello", OutputText: "uryyb"})
	if err != nil {
		t.Fatalf("unexpected error appending adjacent step: %v", err)
	}
	if chain2.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", chain2.Depth())
	}
	// The original chain must be untouched by Append (immutability).
	if chain.Depth() != 1 {
		t.Fatalf("expected original chain to remain depth 1, got %d", chain.Depth())
	}
}

func TestChainValidate(t *testing.T) {
	chain := NewChain()
	chain, _ = chain.Append(TransformationStep{TransformationName: "base64", InputText: "aGVsbG8=", OutputText: "hello"})
	chain, _ = chain.Append(TransformationStep{TransformationName: "rot13", InputText: "hello", OutputText: "uryyb"})

	if err := chain.Validate("aGVsbG8=", "uryyb"); err != nil {
		t.Fatalf("expected chain to validate, got %v", err)
	}
	if err := chain.Validate("aGVsbG8=", "wrong-plaintext"); err == nil {
		t.Fatal("expected validation to fail on wrong reported plaintext")
	}
	if err := chain.Validate("wrong-input", "uryyb"); err == nil {
		t.Fatal("expected validation to fail on wrong original input")
	}
}

func TestChainValidateEmpty(t *testing.T) {
	chain := NewChain()
	if err := chain.Validate("same", "same"); err != nil {
		t.Fatalf("expected empty chain with matching input/output to validate, got %v", err)
	}
	if err := chain.Validate("same", "different"); err == nil {
		t.Fatal("expected empty chain with mismatched input/output to fail validation")
	}
}

func TestChainCipherCount(t *testing.T) {
	chain := NewChain()
	chain, _ = chain.Append(TransformationStep{TransformationName: "base64", InputText: "in", OutputText: "mid", IsEncoder: true})
	chain, _ = chain.Append(TransformationStep{TransformationName: "caesar", InputText: "mid", OutputText: "out", IsEncoder: false})
	if got := chain.CipherCount(); got != 1 {
		t.Errorf("expected 1 cipher step, got %d", got)
	}
}

func TestChainString(t *testing.T) {
	chain := NewChain()
	chain, _ = chain.Append(TransformationStep{TransformationName: "base64", InputText: "in", OutputText: "mid"})
	chain, _ = chain.Append(TransformationStep{TransformationName: "caesar", InputText: "mid", OutputText: "out", Key: "3"})
	if got, want := chain.String(), "base64 -> caesar(3)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDescriptorTags(t *testing.T) {
	d := NewDescriptor("base64", 0.95, "desc", "link", TagIsEncoder)
	if !d.IsEncoder() {
		t.Error("expected IsEncoder to be true")
	}
	if d.IsReciprocal() {
		t.Error("expected IsReciprocal to be false")
	}

	r := NewDescriptor("rot13", 0.5, "desc", "link", TagReciprocal)
	if r.IsEncoder() {
		t.Error("expected IsEncoder to be false")
	}
	if !r.IsReciprocal() {
		t.Error("expected IsReciprocal to be true")
	}
}
