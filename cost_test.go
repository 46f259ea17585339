package decodex

import "testing"

func TestPathCostRepetitionDiscount(t *testing.T) {
	distinct := NewChain()
	distinct, _ = distinct.Append(TransformationStep{TransformationName: "base64", InputText: "a", OutputText: "b", IsEncoder: true})
	distinct, _ = distinct.Append(TransformationStep{TransformationName: "url-encoding", InputText: "b", OutputText: "c", IsEncoder: true})

	repeated := NewChain()
	repeated, _ = repeated.Append(TransformationStep{TransformationName: "base64", InputText: "a", OutputText: "b", IsEncoder: true})
	repeated, _ = repeated.Append(TransformationStep{TransformationName: "base64", InputText: "b", OutputText: "c", IsEncoder: true})

	if got, notWant := PathCost(repeated, 0), PathCost(distinct, 0); got >= notWant {
		t.Errorf("expected repeating the same encoder to cost less than two distinct encoders, got repeated=%.3f distinct=%.3f", got, notWant)
	}
}

func TestPathCostCipherEscalation(t *testing.T) {
	oneCipher := NewChain()
	oneCipher, _ = oneCipher.Append(TransformationStep{TransformationName: "caesar", InputText: "a", OutputText: "b", IsEncoder: false})

	twoCiphers := NewChain()
	twoCiphers, _ = twoCiphers.Append(TransformationStep{TransformationName: "caesar", InputText: "a", OutputText: "b", IsEncoder: false})
	twoCiphers, _ = twoCiphers.Append(TransformationStep{TransformationName: "vigenere", InputText: "b", OutputText: "c", IsEncoder: false})

	firstCipherCost := PathCost(oneCipher, 0)
	secondStepMarginalCost := PathCost(twoCiphers, 0) - firstCipherCost

	if secondStepMarginalCost <= firstCipherCost {
		t.Errorf("expected the second cipher step to cost more than the first (escalation), first=%.3f secondMarginal=%.3f", firstCipherCost, secondStepMarginalCost)
	}
}

func TestPathCostDepthPenaltyMonotonic(t *testing.T) {
	chain := NewChain()
	chain, _ = chain.Append(TransformationStep{TransformationName: "base64", InputText: "a", OutputText: "b", IsEncoder: true})

	if got, notWant := PathCost(chain, 1.0), PathCost(chain, 0.0); got <= notWant {
		t.Errorf("expected a larger depth penalty to increase PathCost, got penalty=1.0 -> %.3f, penalty=0.0 -> %.3f", got, notWant)
	}
}

func TestNextPathCostMatchesAppendedChain(t *testing.T) {
	chain := NewChain()
	chain, _ = chain.Append(TransformationStep{TransformationName: "base64", InputText: "a", OutputText: "b", IsEncoder: true})

	next := NewDescriptor("hex", 0.9, "", "", TagIsEncoder)
	estimated := NextPathCost(chain, next, 0.5)

	appended, err := chain.Append(TransformationStep{TransformationName: "hex", InputText: "b", OutputText: "c", IsEncoder: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	actual := PathCost(appended, 0.5)

	if estimated != actual {
		t.Errorf("NextPathCost estimate %.6f does not match actual PathCost %.6f after appending", estimated, actual)
	}
}
