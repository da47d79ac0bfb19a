package match

import "testing"

func TestNone(t *testing.T) {
	r := None()
	if r.Found() || r.Passes() {
		t.Errorf("empty result should neither be found nor pass: %+v", r)
	}
	if r.Distance() != 1.0 {
		t.Errorf("expected distance 1.0, got %v", r.Distance())
	}
}

func TestNew(t *testing.T) {
	r := New("83333.1", "Escherichia coli", 42, 0.25, true)
	if !r.Found() || !r.Passes() {
		t.Fatal("expected a passing match")
	}
	if r.RepID() != "83333.1" || r.RepName() != "Escherichia coli" {
		t.Errorf("unexpected identity %q %q", r.RepID(), r.RepName())
	}
	if r.Similarity() != 42 || r.Distance() != 0.25 {
		t.Errorf("unexpected score %d %v", r.Similarity(), r.Distance())
	}
}
