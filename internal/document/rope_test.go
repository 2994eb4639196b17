package document

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
)

func ropeLines(r *rope) []string {
	return r.Slice(0, r.Len())
}

func checkRope(t *testing.T, r *rope, want []string) {
	t.Helper()
	if r.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", r.Len(), len(want))
	}
	got := ropeLines(r)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
		if r.Line(i) != want[i] {
			t.Fatalf("Line(%d) = %q, want %q", i, r.Line(i), want[i])
		}
	}
	size := 0
	for _, l := range want {
		size += len(l)
	}
	if r.Size() != size {
		t.Fatalf("Size = %d, want %d", r.Size(), size)
	}
}

func TestRopeRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var model []string
	for i := 0; i < 500; i++ {
		model = append(model, fmt.Sprintf("line %d", i))
	}
	r := newRope(model)
	checkRope(t, r, model)

	for step := 0; step < 2000; step++ {
		switch rng.Intn(3) {
		case 0:
			at := rng.Intn(len(model) + 1)
			n := rng.Intn(100) + 1
			ins := make([]string, n)
			for i := range ins {
				ins[i] = fmt.Sprintf("s%d-%d", step, i)
			}
			r.Insert(at, ins)
			model = append(model[:at], append(ins, model[at:]...)...)
		case 1:
			if len(model) < 2 {
				continue
			}
			from := rng.Intn(len(model))
			to := from + rng.Intn(min(80, len(model)-from)) + 1
			r.Delete(from, to)
			model = append(model[:from], model[to:]...)
		default:
			if len(model) == 0 {
				continue
			}
			i := rng.Intn(len(model))
			text := strings.Repeat("x", rng.Intn(10))
			r.Set(i, text)
			model[i] = text
		}
	}
	checkRope(t, r, model)
}

func TestRopeByteOffsets(t *testing.T) {
	var lines []string
	for i := 0; i < 300; i++ {
		lines = append(lines, strings.Repeat("ab", i%7))
	}
	r := newRope(lines)
	joined := strings.Join(lines, "\n")
	off := 0
	for i, l := range lines {
		if got := r.LineStartByte(i); got != off {
			t.Fatalf("LineStartByte(%d) = %d, want %d", i, got, off)
		}
		for col := 0; col <= len(l); col++ {
			line, c := r.LineAtByte(off + col)
			if line != i || c != col {
				t.Fatalf("LineAtByte(%d) = (%d,%d), want (%d,%d)", off+col, line, c, i, col)
			}
		}
		off += len(l) + 1
	}
	line, col := r.LineAtByte(len(joined) + 10)
	if line != len(lines)-1 || col != len(lines[len(lines)-1]) {
		t.Fatalf("LineAtByte past end = (%d,%d)", line, col)
	}
}

func TestRopeDeleteAllCollapses(t *testing.T) {
	var lines []string
	for i := 0; i < 1000; i++ {
		lines = append(lines, "x")
	}
	r := newRope(lines)
	r.Delete(0, 1000)
	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0", r.Len())
	}
	r.Insert(0, []string{"a", "b"})
	checkRope(t, r, []string{"a", "b"})
}
