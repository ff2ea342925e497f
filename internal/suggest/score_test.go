package suggest

import (
	"sync"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Šabac", "sabac"},
		{"ČAČAK", "cacak"},
		{"Côte d'Ivoire", "cote d'ivoire"},
		{"Niš", "nis"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		want      int
		ok        bool
	}{
		{name: "exact", query: "serbia", candidate: "serbia", want: 0, ok: true},
		{name: "prefix", query: "ser", candidate: "serbia", want: 3, ok: true},
		{name: "suffix starts late", query: "bia", candidate: "serbia", want: 300, ok: true},
		{name: "one gap", query: "sbia", candidate: "serbia", want: 2000, ok: true},
		{name: "one missing letter", query: "serbiax", candidate: "serbia", want: 10000, ok: true},
		{name: "two missing letters", query: "xxserbia", candidate: "serbia", want: 20000, ok: true},
		{name: "nothing matches", query: "qqq", candidate: "serbia", ok: false},
		{name: "empty query", query: "", candidate: "serbia", want: 6, ok: true},
		{name: "empty candidate", query: "a", candidate: "", want: 10000, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Score(tt.query, tt.candidate)
			if ok != tt.ok {
				t.Fatalf("Score(%q, %q) ok = %v, want %v (score %d)", tt.query, tt.candidate, ok, tt.ok, got)
			}
			if ok && got != tt.want {
				t.Errorf("Score(%q, %q) = %d, want %d", tt.query, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestScore_ExactBeatsEverythingElse(t *testing.T) {
	q := Normalize("Srbija")
	exact, _ := Score(q, Normalize("SRBIJA"))
	for _, other := range []string{"Srbijaa", "Srbij", "Sbrija", "Bosnia", "srbija i crna gora"} {
		s, ok := Score(q, Normalize(other))
		if ok && s <= exact {
			t.Errorf("Score(%q) = %d, not worse than exact %d", other, s, exact)
		}
	}
}

func TestScore_Stable(t *testing.T) {
	a, _ := Score("bel", "beograd")
	b, _ := Score("bel", "beograd")
	if a != b {
		t.Errorf("Score not reproducible: %d vs %d", a, b)
	}
}

func TestNormalize_Concurrent(t *testing.T) {
	names := []string{"Šabac", "Zaječarski", "Čačak", "Niš (Medijana)", "Côte d'Ivoire", "Kragujevac"}
	want := make([]string, len(names))
	for i, n := range names {
		want[i] = Normalize(n)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 2000; k++ {
				i := k % len(names)
				if got := Normalize(names[i]); got != want[i] {
					errs <- got
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent Normalize returned %q", got)
	}
}
