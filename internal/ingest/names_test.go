package ingest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessOkrugName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"BORSKI UPRAVNI OKRUG", "Borski"},
		{"ZAJEČARSKI UPR. OKRUG", "Zajecarski"},
		{"  PČINJSKI   okrug ", "Pcinjski"},
		{"GRAD BEOGRAD", "Grad Beograd"},
		{"MAČVANSKI", "Macvanski"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ProcessOkrugName(tt.in))
		})
	}
}

func TestProcessOpstinaName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"NOVI SAD", "Novi Sad"},
		{"BEOGRAD (ZEMUN)", "Beograd (Zemun)"},
		{"  čačak ", "Čačak"},
		{"Niš (mediana)", "Niš (Mediana)"},
		{"Novi Sad", "Novi Sad"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ProcessOpstinaName(tt.in))
		})
	}
}

func TestProcessOkrugName_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 1000; k++ {
				if got := ProcessOkrugName("ZAJEČARSKI UPR. OKRUG"); got != "Zajecarski" {
					t.Errorf("ProcessOkrugName = %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
