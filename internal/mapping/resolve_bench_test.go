package mapping

import (
	"fmt"
	"testing"
)

// benchSnapshot builds n ranges of 170 RGB entities each, the worst
// realistic case for resolution volume.
func benchSnapshot(b *testing.B, n int, sparse bool) *Snapshot {
	b.Helper()
	stride := uint32(170)
	if sparse {
		stride = 1_000_000
	}
	configs := make([]RangeConfig, 0, n)
	for i := 0; i < n; i++ {
		from := uint32(i)*stride + 1
		configs = append(configs, RangeConfig{
			From:         from,
			To:           from + 169,
			ControllerIP: fmt.Sprintf("10.0.%d.%d", i/256, i%256),
			Universe:     i,
		})
	}
	snap, err := Validate(configs, nil)
	if err != nil {
		b.Fatal(err)
	}
	return snap
}

func BenchmarkResolveDense(b *testing.B) {
	snap := benchSnapshot(b, 100, false)
	if snap.dense == nil {
		b.Fatal("expected dense index")
	}
	max := uint32(100 * 170)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		id := uint32(i)%max + 1
		if _, ok := snap.Resolve(id); !ok {
			b.Fatalf("id %d unmapped", id)
		}
	}
}

func BenchmarkResolveBinarySearch(b *testing.B) {
	snap := benchSnapshot(b, 100, true)
	if snap.dense != nil {
		b.Fatal("expected binary search path")
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		id := uint32(i%100)*1_000_000 + uint32(i%170) + 1
		if _, ok := snap.Resolve(id); !ok {
			b.Fatalf("id %d unmapped", id)
		}
	}
}
