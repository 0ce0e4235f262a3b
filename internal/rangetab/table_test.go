package rangetab

import "testing"

func newTestTable() *Table {
	return NewTable(
		[]uint32{100, 200, 300},
		[]uint32{150, 250, 350},
		[]uint32{1, 2, 3},
		[]string{"US", "GB", "DE"},
		[]string{"Org1", "Org2", "Org3"},
	)
}

func TestFindHits(t *testing.T) {
	tab := newTestTable()
	cases := []struct {
		ip   uint32
		asn  uint32
		ctry string
	}{
		{125, 1, "US"},
		{225, 2, "GB"},
		{300, 3, "DE"},
	}
	for _, c := range cases {
		info, ok := tab.Find(c.ip)
		if !ok {
			t.Fatalf("Find(%d): expected hit", c.ip)
		}
		if info.ASN != c.asn || info.Country != c.ctry {
			t.Fatalf("Find(%d) = %+v, want asn=%d country=%s", c.ip, info, c.asn, c.ctry)
		}
	}
}

func TestFindMisses(t *testing.T) {
	tab := newTestTable()
	for _, ip := range []uint32{50, 175, 400, 99, 151} {
		if _, ok := tab.Find(ip); ok {
			t.Fatalf("Find(%d): expected miss", ip)
		}
	}
}

func TestFindBoundariesInclusive(t *testing.T) {
	tab := newTestTable()
	for _, ip := range []uint32{100, 150, 200, 250, 300, 350} {
		if _, ok := tab.Find(ip); !ok {
			t.Fatalf("Find(%d): boundary should match", ip)
		}
	}
}

func TestFindEmptyTable(t *testing.T) {
	tab := NewTable(nil, nil, nil, nil, nil)
	if _, ok := tab.Find(1); ok {
		t.Fatal("empty table should never match")
	}
	if tab.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", tab.Len())
	}
}

func BenchmarkFind(b *testing.B) {
	n := 1 << 20
	start := make([]uint32, n)
	end := make([]uint32, n)
	asns := make([]uint32, n)
	ctry := make([]string, n)
	orgs := make([]string, n)
	for i := 0; i < n; i++ {
		start[i] = uint32(i * 256)
		end[i] = uint32(i*256 + 255)
		asns[i] = uint32(i)
		ctry[i] = "US"
		orgs[i] = "Bench"
	}
	tab := NewTable(start, end, asns, ctry, orgs)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tab.Find(uint32(i) * 2654435761)
	}
}
