package resolver

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/copyleftdev/rasn/internal/asn"
	"github.com/copyleftdev/rasn/internal/coldstore"
	"github.com/copyleftdev/rasn/internal/rangetab"
)

func TestTableSource(t *testing.T) {
	tab := rangetab.NewTable(
		[]uint32{100}, []uint32{150}, []uint32{15169},
		[]string{"US"}, []string{"Google"},
	)
	src := TableSource{Table: tab}
	info, ok, err := src.Find(context.Background(), 125)
	if err != nil || !ok || info.ASN != 15169 {
		t.Fatalf("Find = %+v, %v, %v", info, ok, err)
	}
	if _, ok, _ := src.Find(context.Background(), 50); ok {
		t.Fatal("expected miss")
	}
}

func TestColdSourceJoinsMetadata(t *testing.T) {
	store, err := coldstore.Open(filepath.Join(t.TempDir(), "overflow.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.PutRange(100, 150, 64512); err != nil {
		t.Fatal(err)
	}
	if err := store.PutInfo(asn.Info{ASN: 64512, Organization: "ExampleNet", Country: "DE"}); err != nil {
		t.Fatal(err)
	}
	src := ColdSource{Store: store}
	info, ok, err := src.Find(context.Background(), 125)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if info.Organization != "ExampleNet" || info.Country != "DE" {
		t.Fatalf("got %+v", info)
	}
}

func TestColdSourcePlaceholderWithoutMetadata(t *testing.T) {
	store, err := coldstore.Open(filepath.Join(t.TempDir(), "overflow.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.PutRange(100, 150, 64512); err != nil {
		t.Fatal(err)
	}
	src := ColdSource{Store: store}
	info, ok, err := src.Find(context.Background(), 125)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if info.ASN != 64512 || info.Organization != "AS64512" {
		t.Fatalf("got %+v, want placeholder", info)
	}
}

func TestHotTableAuthoritativeOverCold(t *testing.T) {
	tab := rangetab.NewTable(
		[]uint32{100}, []uint32{150}, []uint32{1},
		[]string{"US"}, []string{"HotOrg"},
	)
	store, err := coldstore.Open(filepath.Join(t.TempDir(), "overflow.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.PutRange(100, 150, 2); err != nil {
		t.Fatal(err)
	}
	r := New(newTestCache(t), nil, time.Minute, TableSource{Table: tab}, ColdSource{Store: store})
	info, ok, err := r.Resolve(context.Background(), 125)
	if err != nil || !ok {
		t.Fatalf("Resolve: ok=%v err=%v", ok, err)
	}
	if info.ASN != 1 {
		t.Fatalf("got asn %d, hot table must win on overlap", info.ASN)
	}
}
