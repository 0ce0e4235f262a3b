package coldstore

import (
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	"github.com/copyleftdev/rasn/internal/asn"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overflow.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestRangeRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)
	// 8.8.8.0 - 8.8.8.255 -> AS15169
	if err := s.PutRange(0x08080800, 0x080808FF, 15169); err != nil {
		t.Fatalf("PutRange: %v", err)
	}
	for _, ip := range []uint32{0x08080800, 0x08080808, 0x080808FF} {
		got, ok, err := s.FindIP(ip)
		if err != nil {
			t.Fatalf("FindIP(%#x): %v", ip, err)
		}
		if !ok || got != 15169 {
			t.Fatalf("FindIP(%#x) = %d, %v", ip, got, ok)
		}
	}
	for _, ip := range []uint32{0x080807FF, 0x08080900, 0x01010101} {
		if _, ok, err := s.FindIP(ip); err != nil || ok {
			t.Fatalf("FindIP(%#x) = hit, want miss (err=%v)", ip, err)
		}
	}
}

func TestFindIPMultipleRanges(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.PutRange(0x08080800, 0x080808FF, 15169); err != nil {
		t.Fatal(err)
	}
	if err := s.PutRange(0x01010100, 0x010101FF, 13335); err != nil {
		t.Fatal(err)
	}
	if got, ok, _ := s.FindIP(0x08080808); !ok || got != 15169 {
		t.Fatalf("got %d, %v", got, ok)
	}
	if got, ok, _ := s.FindIP(0x01010101); !ok || got != 13335 {
		t.Fatalf("got %d, %v", got, ok)
	}
}

func TestFindIPEmptyStore(t *testing.T) {
	s, _ := openTestStore(t)
	if _, ok, err := s.FindIP(0x08080808); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}
}

func TestPutRangeInverted(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.PutRange(10, 5, 1); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("err = %v, want ErrInvalidData", err)
	}
}

func TestInfoRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)
	in := asn.Info{ASN: 15169, Organization: "Google", Country: "US", Description: "Google LLC"}
	if err := s.PutInfo(in); err != nil {
		t.Fatalf("PutInfo: %v", err)
	}
	got, err := s.GetInfo(15169)
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if got != in {
		t.Fatalf("got %+v, want %+v", got, in)
	}
}

func TestGetInfoNotFound(t *testing.T) {
	s, _ := openTestStore(t)
	if _, err := s.GetInfo(99999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteInfo(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.PutInfo(asn.Info{ASN: 15169, Organization: "Google"}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteInfo(15169); err != nil {
		t.Fatalf("DeleteInfo: %v", err)
	}
	if _, err := s.GetInfo(15169); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}
	// deleting an absent key is not an error
	if err := s.DeleteInfo(15169); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestGetInfoCorrupted(t *testing.T) {
	s, path := openTestStore(t)
	if err := s.PutInfo(asn.Info{ASN: 15169, Organization: "Google"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		t.Fatal(err)
	}
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], 15169)
	err = db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("asn_metadata")).Put(key[:], []byte("{not json"))
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if _, err := s2.GetInfo(15169); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("err = %v, want ErrInvalidData", err)
	}
}
