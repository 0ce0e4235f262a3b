package iputil

import "testing"

func TestParseIPv4(t *testing.T) {
	cases := []struct {
		in   string
		want uint32
	}{
		{"0.0.0.0", 0},
		{"8.8.8.8", 0x08080808},
		{"192.168.1.1", 0xC0A80101},
		{"255.255.255.255", 0xFFFFFFFF},
	}
	for _, c := range cases {
		got, err := ParseIPv4(c.in)
		if err != nil {
			t.Fatalf("ParseIPv4(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseIPv4(%q) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

func TestParseIPv4Invalid(t *testing.T) {
	for _, in := range []string{"", "1.2.3", "1.2.3.4.5", "256.1.1.1", "a.b.c.d", "1..2.3", "1.2.3.-4", "1.2.3.1234"} {
		if _, err := ParseIPv4(in); err == nil {
			t.Fatalf("ParseIPv4(%q): expected error", in)
		}
	}
}

func TestFormatIPv4RoundTrip(t *testing.T) {
	for _, ip := range []uint32{0, 0x08080808, 0xC0A80101, 0xFFFFFFFF} {
		s := FormatIPv4(ip)
		got, err := ParseIPv4(s)
		if err != nil || got != ip {
			t.Fatalf("round trip %#x via %q failed: %v", ip, s, err)
		}
	}
}

func TestParseCIDR(t *testing.T) {
	c, err := ParseCIDR("192.168.1.0/24")
	if err != nil {
		t.Fatal(err)
	}
	if c.Network != 0xC0A80100 || c.PrefixLen != 24 {
		t.Fatalf("got %+v", c)
	}
	if !c.Contains(0xC0A80101) {
		t.Fatal("192.168.1.1 should be contained")
	}
	if c.Contains(0xC0A80001) {
		t.Fatal("192.168.0.1 should not be contained")
	}
	if c.First() != 0xC0A80100 || c.Last() != 0xC0A801FF {
		t.Fatalf("bounds = %#x..%#x", c.First(), c.Last())
	}
}

func TestParseCIDRNormalizesHostBits(t *testing.T) {
	c, err := ParseCIDR("10.0.0.5/8")
	if err != nil {
		t.Fatal(err)
	}
	if c.Network != 0x0A000000 {
		t.Fatalf("network = %#x, want host bits masked off", c.Network)
	}
}

func TestParseCIDREdges(t *testing.T) {
	c, err := ParseCIDR("0.0.0.0/0")
	if err != nil {
		t.Fatal(err)
	}
	if c.First() != 0 || c.Last() != 0xFFFFFFFF {
		t.Fatalf("/0 bounds = %#x..%#x", c.First(), c.Last())
	}
	c, err = ParseCIDR("8.8.8.8/32")
	if err != nil {
		t.Fatal(err)
	}
	if c.First() != 0x08080808 || c.Last() != 0x08080808 {
		t.Fatalf("/32 bounds = %#x..%#x", c.First(), c.Last())
	}
}

func TestParseCIDRInvalid(t *testing.T) {
	for _, in := range []string{"", "1.2.3.4", "1.2.3.4/33", "1.2.3/24", "1.2.3.4/x"} {
		if _, err := ParseCIDR(in); err == nil {
			t.Fatalf("ParseCIDR(%q): expected error", in)
		}
	}
}
