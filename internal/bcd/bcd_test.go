package bcd

import "testing"

func TestCompressExpand(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"偶数位", "123456", []byte{0x12, 0x34, 0x56}},
		{"奇数位补零", "12345", []byte{0x01, 0x23, 0x45}},
		{"全零", "0000", []byte{0x00, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compress(tt.in)
			if err != nil {
				t.Fatalf("Compress(%q) error: %v", tt.in, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Compress(%q) = % X, want % X", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Compress(%q)[%d] = %02X, want %02X", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCompressRejectsNonDigits(t *testing.T) {
	if _, err := Compress("12a4"); err != ErrNotDigits {
		t.Errorf("Compress(\"12a4\") error = %v, want ErrNotDigits", err)
	}
}

func TestCompressFixed(t *testing.T) {
	got, err := CompressFixed("12345678901", 6)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0x01}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CompressFixed = % X, want % X", got, want)
		}
	}
	if _, err := CompressFixed("1234567890123", 6); err == nil {
		t.Error("CompressFixed should reject overlong input")
	}
}

func TestExpandRoundTrip(t *testing.T) {
	for _, s := range []string{"00", "123456789012", "998877"} {
		b, err := Compress(s)
		if err != nil {
			t.Fatal(err)
		}
		if got := Expand(b); got != s {
			t.Errorf("Expand(Compress(%q)) = %q", s, got)
		}
	}
}

func TestByteConversion(t *testing.T) {
	if FromByte(0x59) != 59 {
		t.Errorf("FromByte(0x59) = %d", FromByte(0x59))
	}
	if ToByte(59) != 0x59 {
		t.Errorf("ToByte(59) = %02X", ToByte(59))
	}
	for n := 0; n < 100; n++ {
		if FromByte(ToByte(n)) != n {
			t.Fatalf("round trip failed for %d", n)
		}
	}
}
