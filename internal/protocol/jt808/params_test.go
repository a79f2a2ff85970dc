package jt808

import "testing"

func TestTypeOf(t *testing.T) {
	tests := []struct {
		id   uint32
		want ParamType
	}{
		{ParamStartupGPS, TypeByte},
		{ParamGPSLogATT, TypeByte},
		{ParamNtripCorsPort, TypeWord},
		{ParamCDRadioWorkFreq, TypeWord},
		{ParamHeartbeatInterval, TypeDword},
		{ParamCDRadioBaudRate, TypeDword},
		{ParamMaxSpeed, TypeDword},
		{ParamNtripCorsIP, TypeString},
		{ParamJT808ServPhone, TypeString},
		{0xDEADBEEF, TypeUnknown},
		{0x0999, TypeUnknown},
	}
	for _, tt := range tests {
		if got := TypeOf(tt.id); got != tt.want {
			t.Errorf("TypeOf(0x%04X) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestLengthOf(t *testing.T) {
	tests := []struct {
		t    ParamType
		want uint8
	}{
		{TypeByte, 1},
		{TypeWord, 2},
		{TypeDword, 4},
		{TypeString, 0},
		{TypeUnknown, 0},
	}
	for _, tt := range tests {
		if got := LengthOf(tt.t); got != tt.want {
			t.Errorf("LengthOf(%v) = %d, want %d", tt.t, got, tt.want)
		}
	}
}

func TestNumericParamEncoding(t *testing.T) {
	p := NewNumericParam(ParamNtripCorsPort, 2101)
	if p.Len != 2 || len(p.Value) != 2 {
		t.Fatalf("word param len = %d/%d", p.Len, len(p.Value))
	}
	// 数值型参数按大端上线
	if p.Value[0] != 0x08 || p.Value[1] != 0x35 {
		t.Errorf("value = % X, want 08 35", p.Value)
	}
	if p.Uint() != 2101 {
		t.Errorf("Uint() = %d", p.Uint())
	}
}
