package mqtt

import "testing"

func TestParseFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"1", true, false},
		{"0", false, false},
		{" 1\n", true, false},
		{"ON", true, false},
		{"off", false, false},
		{"true", true, false},
		{"False", false, false},
		{"", false, true},
		{"2", false, true},
		{"yes", false, true},
	}

	for _, tt := range tests {
		got, err := ParseFlag([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFlag(%q): err=%v, wantErr=%v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFlag(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"5", 5, false},
		{"13", 13, false},
		{" 7 ", 7, false},
		{"-1", -1, false},
		{"", 0, true},
		{"5.0", 0, true},
		{"UP", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCode([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCode(%q): err=%v, wantErr=%v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCode(%q): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatFlag(t *testing.T) {
	if string(FormatFlag(true)) != "1" {
		t.Errorf("true: got %s", FormatFlag(true))
	}
	if string(FormatFlag(false)) != "0" {
		t.Errorf("false: got %s", FormatFlag(false))
	}
}
