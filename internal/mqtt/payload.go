package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

// Flag payloads.
var (
	On  = []byte("1")
	Off = []byte("0")
)

// FormatFlag returns the payload for a boolean value.
func FormatFlag(on bool) []byte {
	if on {
		return On
	}
	return Off
}

// ParseFlag interprets a boolean payload: 1/0, ON/OFF or true/false,
// case-insensitive.
func ParseFlag(payload []byte) (bool, error) {
	s := strings.TrimSpace(string(payload))
	switch strings.ToUpper(s) {
	case "1", "ON", "TRUE":
		return true, nil
	case "0", "OFF", "FALSE":
		return false, nil
	}
	return false, fmt.Errorf("malformed flag payload %q", s)
}

// ParseCode interprets a decimal integer payload.
func ParseCode(payload []byte) (int, error) {
	s := strings.TrimSpace(string(payload))
	code, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("malformed code payload %q", s)
	}
	return code, nil
}
