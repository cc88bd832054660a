package valueobjects

import "fmt"

// Mode selects the provider environment.
type Mode string

const (
	ModeTest Mode = "test"
	ModeLive Mode = "live"
)

func NewMode(s string) (Mode, error) {
	m := Mode(s)
	if m != ModeTest && m != ModeLive {
		return "", fmt.Errorf("invalid mode %q: must be test or live", s)
	}
	return m, nil
}

func (m Mode) IsTest() bool {
	return m == ModeTest
}

func (m Mode) String() string {
	return string(m)
}
