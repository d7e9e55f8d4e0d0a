package checkout

import (
	"errors"
	"fmt"

	helper "k9medics_backend/internals/helpers"
)

// AmountConfig bounds what a donor may give. All values are minor units.
type AmountConfig struct {
	Presets  []int64
	Min      int64
	Max      int64
	Currency string
}

func DefaultAmountConfig() AmountConfig {
	return AmountConfig{
		Presets:  []int64{2500, 5000, 10000, 25000},
		Min:      100,
		Max:      1000000,
		Currency: "usd",
	}
}

// ParseAmount turns free-form major-unit input like "25" or "25.50" into
// minor units inside [Min, Max]. The error text is meant for the field.
func (c AmountConfig) ParseAmount(raw string) (int64, error) {
	minor, err := helper.ParseMajor(raw)
	if err != nil {
		return 0, errors.New(msgInvalidAmount)
	}
	if minor < c.Min || minor > c.Max {
		return 0, fmt.Errorf(msgAmountOutOfRange, helper.FormatMinor(c.Min, c.Currency), helper.FormatMinor(c.Max, c.Currency))
	}
	return minor, nil
}

func (c AmountConfig) isPreset(v int64) bool {
	for _, p := range c.Presets {
		if p == v {
			return true
		}
	}
	return false
}

// AmountSelector holds the committed amount plus the state of the
// preset buttons and the free-form field. It is not safe for concurrent
// use on its own; Flow guards it.
type AmountSelector struct {
	cfg AmountConfig

	amount   int64 // 0 until a valid amount is committed
	preset   int64 // highlighted preset, 0 when free-form
	input    string
	fieldErr string
}

func NewAmountSelector(cfg AmountConfig) *AmountSelector {
	return &AmountSelector{cfg: cfg}
}

// SelectPreset commits preset v and clears the free-form field.
// changed is false when v is already the committed amount.
func (s *AmountSelector) SelectPreset(v int64) (changed bool, err error) {
	if !s.cfg.isPreset(v) {
		return false, ErrUnknownPreset
	}
	s.preset = v
	s.input = ""
	s.fieldErr = ""
	if s.amount == v {
		return false, nil
	}
	s.amount = v
	return true, nil
}

// Enter takes free-form input. Invalid input sets the field error and
// leaves the committed amount alone.
func (s *AmountSelector) Enter(raw string) (changed bool) {
	s.preset = 0
	s.input = raw

	v, err := s.cfg.ParseAmount(raw)
	if err != nil {
		s.fieldErr = err.Error()
		return false
	}
	s.fieldErr = ""
	if s.amount == v {
		return false
	}
	s.amount = v
	return true
}

func (s *AmountSelector) Reset() {
	s.amount = 0
	s.preset = 0
	s.input = ""
	s.fieldErr = ""
}

func (s *AmountSelector) Amount() int64      { return s.amount }
func (s *AmountSelector) Preset() int64      { return s.preset }
func (s *AmountSelector) Input() string      { return s.input }
func (s *AmountSelector) FieldError() string { return s.fieldErr }
