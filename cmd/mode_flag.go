package cmd

import (
	"github.com/spf13/pflag"
	"github.com/tristendillon/govgen/core/classifier"
)

// modeValue is a --mode flag that remembers whether it was given, so the
// config file decides otherwise.
type modeValue struct {
	mode classifier.Mode
	set  bool
}

var _ pflag.Value = (*modeValue)(nil)

func (m *modeValue) String() string {
	return string(m.mode)
}

func (m *modeValue) Set(s string) error {
	mode, err := classifier.ParseMode(s)
	if err != nil {
		return err
	}
	m.mode = mode
	m.set = true
	return nil
}

func (m *modeValue) Type() string {
	return "mode"
}

// Resolve returns the flag value if given, else fallback.
func (m *modeValue) Resolve(fallback classifier.Mode) classifier.Mode {
	if m.set {
		return m.mode
	}
	return fallback
}

func addModeFlag(flags *pflag.FlagSet, m *modeValue) {
	flags.Var(m, "mode", `classification policy: "strict" or "broad" (default from config)`)
}
