package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Profile describes the store the reports are written for.
type Profile struct {
	Name           string          `yaml:"name"`
	CardFeePercent decimal.Decimal `yaml:"-"`
	Channels       Channels        `yaml:"channels"`
}

type Channels struct {
	Store    string `yaml:"store"`
	Delivery string `yaml:"delivery"`
}

type profileFile struct {
	Name           string   `yaml:"name"`
	CardFeePercent *string  `yaml:"card_fee_percent"`
	Channels       Channels `yaml:"channels"`
}

// DefaultProfile is the store used when no profile file is configured.
func DefaultProfile() Profile {
	return Profile{
		Name:           "MERCADO DE SANTA",
		CardFeePercent: decimal.NewFromInt(3),
		Channels:       Channels{Store: "Loja", Delivery: "iFood"},
	}
}

// LoadProfile reads a YAML store profile. An empty path returns the
// default profile; missing keys keep their defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read store profile: %w", err)
	}
	return ParseProfile(b)
}

// ParseProfile decodes a YAML store profile over the defaults.
func ParseProfile(b []byte) (Profile, error) {
	p := DefaultProfile()
	var f profileFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return p, fmt.Errorf("decode store profile: %w", err)
	}
	if name := strings.TrimSpace(f.Name); name != "" {
		p.Name = name
	}
	if f.CardFeePercent != nil {
		fee, err := decimal.NewFromString(strings.TrimSpace(*f.CardFeePercent))
		if err != nil {
			return p, fmt.Errorf("invalid card_fee_percent %q: %w", *f.CardFeePercent, err)
		}
		if fee.IsNegative() || fee.GreaterThan(decimal.NewFromInt(100)) {
			return p, fmt.Errorf("invalid card_fee_percent %s: must be between 0 and 100", fee)
		}
		p.CardFeePercent = fee
	}
	if s := strings.TrimSpace(f.Channels.Store); s != "" {
		p.Channels.Store = s
	}
	if s := strings.TrimSpace(f.Channels.Delivery); s != "" {
		p.Channels.Delivery = s
	}
	return p, nil
}
