package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// File is the optional TOML overlay. Secrets (Plaid secret, login
// password, signing key) are never read from it; they come from the
// environment only, and a file that sets them is rejected as unknown keys.
type File struct {
	Link         LinkSection         `toml:"link"`
	Transactions TransactionsSection `toml:"transactions"`
	Cors         CorsSection         `toml:"cors"`
	Login        LoginSection        `toml:"login"`
}

type LinkSection struct {
	ClientName   string   `toml:"client_name"`
	Products     []string `toml:"products"`
	CountryCodes []string `toml:"country_codes"`
	Language     string   `toml:"language"`
}

type TransactionsSection struct {
	WindowDays int `toml:"window_days"`
}

type CorsSection struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

type LoginSection struct {
	Username string `toml:"username"`
}

func LoadFile(path string) (*File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &f, nil
}

func DecodeString(data string) (*File, error) {
	var f File
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	return &f, nil
}

func checkUndecoded(md toml.MetaData) error {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys: %v", undecoded)
	}
	return nil
}
