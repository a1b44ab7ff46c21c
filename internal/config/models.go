package config

import (
	"fmt"
	"time"
)

// StoreConfig represents the configuration of the email repository
type StoreConfig struct {
	Driver     string
	SQLitePath string
	MySQLDSN   string
	LogLevel   string
}

// SpamConfig represents the configuration of the spam classifier
type SpamConfig struct {
	FilterAddresses  []string
	ClassifyInterval time.Duration
}

// GetStore returns the store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Driver:     c.GetString("store.driver"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
		LogLevel:   c.GetString("store.log_level"),
	}
}

// GetSpam returns the spam classifier configuration
func (c *Config) GetSpam() (SpamConfig, error) {
	interval, err := c.GetDuration("spam.classify_interval")
	if err != nil {
		return SpamConfig{}, fmt.Errorf("invalid spam classify interval: %w", err)
	}

	return SpamConfig{
		FilterAddresses:  c.GetStringSlice("spam.filter_addresses"),
		ClassifyInterval: interval,
	}, nil
}
