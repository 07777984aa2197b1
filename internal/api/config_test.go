package api

import (
	"testing"
	"time"
)

// TestConfig_Validate_Valid tests Config.Validate() with valid configuration
func TestConfig_Validate_Valid(t *testing.T) {
	if err := testConfig().Validate(); err != nil {
		t.Errorf("Config.Validate() = %v, want nil", err)
	}
}

// TestConfig_Validate_Invalid tests Config.Validate() with key invalid cases
func TestConfig_Validate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty bind address", func(c *Config) { c.BindAddr = "" }},
		{"invalid port", func(c *Config) { c.BindPort = 0 }},
		{"invalid port high", func(c *Config) { c.BindPort = 99999 }},
		{"nil service", func(c *Config) { c.Service = nil }},
		{"negative write timeout", func(c *Config) { c.WriteTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig()
			tt.modify(config)
			if err := config.Validate(); err == nil {
				t.Errorf("Config.Validate() = nil, want error")
			}
		})
	}
}

// TestDefaultConfig tests default values
func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.BindAddr != "127.0.0.1" {
		t.Errorf("DefaultConfig() BindAddr = %q, want 127.0.0.1", config.BindAddr)
	}
	if config.BindPort != 5001 {
		t.Errorf("DefaultConfig() BindPort = %d, want 5001", config.BindPort)
	}
	if config.Service != nil {
		t.Error("DefaultConfig() Service should be nil")
	}
	if config.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("DefaultConfig() WriteTimeout = %v, want %v", config.WriteTimeout, DefaultWriteTimeout)
	}
}
