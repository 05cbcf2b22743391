// Package config holds the process-level Environment (deployment
// settings read from .env/os.Getenv) and the Store, the single
// source-of-truth holder of the persisted model.Config record
// described in spec.md §3-4.7.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// BuildVersion and Copyright are the read-only display fields embedded
// in the config JSON (spec.md §6).
const (
	BuildVersion = "1.6.1"
	Copyright    = "© Darkone Customs 2025"
)

// Environment carries process-level settings that are not part of the
// persisted configuration record: how the control plane is reached,
// not what the rings render. Grounded on
// ambient-light-agent/internal/config/config.go's Load()/getEnv style.
type Environment struct {
	UDPPort     uint16
	PSK         string
	HTTPAddr    string
	HTTPBase    string
	StatePath   string
	DeviceName  string
	QuietBudget int // processPending budget, microseconds

	SPIBus0 string
	SPIBus1 string
	SPIBus2 string
	SPIBus3 string
}

// LoadEnvironment reads .env (if present) then overlays os.Getenv,
// falling back to the firmware's compile-time defaults.
func LoadEnvironment() Environment {
	_ = godotenv.Load()

	return Environment{
		UDPPort:     uint16(getEnvInt("RGBCTRL_UDP_PORT", 7777)),
		PSK:         getEnv("RGBCTRL_PSK", ""),
		HTTPAddr:    getEnv("RGBCTRL_HTTP_ADDR", ":8080"),
		HTTPBase:    getEnv("RGBCTRL_HTTP_BASE", "/config"),
		StatePath:   getEnv("RGBCTRL_STATE_PATH", "./data/rgbctrl.json"),
		DeviceName:  getEnv("RGBCTRL_NAME", "XBOX RGB"),
		QuietBudget: getEnvInt("RGBCTRL_PENDING_BUDGET_US", 1500),
		SPIBus0:     getEnv("RGBCTRL_SPI_BUS_CH1", ""),
		SPIBus1:     getEnv("RGBCTRL_SPI_BUS_CH2", ""),
		SPIBus2:     getEnv("RGBCTRL_SPI_BUS_CH3", ""),
		SPIBus3:     getEnv("RGBCTRL_SPI_BUS_CH4", ""),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
