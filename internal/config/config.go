package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Application Application `yaml:"application"`
	Storage     Storage     `yaml:"storage"`
	Upload      Upload      `yaml:"upload"`
	Vocabulary  Vocabulary  `yaml:"vocabulary"`
}

type Application struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	LogLevel string `yaml:"log_level"`
}

type Storage struct {
	// ScratchDir holds intermediate artifacts (converted parquet,
	// compressed files) during processing. Empty means os.TempDir.
	ScratchDir string `yaml:"scratch_dir"`
	// CompressionLevel is the zstd level recorded in metadata. The
	// encoder always runs at the default speed/ratio balance, which
	// corresponds to level 3.
	CompressionLevel int `yaml:"compression_level"`
}

type Upload struct {
	Bucket string `yaml:"bucket"`
	// RequestsPerSecond paces calls against the remote store. Zero
	// disables pacing.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Vocabulary holds the normalization tables and the set of
// recognized exchange tags. Keys are matched case-insensitively.
type Vocabulary struct {
	Exchanges  []string          `yaml:"exchanges"`
	Assets     map[string]string `yaml:"assets"`
	Timeframes map[string]string `yaml:"timeframes"`
}

// Default returns the built-in configuration. The asset table maps
// exchange tickers to Kraken-style canonical pairs; the timeframe
// table collapses the long-form tokens used in source filenames.
func Default() *Config {
	return &Config{
		Application: Application{
			Name:     "market-archiver",
			Version:  "1.0.0",
			LogLevel: "info",
		},
		Storage: Storage{
			CompressionLevel: 3,
		},
		Upload: Upload{
			Bucket:            "crypto-trader-data",
			RequestsPerSecond: 10,
		},
		Vocabulary: Vocabulary{
			Exchanges: []string{"BINANCE"},
			Assets: map[string]string{
				"BTCUSDT": "XXBTZUSD",
				"BTCUSD":  "XXBTZUSD",
				"ETHUSDT": "XETHZUSD",
				"ETHUSD":  "XETHZUSD",
				"SOLUSDT": "SOLUSD",
				"SOLUSD":  "SOLUSD",
			},
			Timeframes: map[string]string{
				"1min":  "1m",
				"5min":  "5m",
				"15min": "15m",
				"1hour": "1h",
				"1h":    "1h",
				"4hour": "4h",
				"4h":    "4h",
				"1day":  "1d",
				"1d":    "1d",
			},
		},
	}
}

// Load reads YAML config at path on top of the defaults. A missing
// file is not an error; the defaults apply unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
