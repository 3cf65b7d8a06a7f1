package config

import (
	"os"
	"path/filepath"

	"github.com/lintang-b-s/godb/lib"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config. konfigurasi buffer pool & file layout.
type Config struct {
	PoolSize  int    `toml:"pool_size"`
	ReplacerK int    `toml:"replacer_k"`
	PageSize  int    `toml:"page_size"`
	DBDir     string `toml:"db_dir"`
	DBFile    string `toml:"db_file"`
	LogFile   string `toml:"log_file"`
}

func Default() Config {
	return Config{
		PoolSize:  lib.DEFAULT_POOL_SIZE,
		ReplacerK: lib.DEFAULT_REPLACER_K,
		PageSize:  lib.PAGE_SIZE,
		DBDir:     lib.DB_DIR,
		DBFile:    lib.PAGE_FILE_NAME,
		LogFile:   lib.LOG_FILE_NAME,
	}
}

// Load. baca config TOML dari path; field yang kosong diisi default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.PoolSize <= 0 {
		return errors.New("pool_size must be positive")
	}
	if c.ReplacerK < 1 {
		return errors.New("replacer_k must be >= 1")
	}
	if _, err := lib.CeilPageSize(c.PageSize); err != nil {
		return errors.Wrap(err, "page_size")
	}
	return nil
}

func (c Config) DBPath() string {
	return filepath.Join(c.DBDir, c.DBFile)
}

func (c Config) LogPath() string {
	return filepath.Join(c.DBDir, c.LogFile)
}
