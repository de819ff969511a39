package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/datadeck/internal/utils"
)

const (
	dirName    = ".datadeck"
	envPrefix  = "DATADECK"
	envFile    = ".env"
	configName = "config"
)

// Global configuration structure.
type Global struct {
	ListenAddr         string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	UploadDir          string   `mapstructure:"upload_dir" yaml:"upload_dir"`
	MaxUploadMB        int      `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	PreviewRows        int      `mapstructure:"preview_rows" yaml:"preview_rows"`
	PreviewMaxChars    int      `mapstructure:"preview_max_chars" yaml:"preview_max_chars"`
	HistogramBins      int      `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	CSVDelimiter       string   `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`
	SessionIdleMinutes int      `mapstructure:"session_idle_minutes" yaml:"session_idle_minutes"`
	UploadsPerMinute   int      `mapstructure:"uploads_per_minute" yaml:"uploads_per_minute"`
	CORSOrigins        []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	Debug              bool     `mapstructure:"debug" yaml:"debug"`
}

var defaults = map[string]any{
	"listen_addr":          ":5000",
	"upload_dir":           "",
	"max_upload_mb":        16,
	"preview_rows":         5,
	"preview_max_chars":    50,
	"histogram_bins":       10,
	"csv_delimiter":        ",",
	"session_idle_minutes": 60,
	"uploads_per_minute":   30,
	"cors_origins":         []string{},
	"debug":                false,
}

// Keys lists every configuration key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path resolves the config file location: cfgFile when set, otherwise
// ~/.datadeck/config.yaml.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, configName+".yaml"), nil
}

// Save writes the given configuration to the cfgFile path, or to
// ~/.datadeck/config.yaml when cfgFile is empty.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (including a .env in the working directory) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.UploadDir == "" {
		c.UploadDir = filepath.Join(os.TempDir(), "datadeck-uploads")
	}
	if c.CORSOrigins == nil {
		c.CORSOrigins = []string{}
	}
	return &c, nil
}

// Delimiter returns the configured CSV delimiter, defaulting to a comma.
func (c *Global) Delimiter() rune {
	if c == nil || c.CSVDelimiter == "" {
		return ','
	}
	if c.CSVDelimiter == `\t` {
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(c.CSVDelimiter)
	return r
}

// MaxUploadBytes converts max_upload_mb to bytes.
func (c *Global) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Set assigns key from its string form. Invalid values leave c unchanged.
func (c *Global) Set(key, val string) error {
	if ptr, ok := c.positiveInts()[key]; ok {
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		*ptr = i
		return nil
	}
	switch key {
	case "listen_addr":
		c.ListenAddr = val
	case "upload_dir":
		c.UploadDir = val
	case "uploads_per_minute":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for uploads_per_minute: %v", val)
		}
		c.UploadsPerMinute = i
	case "csv_delimiter":
		if val != `\t` && utf8.RuneCountInString(val) != 1 {
			return fmt.Errorf("csv_delimiter must be a single character, got %q", val)
		}
		if val == "\"" || val == "\n" || val == "\r" {
			return fmt.Errorf("invalid csv_delimiter %q", val)
		}
		c.CSVDelimiter = val
	case "cors_origins":
		origins := []string{}
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	case "debug":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for debug: %v", val)
		}
		c.Debug = b
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func (c *Global) positiveInts() map[string]*int {
	return map[string]*int{
		"max_upload_mb":        &c.MaxUploadMB,
		"preview_rows":         &c.PreviewRows,
		"preview_max_chars":    &c.PreviewMaxChars,
		"histogram_bins":       &c.HistogramBins,
		"session_idle_minutes": &c.SessionIdleMinutes,
	}
}

// Get renders key as a string for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "listen_addr":
		return c.ListenAddr, nil
	case "upload_dir":
		return c.UploadDir, nil
	case "max_upload_mb":
		return strconv.Itoa(c.MaxUploadMB), nil
	case "preview_rows":
		return strconv.Itoa(c.PreviewRows), nil
	case "preview_max_chars":
		return strconv.Itoa(c.PreviewMaxChars), nil
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins), nil
	case "csv_delimiter":
		return strconv.Quote(c.CSVDelimiter), nil
	case "session_idle_minutes":
		return strconv.Itoa(c.SessionIdleMinutes), nil
	case "uploads_per_minute":
		return strconv.Itoa(c.UploadsPerMinute), nil
	case "cors_origins":
		return strings.Join(c.CORSOrigins, ","), nil
	case "debug":
		return strconv.FormatBool(c.Debug), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}
