package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Trader  TraderConfig  `yaml:"trader"`
	API     APIConfig     `yaml:"api"`
	Chain   ChainConfig   `yaml:"chain"`
	Wallet  WalletConfig  `yaml:"wallet"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// TraderConfig controla el comportamiento del ciclo de trading.
type TraderConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	// ProfitThreshold es el margen de reventa hipotético (0.2 = 20%).
	ProfitThreshold decimal.Decimal `yaml:"profit_threshold"`
	// SpendingLimitFraction es la fracción del balance que se permite
	// comprometer por compra (0.25 = 25%).
	SpendingLimitFraction decimal.Decimal `yaml:"spending_limit_fraction"`
	CacheTTLMinutes       int             `yaml:"cache_ttl_minutes"`
	// DesiredTraits filtra listings por traits exactos. Vacío = sin filtro.
	DesiredTraits map[string]string `yaml:"desired_traits"`
}

// APIConfig contiene los parámetros del marketplace API.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Key se carga SOLO desde la variable de entorno OPENSEA_API_KEY.
	Key string `yaml:"-"`
	// Pagination es "cursor" u "offset", según lo que soporte el endpoint.
	Pagination  string `yaml:"pagination"`
	PageSize    int    `yaml:"page_size"`
	PageDelayMS int    `yaml:"page_delay_ms"`
}

// ChainConfig contiene los parámetros del RPC y del gas.
type ChainConfig struct {
	// RPCURL se puede sobreescribir con la variable de entorno RPC_URL.
	RPCURL  string `yaml:"rpc_url"`
	ChainID int64  `yaml:"chain_id"`
	// GasLimit es el límite fijo conservador, usado también como fallback
	// cuando la estimación dinámica falla.
	GasLimit     uint64 `yaml:"gas_limit"`
	GasPriceGwei int64  `yaml:"gas_price_gwei"`
	EstimateGas  bool   `yaml:"estimate_gas"`
}

// WalletConfig contiene las credenciales del wallet.
// Ambos valores se cargan SOLO desde variables de entorno.
type WalletConfig struct {
	Address    string `yaml:"-"` // WALLET_ADDRESS
	PrivateKey string `yaml:"-"` // PRIVATE_KEY
}

// StorageConfig controla dónde se persiste el journal.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Los secretos (API key, RPC URL, wallet) vienen siempre del
// entorno. Si el archivo YAML no existe se usan los defaults.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// sin archivo: defaults + entorno
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnv(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// CycleInterval devuelve el cooldown entre ciclos como time.Duration.
func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.Trader.IntervalSeconds) * time.Second
}

// CacheTTL devuelve el TTL de la cache de listings como time.Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Trader.CacheTTLMinutes) * time.Minute
}

// PageDelay devuelve el delay entre requests de paginación.
func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.API.PageDelayMS) * time.Millisecond
}

// Validate falla rápido en el arranque si falta o es inválida alguna
// credencial requerida. Después de Validate, el resto del código puede
// asumir que las credenciales tienen forma correcta.
func (c *Config) Validate() error {
	if c.API.Key == "" {
		return fmt.Errorf("missing OPENSEA_API_KEY")
	}
	if c.Chain.RPCURL == "" {
		return fmt.Errorf("missing RPC_URL")
	}
	if c.Wallet.Address == "" || !common.IsHexAddress(c.Wallet.Address) {
		return fmt.Errorf("invalid or missing WALLET_ADDRESS %q", c.Wallet.Address)
	}
	if c.Wallet.PrivateKey == "" {
		return fmt.Errorf("missing PRIVATE_KEY")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.Wallet.PrivateKey, "0x"))
	if err != nil {
		return fmt.Errorf("invalid PRIVATE_KEY: %w", err)
	}
	// La key debe corresponder al address configurado — detecta mezclas
	// de credenciales de distintos wallets en el arranque, no en la
	// primera compra.
	derived := crypto.PubkeyToAddress(key.PublicKey)
	if derived != common.HexToAddress(c.Wallet.Address) {
		return fmt.Errorf("PRIVATE_KEY does not match WALLET_ADDRESS (derived %s)", derived.Hex())
	}

	if c.Trader.SpendingLimitFraction.LessThanOrEqual(decimal.Zero) ||
		c.Trader.SpendingLimitFraction.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("spending_limit_fraction must be in (0, 1], got %s", c.Trader.SpendingLimitFraction)
	}
	if c.Trader.ProfitThreshold.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("profit_threshold must be > 0, got %s", c.Trader.ProfitThreshold)
	}
	if c.API.Pagination != "cursor" && c.API.Pagination != "offset" {
		return fmt.Errorf("pagination must be \"cursor\" or \"offset\", got %q", c.API.Pagination)
	}
	return nil
}

// applyEnv carga los secretos y overrides desde variables de entorno.
func applyEnv(cfg *Config) {
	cfg.API.Key = os.Getenv("OPENSEA_API_KEY")
	cfg.Wallet.Address = os.Getenv("WALLET_ADDRESS")
	cfg.Wallet.PrivateKey = os.Getenv("PRIVATE_KEY")
	if v := os.Getenv("RPC_URL"); v != "" {
		cfg.Chain.RPCURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Trader.IntervalSeconds <= 0 {
		cfg.Trader.IntervalSeconds = 60
	}
	if cfg.Trader.ProfitThreshold.IsZero() {
		cfg.Trader.ProfitThreshold = decimal.NewFromFloat(0.2)
	}
	if cfg.Trader.SpendingLimitFraction.IsZero() {
		cfg.Trader.SpendingLimitFraction = decimal.NewFromFloat(0.25)
	}
	if cfg.Trader.CacheTTLMinutes <= 0 {
		cfg.Trader.CacheTTLMinutes = 10
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.opensea.io/api/v1"
	}
	if cfg.API.Pagination == "" {
		cfg.API.Pagination = "cursor"
	}
	if cfg.API.PageSize <= 0 {
		cfg.API.PageSize = 50
	}
	if cfg.API.PageDelayMS <= 0 {
		cfg.API.PageDelayMS = 1000
	}
	if cfg.Chain.ChainID == 0 {
		cfg.Chain.ChainID = 11155111 // Sepolia
	}
	if cfg.Chain.GasLimit == 0 {
		cfg.Chain.GasLimit = 200_000
	}
	if cfg.Chain.GasPriceGwei <= 0 {
		cfg.Chain.GasPriceGwei = 50
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "flipbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
