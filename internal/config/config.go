package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App         App         `mapstructure:",squash"`
	Server      Server      `mapstructure:",squash"`
	Database    Database    `mapstructure:",squash"`
	Meta        Meta        `mapstructure:",squash"`
	SSOtica     SSOtica     `mapstructure:",squash"`
	Fixture     Fixture     `mapstructure:",squash"`
	Auth        Auth        `mapstructure:",squash"`
	ControlLoop ControlLoop `mapstructure:",squash"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Database struct {
	DSN             string        `mapstructure:"-"`
	Driver          string        `mapstructure:"database_driver"`
	Password        string        `mapstructure:"database_password"`
	URL             string        `mapstructure:"database_url"`
	User            string        `mapstructure:"database_user"`
	MaxOpenConns    int           `mapstructure:"database_max_open_conns"`
	MaxIdleConns    int           `mapstructure:"database_max_idle_conns"`
	ConnMaxIdleTime time.Duration `mapstructure:"database_conn_max_idle_time"`
}

type Meta struct {
	BaseURL            string  `mapstructure:"meta_base_url"`
	URL                string  `mapstructure:"meta_url"`
	Version            string  `mapstructure:"meta_version"`
	AppID              string  `mapstructure:"meta_app_id"`
	AppSecret          string  `mapstructure:"meta_app_secret"`
	RequestsPerSecond  float64 `mapstructure:"meta_requests_per_second"`
	RequestBurst       int     `mapstructure:"meta_request_burst"`
	HTTPTimeoutSeconds int     `mapstructure:"meta_http_timeout_seconds"`
}

type SSOtica struct {
	URL                string  `mapstructure:"ssotica_url"`
	RequestsPerSecond  float64 `mapstructure:"ssotica_requests_per_second"`
	HTTPTimeoutSeconds int     `mapstructure:"ssotica_http_timeout_seconds"`
}

type Fixture struct {
	BaseDir string `mapstructure:"fixture_base_dir"`
}

type App struct {
	LogLevel      string `mapstructure:"log_level"`
	ExecutionMode string `mapstructure:"execution_mode"`
	Timezone      string `mapstructure:"timezone"`
	StoreDriver   string `mapstructure:"store_driver"`
}

type Auth struct {
	Secret               string `mapstructure:"auth_secret"`
	OperatorEmail        string `mapstructure:"operator_email"`
	OperatorPasswordHash string `mapstructure:"operator_password_hash"`
	TokenTTLHours        int    `mapstructure:"auth_token_ttl_hours"`
}

// ControlLoop configura o ciclo sync → propose → execute
type ControlLoop struct {
	CronSchedule            string `mapstructure:"worker_cron"`
	Enabled                 bool   `mapstructure:"worker_enabled"`
	MaxConcurrentConnectors int    `mapstructure:"worker_max_concurrent_connectors"`
	ConnectorTimeoutSeconds int    `mapstructure:"worker_connector_timeout_seconds"`
	ActionTimeoutSeconds    int    `mapstructure:"worker_action_timeout_seconds"`
	LookbackDays            int    `mapstructure:"worker_lookback_days"`
	RuleWindowDays          int    `mapstructure:"worker_rule_window_days"`
	FreshnessWarnDays       int    `mapstructure:"freshness_warn_days"`
	FetchIntraday           bool   `mapstructure:"worker_fetch_intraday"`
}

func (c ControlLoop) ConnectorTimeout() time.Duration {
	return time.Duration(c.ConnectorTimeoutSeconds) * time.Second
}

func (c ControlLoop) ActionTimeout() time.Duration {
	return time.Duration(c.ActionTimeoutSeconds) * time.Second
}

// Location devolve o fuso usado para definir "ontem" e "hoje" no ciclo
func (a App) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		logrus.WithError(err).Warnf("Fuso horário inválido: %s, usando UTC", a.Timezone)
		return time.UTC
	}
	return loc
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:4001")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/autopilot?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_IDLE_TIME", "5m")

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_APP_ID", "")
	viper.SetDefault("META_APP_SECRET", "")
	viper.SetDefault("META_REQUESTS_PER_SECOND", 2)
	viper.SetDefault("META_REQUEST_BURST", 4)
	viper.SetDefault("META_HTTP_TIMEOUT_SECONDS", 30)

	viper.SetDefault("SSOTICA_URL", "https://app.ssotica.com.br/api/v1")
	viper.SetDefault("SSOTICA_REQUESTS_PER_SECOND", 1)
	viper.SetDefault("SSOTICA_HTTP_TIMEOUT_SECONDS", 30)

	viper.SetDefault("FIXTURE_BASE_DIR", "fixtures")

	viper.SetDefault("AUTH_SECRET", "your_secret_key")
	viper.SetDefault("OPERATOR_EMAIL", "operator@localhost")
	viper.SetDefault("OPERATOR_PASSWORD_HASH", "")
	viper.SetDefault("AUTH_TOKEN_TTL_HOURS", 12)

	viper.SetDefault("EXECUTION_MODE", "manual") // manual | auto_low_risk
	viper.SetDefault("TIMEZONE", "America/Sao_Paulo")
	viper.SetDefault("STORE_DRIVER", "postgres") // postgres | memory

	// Defaults do ciclo de controle
	viper.SetDefault("WORKER_CRON", "*/5 * * * *")           // A cada 5 minutos
	viper.SetDefault("WORKER_ENABLED", false)                // Habilitar o ciclo contínuo
	viper.SetDefault("WORKER_MAX_CONCURRENT_CONNECTORS", 3)  // 3 conectores em paralelo
	viper.SetDefault("WORKER_CONNECTOR_TIMEOUT_SECONDS", 60) // Limite por chamada ao conector
	viper.SetDefault("WORKER_ACTION_TIMEOUT_SECONDS", 30)    // Limite por apply_action
	viper.SetDefault("WORKER_LOOKBACK_DAYS", 2)              // Ontem e hoje
	viper.SetDefault("WORKER_RULE_WINDOW_DAYS", 14)          // Janela lida para as regras
	viper.SetDefault("FRESHNESS_WARN_DAYS", 2)               // Dados mais velhos geram aviso
	viper.SetDefault("WORKER_FETCH_INTRADAY", false)         // Buscar métricas por hora

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if config.Meta.URL == "" {
		config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Debug("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
