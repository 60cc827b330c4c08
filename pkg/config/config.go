package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jhoicas/nfse-api/internal/domain"
)

// Drivers de almacenamiento soportados.
const (
	StoreSupabase = "supabase" // PostgREST vía SUPABASE_URL + service role key
	StorePostgres = "postgres" // conexión directa con pgx (DATABASE_URL o DB_*)
	StoreMemory   = "memory"   // solo desarrollo local: nada persiste
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
// Se construye una sola vez en main y se pasa por valor/puntero a cada componente.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Store    string
	Supabase SupabaseConfig
	DB       DBConfig
	Enotas   EnotasConfig
	Webhook  WebhookConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SupabaseConfig acceso al proyecto Supabase.
type SupabaseConfig struct {
	URL            string // https://<ref>.supabase.co
	ServiceRoleKey string // clave privilegiada; nunca se expone al dashboard
	JWTSecret      string // firma HS256 de los access tokens del dashboard
}

// RESTURL devuelve la base de PostgREST (<url>/rest/v1).
func (c SupabaseConfig) RESTURL() string {
	return strings.TrimRight(c.URL, "/") + "/rest/v1"
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo (ej. DATABASE_URL de Supabase).
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// EnotasConfig cliente del gateway de NFS-e.
type EnotasConfig struct {
	APIURL       string
	APIKey       string
	WebhookURL   string // URL pública de este servicio que se registra en eNotas
	WebhookToken string // secreto opcional esperado en ?token=
}

// WebhookConfig opciones de la reconciliación de eventos.
type WebhookConfig struct {
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RequireMatch     bool // cero filas afectadas = error (el gateway reenvía)
	NotifyUsers      bool
	SaveEventLog     bool
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. No valida: ver Validate.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "nfse-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Store: strings.ToLower(getString(v, "STORE_DRIVER", StoreSupabase)),
		Supabase: SupabaseConfig{
			URL:            getString(v, "SUPABASE_URL", ""),
			ServiceRoleKey: getString(v, "SUPABASE_SERVICE_ROLE_KEY", ""),
			JWTSecret:      getString(v, "SUPABASE_JWT_SECRET", ""),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "postgres"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Enotas: EnotasConfig{
			APIURL:       getString(v, "ENOTAS_API_URL", "https://api.enotasgw.com.br/v1"),
			APIKey:       getString(v, "ENOTAS_API_KEY", ""),
			WebhookURL:   getString(v, "ENOTAS_WEBHOOK_URL", ""),
			WebhookToken: getString(v, "ENOTAS_WEBHOOK_TOKEN", ""),
		},
		Webhook: WebhookConfig{
			RetryMaxAttempts: getInt(v, "WEBHOOK_RETRY_MAX_ATTEMPTS", 3),
			RetryBaseDelay:   time.Duration(getInt(v, "WEBHOOK_RETRY_BASE_DELAY_MS", 1000)) * time.Millisecond,
			RequireMatch:     getBool(v, "WEBHOOK_REQUIRE_MATCH", true),
			NotifyUsers:      getBool(v, "WEBHOOK_NOTIFY_USERS", true),
			SaveEventLog:     getBool(v, "WEBHOOK_SAVE_EVENT_LOG", true),
		},
	}
	return cfg, nil
}

// Validate revisa las claves obligatorias para el driver de almacenamiento elegido.
// Devuelve *domain.ConfigurationError con todas las claves ausentes.
func (c *Config) Validate() error {
	var missing []string
	switch c.Store {
	case StoreSupabase:
		if c.Supabase.URL == "" {
			missing = append(missing, "SUPABASE_URL")
		}
		if c.Supabase.ServiceRoleKey == "" {
			missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
		}
	case StorePostgres:
		if c.DB.DatabaseURL == "" && c.DB.Password == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreMemory:
	default:
		return &domain.ConfigurationError{Keys: []string{"STORE_DRIVER=" + c.Store}}
	}
	if len(missing) > 0 {
		return &domain.ConfigurationError{Keys: missing}
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(v.GetString(key))
		if err != nil {
			return def
		}
		return b
	}
	return def
}
