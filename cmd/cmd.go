package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	profile    string
	apiURL     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "expense-tracker",
	Short:         "Expense Tracker",
	Long:          `Record expenses and income against the expense tracker API and view monthly reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = internal.ContextWithRequestID(ctx, uuid.NewString())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		stop()
		os.Exit(1)
	}
}

// describeError prefers the user facing message of an AppError.
func describeError(err error) string {
	if appErr, ok := internal.IsAppError(err); ok {
		msg := appErr.GetDetailedMessage()
		if verbose && appErr.Cause != nil {
			msg = fmt.Sprintf("%s (%v)", msg, appErr.Cause)
		}
		return "Error: " + msg
	}
	return "Error: " + err.Error()
}

func loadConfig(path string) (*internal.Config, error) {
	// .env is optional, it only seeds the environment
	_ = godotenv.Load(filepath.Join(path, ".env"))

	var cfg *internal.Config
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg = internal.LoadConfigFromEnv()
	} else {
		v := viper.New()
		setDefaults(v, internal.DefaultConfig())
		v.AddConfigPath(path)
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "expense-tracker"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.SetEnvPrefix("ENV")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}

		cfg = &internal.Config{}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("error unmarshaling config: %w", err)
		}
	}

	if profile != "" {
		cfg.Session.Profile = profile
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if verbose {
		cfg.Observability.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d internal.Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.validate_contract", d.API.ValidateContract)
	v.SetDefault("api.strict_contract", d.API.StrictContract)

	v.SetDefault("session.driver", d.Session.Driver)
	v.SetDefault("session.dsn", d.Session.DSN)
	v.SetDefault("session.profile", d.Session.Profile)
	v.SetDefault("session.encryption_key", d.Session.EncryptionKey)
	v.SetDefault("session.max_open_conns", d.Session.MaxOpenConns)
	v.SetDefault("session.max_idle_conns", d.Session.MaxIdleConns)
	v.SetDefault("session.conn_max_lifetime", d.Session.ConnMaxLifetime)

	v.SetDefault("http_server.port", d.Server.Port)
	v.SetDefault("http_server.read_header_timeout", d.Server.ReadHeaderTimeout)
	v.SetDefault("http_server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("http_server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("http_server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("display.timezone", d.Display.Timezone)

	v.SetDefault("observability.logging.level", d.Observability.Logging.Level)
	v.SetDefault("observability.logging.format", d.Observability.Logging.Format)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory holding config.yml and .env")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "session profile, for keeping several logins apart")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "expense API base url, overrides api.base_url")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging and detailed errors")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, statusCmd)
	rootCmd.AddCommand(expenseCmd, salaryCmd, categoriesCmd, reportCmd)
	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(contractCmd)
}
