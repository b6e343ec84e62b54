package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shijin/IDALSCustomerCareAgent/internal/profile"
	"github.com/shijin/IDALSCustomerCareAgent/internal/version"
	"github.com/shijin/IDALSCustomerCareAgent/server"
	"github.com/shijin/IDALSCustomerCareAgent/store"
	"github.com/shijin/IDALSCustomerCareAgent/store/db"
)

var (
	rootCmd = &cobra.Command{
		Use:   "idals-agent",
		Short: `Customer care agent for the IDALS program. Routes chat queries through escalation detection, intent classification, and FAQ-grounded answering.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Only load .env for direct binary execution (not when running as systemd service)
			if !isRunningAsSystemdService() {
				_ = godotenv.Load()
			}
			return nil
		},
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile := &profile.Profile{
				Mode:    viper.GetString("mode"),
				Addr:    viper.GetString("addr"),
				Port:    viper.GetInt("port"),
				Data:    viper.GetString("data"),
				Driver:  viper.GetString("driver"),
				DSN:     viper.GetString("dsn"),
				Version: version.GetCurrentVersion(viper.GetString("mode")),
			}
			instanceProfile.FromEnv()
			if dataset := viper.GetString("dataset"); dataset != "" {
				instanceProfile.DatasetPath = dataset
			}
			if err := instanceProfile.Validate(); err != nil {
				panic(err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			dbDriver, err := db.NewDBDriver(instanceProfile)
			if err != nil {
				cancel()
				slog.Error("failed to create db driver", "error", err)
				return
			}

			storeInstance := store.New(dbDriver, instanceProfile)
			if err := storeInstance.Migrate(ctx); err != nil {
				cancel()
				slog.Error("failed to migrate", "error", err)
				return
			}

			agentRouter, exporter, err := buildAgent(ctx, instanceProfile, storeInstance, dbDriver)
			if err != nil {
				cancel()
				slog.Error("failed to build agent", "error", err)
				return
			}

			channelRouter := buildChannels(instanceProfile)

			s, err := server.NewServer(ctx, instanceProfile, storeInstance, agentRouter, exporter, channelRouter)
			if err != nil {
				cancel()
				slog.Error("failed to create server", "error", err)
				return
			}

			c := make(chan os.Signal, 1)
			// SIGTERM is the graceful shutdown signal used by most
			// process managers (systemd, Kubernetes).
			signal.Notify(c, terminationSignals...)

			go func() {
				<-c
				s.Shutdown(ctx)
				cancel()
			}()

			printGreetings(instanceProfile)

			if err := s.Start(ctx); err != nil {
				if !errors.Is(err, http.ErrServerClosed) {
					slog.Error("failed to start server", "error", err)
					cancel()
				}
			}

			<-ctx.Done()
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 28090)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 28090, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("dataset", "", "path to the FAQ dataset CSV")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "dataset"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("idals")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("IDALS Agent %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Data directory: %s\n", profile.Data)
	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("FAQ dataset: %s\n", profile.DatasetPath)
	fmt.Printf("Mode: %s\n", profile.Mode)

	if len(profile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
	}

	if !profile.IsAIEnabled() {
		fmt.Fprintln(os.Stderr, "Warning: no LLM API key configured; queries will fail over to human escalation")
	}
}

// isRunningAsSystemdService detects if the process is running under systemd.
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
