package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/laresh1090/pennivault/internal/calculation"
	"github.com/laresh1090/pennivault/internal/config"
	"github.com/laresh1090/pennivault/internal/domain"
	"github.com/laresh1090/pennivault/internal/ledger"
	"github.com/laresh1090/pennivault/internal/output"
	"github.com/laresh1090/pennivault/internal/server"
	"github.com/laresh1090/pennivault/internal/store"
	"github.com/laresh1090/pennivault/internal/tui"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pennivault",
	Short: "PenniVault savings and payment calculation engine",
	Long:  "Deterministic calculation engine for installment purchases, fixed-term locks, savings goals and rotating Ajo groups",
}

func loadEngine() *calculation.Engine {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	engine, err := calculation.NewEngine(cfg)
	if err != nil {
		log.Fatal(err)
	}
	return engine
}

func mustDecimal(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		log.Fatalf("invalid amount %q: %v", s, err)
	}
	return v
}

var quoteCmd = &cobra.Command{
	Use:   "quote [price]",
	Short: "Quote an installment purchase",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine := loadEngine()
		price := mustDecimal(args[0])
		upfront, _ := cmd.Flags().GetString("upfront")
		termMonths, _ := cmd.Flags().GetInt("term")
		format, _ := cmd.Flags().GetString("format")

		breakdown, err := engine.QuoteInstallment(price, mustDecimal(upfront), termMonths)
		if err != nil {
			log.Fatal(err)
		}
		ladder, err := engine.LadderFor(breakdown, time.Now().UTC(), termMonths)
		if err != nil {
			log.Fatal(err)
		}

		rendered, err := output.RenderQuote(breakdown, ladder, format)
		if err != nil {
			log.Fatal(err)
		}
		os.Stdout.Write(rendered)
	},
}

var lockQuoteCmd = &cobra.Command{
	Use:   "lock-quote [principal]",
	Short: "Quote a fixed-term savings lock",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine := loadEngine()
		days, _ := cmd.Flags().GetInt("days")
		mode, _ := cmd.Flags().GetString("mode")
		format, _ := cmd.Flags().GetString("format")

		quote, err := engine.QuoteLock(domain.LockParameters{
			Principal:    mustDecimal(args[0]),
			DurationDays: days,
			InterestMode: domain.InterestMode(mode),
			StartDate:    time.Now().UTC(),
		})
		if err != nil {
			log.Fatal(err)
		}

		rendered, err := output.RenderLockQuote(quote, format)
		if err != nil {
			log.Fatal(err)
		}
		os.Stdout.Write(rendered)
	},
}

var goalCmd = &cobra.Command{
	Use:   "goal [contribution] [target]",
	Short: "Project time to reach a savings target",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		engine := loadEngine()
		frequency, _ := cmd.Flags().GetString("frequency")
		format, _ := cmd.Flags().GetString("format")

		projection, err := engine.ProjectGoal(mustDecimal(args[0]), mustDecimal(args[1]), domain.Frequency(frequency))
		if err != nil {
			log.Fatal(err)
		}

		rendered, err := output.RenderGoal(projection, format)
		if err != nil {
			log.Fatal(err)
		}
		os.Stdout.Write(rendered)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate a product catalog file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := config.Load(args[0]); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Catalog %s is valid\n", args[0])
	},
}

var exampleCmd = &cobra.Command{
	Use:   "example [output-file]",
	Short: "Write an example product catalog",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.WriteExample(args[0]); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Example catalog saved to %s\n", args[0])
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculation engine over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		dbPath, _ := cmd.Flags().GetString("db")

		logger, err := zap.NewProduction()
		if err != nil {
			log.Fatal(err)
		}
		defer logger.Sync()

		storage, err := store.NewSQLiteStore(dbPath)
		if err != nil {
			logger.Fatal("failed to open store", zap.Error(err))
		}
		defer storage.Close()

		l := ledger.NewLedger(storage, loadEngine(), nil, logger)
		srv := server.NewServer(l, logger)

		logger.Info("server starting", zap.String("addr", addr), zap.String("db", dbPath))
		if err := http.ListenAndServe(addr, srv.Router()); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	},
}

var advanceRoundsCmd = &cobra.Command{
	Use:   "advance-rounds",
	Short: "Sweep due groups, matured locks and overdue payments",
	Long:  "Run once per settlement window from an external scheduler: advances every fully-paid group round, settles matured locks and flags overdue installment payments",
	Run: func(cmd *cobra.Command, args []string) {
		dbPath, _ := cmd.Flags().GetString("db")

		logger, err := zap.NewProduction()
		if err != nil {
			log.Fatal(err)
		}
		defer logger.Sync()

		storage, err := store.NewSQLiteStore(dbPath)
		if err != nil {
			logger.Fatal("failed to open store", zap.Error(err))
		}
		defer storage.Close()

		l := ledger.NewLedger(storage, loadEngine(), nil, logger)
		ctx := context.Background()
		now := time.Now().UTC()

		advanced, err := l.AdvanceDueGroups(ctx)
		if err != nil {
			logger.Fatal("group sweep failed", zap.Error(err))
		}
		matured, err := l.MatureDueLocks(ctx, now)
		if err != nil {
			logger.Fatal("lock sweep failed", zap.Error(err))
		}
		if err := l.MarkOverduePayments(now); err != nil {
			logger.Fatal("overdue sweep failed", zap.Error(err))
		}
		logger.Info("sweep complete", zap.Int("rounds_advanced", advanced), zap.Int("locks_matured", matured))
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Explore installment quotes interactively",
	Run: func(cmd *cobra.Command, args []string) {
		if err := tui.Run(loadEngine()); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Product catalog file (built-in defaults when empty)")

	quoteCmd.Flags().StringP("upfront", "u", "40", "Upfront percent of the item price")
	quoteCmd.Flags().IntP("term", "t", 6, "Term in months")
	quoteCmd.Flags().StringP("format", "f", "console", "Output format (console, json, csv)")

	lockQuoteCmd.Flags().IntP("days", "d", 90, "Lock duration in days")
	lockQuoteCmd.Flags().StringP("mode", "m", "maturity", "Interest mode (upfront, maturity)")
	lockQuoteCmd.Flags().StringP("format", "f", "console", "Output format (console, json)")

	goalCmd.Flags().StringP("frequency", "q", "monthly", "Contribution frequency (daily, weekly, monthly)")
	goalCmd.Flags().StringP("format", "f", "console", "Output format (console, json)")

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("db", "pennivault.db", "SQLite database path")

	advanceRoundsCmd.Flags().String("db", "pennivault.db", "SQLite database path")

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(lockQuoteCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exampleCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(advanceRoundsCmd)
	rootCmd.AddCommand(tuiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
