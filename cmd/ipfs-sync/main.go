package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jcaesar/ipfs-sync/internal/ipfsapi"
	isync "github.com/jcaesar/ipfs-sync/internal/sync"
	"github.com/jcaesar/ipfs-sync/internal/utils"
	"github.com/jcaesar/ipfs-sync/internal/version"
)

const (
	exitClean      = 0
	exitWithErrors = 1
	exitFatal      = 2
)

var (
	home, _          = os.UserHomeDir()
	defaultConfigDir = filepath.Join(home, ".config", "ipfs-sync")
	defaultAPIHost   = "127.0.0.1"
	defaultAPIPort   = 5001
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
)

var exitCode = exitClean

var rootCmd = &cobra.Command{
	Use:     "ipfs-sync",
	Short:   "Mirror a local directory onto an IPFS MFS path",
	Long: `ipfs-sync mirrors a local directory tree onto an MFS path of a running
IPFS daemon, uploading only entries that look changed and deleting remote
entries that no longer exist locally. Symlinks are materialized as copies
of their resolved target in a second pass.`,
	Version:       version.Detailed(),
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		setupLogging()
		return nil
	},
	RunE: run,
}

func init() {
	flags := rootCmd.Flags()
	flags.SortFlags = false
	flags.StringP("src", "s", "", "local source directory")
	flags.StringP("dst", "d", "", "destination MFS path")
	flags.StringP("api-host", "H", defaultAPIHost, "daemon API host")
	flags.IntP("api-port", "p", defaultAPIPort, "daemon API port")
	flags.StringP("flush", "f", "", "flush interval during the walk (e.g. 30s); unset means flush only at phase ends, 0 commits every write")
	flags.String("sync-from", "", "skip files unchanged since this time (@unix, RFC3339, or e.g. 'yesterday')")
	flags.String("sync-from-file", "", "file persisting the sync-from threshold between runs")
	flags.BoolP("nocopy", "l", false, "add files by filestore reference instead of copying bytes")
	flags.CountP("verbose", "v", "verbosity (repeatable)")
	flags.String("log-file", "", "also log to this file (rotated)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default "+filepath.Join(defaultConfigDir, "config.yaml")+")")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(red("Error: " + err.Error()))
		os.Exit(exitFatal)
	}
	os.Exit(exitCode)
}

func run(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	startTime := time.Now()

	nocopy := viper.GetBool("nocopy")

	// The filestore records absolute on-disk paths, so nocopy requires
	// the canonical source path.
	var src string
	var err error
	if nocopy {
		src, err = utils.CanonicalPath(viper.GetString("src"))
	} else {
		src, err = utils.ResolvePath(viper.GetString("src"))
	}
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}

	cfg := &isync.Config{
		SourceDir: src,
		DestPath:  viper.GetString("dst"),
		NoCopy:    nocopy,
	}

	var stamp *isync.StampFile
	switch {
	case viper.GetString("sync-from") != "":
		t, err := utils.ParseTimestamp(viper.GetString("sync-from"), startTime)
		if err != nil {
			return err
		}
		cfg.SyncFrom = &t
	case viper.GetString("sync-from-file") != "":
		stamp = isync.NewStampFile(viper.GetString("sync-from-file"))
		if err := stamp.Lock(); err != nil {
			return fmt.Errorf("lock stamp file: %w", err)
		}
		defer stamp.Unlock()
		t := stamp.Read()
		cfg.SyncFrom = &t
	}

	// A zero interval re-enables daemon-side autoflush (commit on every
	// write); positive intervals make the engine's scheduler the sole
	// commit cadence.
	autoFlush := false
	if raw := viper.GetString("flush"); raw != "" {
		ivl, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("parse flush interval: %w", err)
		}
		if ivl <= 0 {
			autoFlush = true
		} else {
			cfg.FlushEvery = &ivl
		}
	}

	client := ipfsapi.New(viper.GetString("api-host"), viper.GetInt("api-port"))
	defer client.Close()
	client.Files.SetAutoFlush(autoFlush)

	engine, err := isync.NewEngine(isync.NewIPFSStore(client), cfg, nil)
	if err != nil {
		return err
	}

	result, err := engine.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(green(result.RootHash))

	if result.Errors > 0 {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("completed with %d errors", result.Errors)))
		exitCode = exitWithErrors
		return nil
	}

	// Only a clean run advances the persisted threshold; anything the
	// run skipped over must be re-scanned next time.
	if stamp != nil {
		if err := stamp.Write(startTime); err != nil {
			slog.Warn("could not persist sync-from stamp", "error", err)
		}
	}

	return nil
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(defaultConfigDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	for _, name := range []string{
		"src", "dst", "api-host", "api-port", "flush",
		"sync-from", "sync-from-file", "nocopy", "verbose", "log-file",
	} {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}

	viper.SetEnvPrefix("IPFS_SYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	return nil
}

func setupLogging() {
	level := utils.VerbosityLevel(viper.GetInt("verbose"))

	handlers := []slog.Handler{
		tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
		}),
	}

	if logFile := viper.GetString("log-file"); logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		handlers = append(handlers, slog.NewTextHandler(rotator, &slog.HandlerOptions{
			Level: utils.LevelTrace,
		}))
	}

	slog.SetDefault(slog.New(utils.NewMultiLogHandler(handlers...)))
}
