package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version = "0.1.0"
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "memecap",
	Short: "Image pipeline for meme sources",
	Long: `memecap fetches source images (files, URLs or composites such as
"a.jpg|b.jpg" and "a.jpg[]b.jpg"), normalizes them, renders a square
thumbnail and a watermarked main image, and optionally draws captions
using the first catalog font that covers every character.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file path (e.g. memecap.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringP("profile", "p", "default", "size policy profile ("+strings.Join(profileNames(), ", ")+")")
	pf.String("fonts-dir", "fonts", "directory of .ttf caption fonts")
	pf.String("watermark", "", "watermark image (default: built-in text mark)")
	pf.Int("quality", 0, "encoding quality 1-100 (0 = profile default)")
	pf.Duration("fetch-timeout", 0, "per-source fetch timeout (0 = profile default)")

	mustBindPFlag("profile", pf.Lookup("profile"))
	mustBindPFlag("fonts_dir", pf.Lookup("fonts-dir"))
	mustBindPFlag("watermark", pf.Lookup("watermark"))
	mustBindPFlag("quality", pf.Lookup("quality"))
	mustBindPFlag("fetch_timeout", pf.Lookup("fetch-timeout"))

	viper.SetDefault("user_agent", "memecap/"+version)
	viper.SetDefault("caption_after_watermark", false)

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"memecap %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

// initConfig reads in the config file and MEMECAP_* environment
// variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("memecap")
	}

	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("MEMECAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file [%s]: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

// newLogger builds the console logger shared by every command.
func newLogger() *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Named("memecap")
}
