// Package logger provides the core's structured logger.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log is the package-level logger, configured once by Initialize.
var Log zerolog.Logger

// Initialize configures the global logger. pretty selects a human-readable
// console writer (development); otherwise output is JSON (production).
func Initialize(level string, pretty bool) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	}

	Log = log.With().Str("service", "hubcore").Logger()
	Log.Info().Str("level", logLevel.String()).Bool("pretty", pretty).Msg("logger initialized")
}

func component(name string) zerolog.Logger {
	return Log.With().Str("component", name).Logger()
}

// Things returns the ThingManager component logger.
func Things() *zerolog.Logger { l := component("things"); return &l }

// Rules returns the RuleEngine component logger.
func Rules() *zerolog.Logger { l := component("rules"); return &l }

// Plugins returns the PluginHost component logger.
func Plugins() *zerolog.Logger { l := component("plugins"); return &l }

// Time returns the TimeManager component logger.
func Time() *zerolog.Logger { l := component("time"); return &l }

// Store returns the PersistenceStore component logger.
func Store() *zerolog.Logger { l := component("store"); return &l }

// Notify returns the notification-bus component logger.
func Notify() *zerolog.Logger { l := component("notify"); return &l }

// Types returns the TypeRegistry component logger.
func Types() *zerolog.Logger { l := component("types"); return &l }

// Translation returns the TranslationService component logger.
func Translation() *zerolog.Logger { l := component("translation"); return &l }
