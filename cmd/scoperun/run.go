package main

import (
	"fmt"
	"os"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	scopes "github.com/goliatone/go-scopes"
	"github.com/goliatone/go-scopes/gojahost"
)

var runCmd = &cobra.Command{
	Use:   "run <script.js>",
	Short: "Evaluate a script inside a scoped isolate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if cfg.LogLevel != "" && !cmd.Flags().Changed("log-level") {
			if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
				zerolog.SetGlobalLevel(level)
			}
		}

		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("scoperun: reading %s: %w", args[0], err)
		}

		rt := gojahost.New()
		iso := scopes.NewIsolate(rt, scopes.WithLogger(log.Logger))
		defer iso.Dispose()

		hs := iso.NewHandleScope()
		defer hs.Release()

		cs := hs.NewContextScope(rt.NewContext(cfg.Context, cfg.Globals))
		defer cs.Release()

		tc := cs.NewTryCatch()
		defer tc.Release()

		raw, evalErr := rt.Eval(args[0], string(src))
		if tc.HasCaught() {
			msg, _ := tc.Message()
			log.Error().Str("script", args[0]).Str("context", cfg.Context).Msg("script threw")
			return fmt.Errorf("scoperun: %s: uncaught exception: %s", args[0], msg)
		}
		if evalErr != nil {
			return evalErr
		}

		result := tc.NewLocal(raw)
		fmt.Println(result.Value().(goja.Value).String())
		return nil
	},
}
