/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

var flagLogJSON = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var flagLogDebug = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages, including every registration",
}
var flagLogUID = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var flagLogService = &cli.StringFlag{
	Name:  "log-service",
	Value: "locator-demo",
	Usage: "add 'service' tag to logs",
}

func main() {
	app := &cli.App{
		Name:  "locator-demo",
		Usage: "Exercise the service registry with a logger singleton and a configuration factory",
		Flags: []cli.Flag{
			flagLogJSON,
			flagLogDebug,
			flagLogUID,
			flagLogService,
		},
		Commands: []*cli.Command{
			{
				Name:  "scenario",
				Usage: "register, resolve, list and unregister the demo services step by step",
				Action: func(cCtx *cli.Context) error {
					return runScenario(cCtx.App.Writer, setupLogger(cCtx))
				},
			},
			{
				Name:  "list",
				Usage: "print the singleton and factory listings of a seeded registry",
				Action: func(cCtx *cli.Context) error {
					return runList(cCtx.App.Writer, setupLogger(cCtx))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setupLogger builds the diagnostics logger from the log-* flags.
// Logs go to stderr, listings to the app writer.
func setupLogger(cCtx *cli.Context) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cCtx.Bool(flagLogDebug.Name) {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cCtx.Bool(flagLogJSON.Name) {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler).With("service", cCtx.String(flagLogService.Name))
	if cCtx.Bool(flagLogUID.Name) {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}
