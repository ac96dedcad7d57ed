// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorse-io/cinerank/base/log"
	"github.com/gorse-io/cinerank/cmd/version"
	"github.com/gorse-io/cinerank/config"
	"github.com/gorse-io/cinerank/server"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var rootCommand = &cobra.Command{
	Use:   "cinerank",
	Short: "Movie ranking service backed by a latent factor model.",
	Run: func(cmd *cobra.Command, args []string) {
		// Show version
		if showVersion, _ := cmd.PersistentFlags().GetBool("version"); showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		// setup logger
		debug, _ := cmd.PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.PersistentFlags(), debug)
		defer func() {
			_ = log.Logger().Sync()
		}()

		// Create server
		configPath, _ := cmd.PersistentFlags().GetString("config")
		log.Logger().Info("load config", zap.String("config", configPath))
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
		// Setup tracing
		tracerProvider, err := conf.Tracing.NewTracerProvider()
		if err != nil {
			log.Logger().Fatal("failed to create trace provider", zap.Error(err))
		}
		otel.SetTracerProvider(tracerProvider)
		otel.SetErrorHandler(log.GetErrorHandler())
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

		s, err := server.NewServer(conf)
		if err != nil {
			log.Logger().Fatal("failed to create server", zap.Error(err))
		}
		// Stop server
		done := make(chan struct{})
		go func() {
			sigint := make(chan os.Signal, 1)
			signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
			<-sigint
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.Shutdown(ctx); err != nil {
				log.Logger().Error("failed to shutdown server", zap.Error(err))
			}
			if provider, ok := tracerProvider.(*tracesdk.TracerProvider); ok {
				if err := provider.Shutdown(ctx); err != nil {
					log.Logger().Error("failed to flush traces", zap.Error(err))
				}
			}
			close(done)
		}()
		// Start server
		if err = s.Serve(); err != nil {
			log.Logger().Fatal("failed to start server", zap.Error(err))
		}
		<-done
		log.Logger().Info("stop cinerank successfully")
	},
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.PersistentFlags().BoolP("version", "v", false, "cinerank version")
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
