// Copyright (c) 2017 OysterPack, Inc.
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
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oysterpack/svcbus/cmd/demos/services/calculator"
	"github.com/oysterpack/svcbus/pkg/config"
	"github.com/oysterpack/svcbus/pkg/logging"
	"github.com/oysterpack/svcbus/pkg/metrics"
	"github.com/oysterpack/svcbus/pkg/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// ./calculator -config svcbus.yaml -log-level DEBUG -metrics-addr :9090 -a 34 -b 21
//
// The User service asks the Calculator service to add a and b, and logs the sum.
// If -serve is specified, then the services keep running until SIGINT or SIGTERM is received.
func main() {
	var configFile, logLevel, metricsAddr string
	var a, b int
	var serve bool
	flag.StringVar(&configFile, "config", "", "YAML config file")
	flag.StringVar(&logLevel, "log-level", "", "valid log levels [DEBUG,INFO,WARN,ERROR] - overrides the config")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "prometheus /metrics address - overrides the config")
	flag.IntVar(&a, "a", 34, "first operand")
	flag.IntVar(&b, "b", 21, "second operand")
	flag.BoolVar(&serve, "serve", false, "keep running until SIGINT or SIGTERM")
	flag.Parse()

	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			log.Fatal().Err(err).Msg("Failed to load config")
		}
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}

	logCloser, err := logging.Init(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logging")
	}
	defer logCloser.Close()
	logger := log.Logger

	if cfg.Metrics.Addr != "" {
		server := startMetricsServer(cfg.Metrics.Addr)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("metrics server shutdown failed")
			}
		}()
	}

	calculatorSettings := service.Settings{Logger: &logger}
	cfg.Service(calculator.CALCULATOR).Apply(&calculatorSettings)
	calc, err := calculator.NewCalculator(calculatorSettings)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Calculator")
	}

	userSettings := service.Settings{Logger: &logger}
	cfg.Service(calculator.USER).Apply(&userSettings)
	user, err := calculator.NewUser(userSettings, 1)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create User")
	}

	group := service.NewGroup(calc, user.Service)
	group.Start()
	defer group.Shutdown()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	user.AskPlusOperation(a, b)
	select {
	case sum := <-user.Sums():
		log.Info().Msgf("%d + %d = %d", sum.A, sum.B, sum.Result)
	case sig := <-sigs:
		log.Info().Msgf("received signal : %v", sig)
		return
	case <-time.After(10 * time.Second):
		log.Error().Msg("timed out waiting for the sum")
		return
	}

	if serve {
		sig := <-sigs
		log.Info().Msgf("received signal : %v", sig)
	}
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GlobalRegistry(), promhttp.HandlerOpts{
		ErrorLog:      promLogger{},
		ErrorHandling: promhttp.ContinueOnError,
	}))
	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics are exposed at /metrics")
	return server
}

// promLogger logs errors reported by the prometheus http handler
type promLogger struct{}

func (promLogger) Println(v ...interface{}) {
	log.Error().Msg(fmt.Sprint(v...))
}
