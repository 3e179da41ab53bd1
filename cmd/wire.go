package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/pnr-status-cli/internal/adapters/lookup/table"
	"github.com/bnema/pnr-status-cli/internal/adapters/messages/inbox"
	"github.com/bnema/pnr-status-cli/internal/adapters/messages/memory"
	natssource "github.com/bnema/pnr-status-cli/internal/adapters/messages/nats"
	promrecorder "github.com/bnema/pnr-status-cli/internal/adapters/metrics/prometheus"
	statusadapter "github.com/bnema/pnr-status-cli/internal/adapters/render/status"
	"github.com/bnema/pnr-status-cli/internal/config"
	"github.com/bnema/pnr-status-cli/internal/domain"
	"github.com/bnema/pnr-status-cli/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var errNoMessageSource = errors.New("no message source configured; set messages.source to nats or inbox")

type app struct {
	cfg            config.Config
	provider       *table.Table
	recordRenderer func(domain.Record) (string, error)
	logger         *zap.Logger
}

func wireApp() (*app, error) {
	v := viper.New()
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	provider, err := table.Load(v)
	if err != nil {
		return nil, fmt.Errorf("wire lookup table: %w", err)
	}

	return &app{
		cfg:            cfg,
		provider:       provider,
		recordRenderer: statusadapter.Render,
		logger:         zap.NewNop(),
	}, nil
}

// messageSource opens the configured source. The returned close func is
// always safe to call.
func (a *app) messageSource() (ports.MessageSource, func(), error) {
	switch a.cfg.Source {
	case config.SourceNATS:
		src, err := natssource.Connect(a.cfg.NATSURL, a.cfg.NATSSubject)
		if err != nil {
			return nil, func() {}, fmt.Errorf("wire nats message source: %w", err)
		}
		return src, func() { _ = src.Close() }, nil
	case config.SourceInbox:
		return inbox.New(a.cfg.InboxDir), func() {}, nil
	default:
		return memory.New(), func() {}, nil
	}
}

// metrics registers the tracker collectors and, when metrics.addr is set,
// serves them until the returned stop func runs.
func (a *app) metrics(logger *zap.Logger) (ports.Metrics, func(), error) {
	if a.cfg.MetricsAddr == "" {
		return ports.NopMetrics{}, func() {}, nil
	}

	reg := prometheus.NewRegistry()
	recorder, err := promrecorder.NewRecorder(reg)
	if err != nil {
		return nil, func() {}, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", a.cfg.MetricsAddr))

	return recorder, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}
