// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/sirupsen/logrus"
	"gopkg.in/go-extras/elogrus.v7"
)

// Options controls logger construction.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or text
	// Service tags every shipped entry.
	Service string

	// LogstashAddr is a host:port reached over UDP. Empty disables shipping.
	LogstashAddr string

	// ElasticURL and ElasticIndex enable the async Elasticsearch hook.
	ElasticURL   string
	ElasticIndex string

	Output io.Writer
}

// New returns a configured logger. Hooks that cannot reach their backend are
// skipped with a warning so a missing log sink never stops the service.
func New(opts Options) *logrus.Logger {
	logger := logrus.New()
	logger.Out = os.Stdout
	if opts.Output != nil {
		logger.Out = opts.Output
	}

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	service := opts.Service
	if service == "" {
		service = "daypilot"
	}

	if opts.LogstashAddr != "" {
		if hook, err := logstashHook(opts.LogstashAddr, service); err != nil {
			logger.WithError(err).Warn("logstash hook disabled")
		} else {
			logger.Hooks.Add(hook)
		}
	}

	if opts.ElasticURL != "" {
		if hook, err := elasticHook(opts.ElasticURL, opts.ElasticIndex, service, level); err != nil {
			logger.WithError(err).Warn("elasticsearch hook disabled")
		} else {
			logger.Hooks.Add(hook)
		}
	}

	return logger
}

func logstashHook(addr, service string) (logrus.Hook, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial logstash %s: %w", addr, err)
	}
	return logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": service})), nil
}

func elasticHook(url, index, service string, level logrus.Level) (logrus.Hook, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	if index == "" {
		index = service
	}
	hook, err := elogrus.NewAsyncElasticHook(client, service, level, index)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch hook: %w", err)
	}
	return hook, nil
}
