// Package esindex talks to a GrimoireLab-style Elasticsearch enriched index.
package esindex

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/devtrends/turnover/internal/config"
	"github.com/devtrends/turnover/internal/errors"
)

// Index is the enriched git index queried for author activity.
const Index = "git"

// Client wraps the Elasticsearch client for read-only queries
type Client struct {
	es  *elasticsearch.Client
	log *logrus.Logger
}

// NewClient creates a client from the [ElasticSearch] settings section
func NewClient(cfg config.ElasticSearch, log *logrus.Logger) (*Client, error) {
	return New(cfg.URL(), log)
}

// New creates a client for the given server address
func New(address string, log *logrus.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{address},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create index client")
	}
	return &Client{es: es, log: log}, nil
}
