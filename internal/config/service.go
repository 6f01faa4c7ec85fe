package config

import "github.com/caarlos0/env/v11"

// ServiceConfig is the application-level configuration for the long-running
// processes (search API, crawl manager, queue workers): connection strings
// and worker counts, loaded from the environment exactly the way the
// teacher's pack-mate lueurxax/telegram-digest-bot loads its service
// config, via caarlos0/env struct tags.
type ServiceConfig struct {
	DocumentStoreDSN string `env:"DOCUMENT_STORE_DSN,required"`
	FullTextIndexURI string `env:"FULLTEXT_INDEX_URI" envDefault:"127.0.0.1:6379"`
	FullTextIndexName string `env:"FULLTEXT_INDEX_NAME" envDefault:"search_index"`
	FullTextKeyPrefix string `env:"FULLTEXT_KEY_PREFIX" envDefault:"doc:"`
	QueueRedisURI    string `env:"QUEUE_REDIS_URI" envDefault:"127.0.0.1:6379"`

	WorkerCount   int    `env:"WORKER_COUNT" envDefault:"4"`
	TemplatesPath string `env:"TEMPLATES_PATH" envDefault:""`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
}

// LoadServiceConfig parses the process environment into a ServiceConfig.
func LoadServiceConfig() (*ServiceConfig, error) {
	cfg := &ServiceConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
