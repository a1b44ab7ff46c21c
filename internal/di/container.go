package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/weedbox/emailstore"
	"github.com/weedbox/emailstore/internal/config"
	"github.com/weedbox/emailstore/internal/factory"
	"github.com/weedbox/emailstore/internal/logging"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	return build(config.New)
}

// BuildContainerWithConfig creates a container around an existing configuration
func BuildContainerWithConfig(cfg *config.Config) (*dig.Container, error) {
	return build(func() *config.Config { return cfg })
}

func build(configProvider any) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(configProvider); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) (config.SpamConfig, error) {
		return cfg.GetSpam()
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register email repository
	if err := container.Provide(factory.NewRepositoryFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.RepositoryFactory) (emailstore.EmailRepository, error) {
		return f.CreateEmailRepository()
	}); err != nil {
		return nil, err
	}

	// Register filter addresses
	if err := container.Provide(func(spamCfg config.SpamConfig, logger *zap.Logger) *emailstore.FilterSet {
		filters := emailstore.NewFilterSet()
		for _, address := range spamCfg.FilterAddresses {
			filters.Add(emailstore.EmailAddress{Address: address})
		}
		if filters.Len() > 0 {
			logger.Info("Loaded filter addresses", zap.Strings("addresses", spamCfg.FilterAddresses))
		}
		return filters
	}); err != nil {
		return nil, err
	}

	// Register services
	if err := container.Provide(emailstore.NewSpamClassifier); err != nil {
		return nil, err
	}

	return container, nil
}
