package stream

import (
	"fmt"
	"sync"

	gferrors "github.com/vnykmshr/asyncflow/pkg/common/errors"
	"github.com/vnykmshr/asyncflow/pkg/promise"
	"go.uber.org/zap"
)

// ErrNoPromiseFactory is returned by ForEach when no promise factory can be
// resolved from the call, the global configuration or promise.Default.
var ErrNoPromiseFactory = fmt.Errorf("%w: no promise factory available", gferrors.ErrInvalidConfiguration)

// Config holds package-wide settings.
type Config struct {
	// PromiseFactory is the default factory for ForEach. If nil,
	// promise.Default is used.
	PromiseFactory promise.Factory

	// Logger receives diagnostic events. If nil, logging is disabled.
	Logger *zap.Logger
}

// DefaultConfig returns the configuration in effect before Configure is called.
func DefaultConfig() Config {
	return Config{
		Logger: zap.NewNop(),
	}
}

var (
	configMu  sync.RWMutex
	config    = DefaultConfig()
	configLog = config.Logger
)

// Configure replaces the package-wide configuration.
func Configure(c Config) {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	configMu.Lock()
	defer configMu.Unlock()
	config = c
	configLog = c.Logger.With(zap.String("component", "stream"))
}

// CurrentConfig returns the package-wide configuration.
func CurrentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return config
}

func logger() *zap.Logger {
	configMu.RLock()
	defer configMu.RUnlock()
	return configLog
}

// resolvePromiseFactory picks explicit, then configured, then ambient.
func resolvePromiseFactory(explicit promise.Factory) (promise.Factory, error) {
	if explicit != nil {
		return explicit, nil
	}
	if f := CurrentConfig().PromiseFactory; f != nil {
		return f, nil
	}
	if promise.Default != nil {
		return promise.Default, nil
	}
	return nil, ErrNoPromiseFactory
}
