package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-normalize/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-normalize/pkg/logging"
	"github.com/ekaya-inc/ekaya-normalize/pkg/retry"
)

// StoreInfo describes a registered store backend.
type StoreInfo struct {
	Type        string   // "postgres", "sqlite", "sqlserver"
	DisplayName string   // "PostgreSQL"
	Schemes     []string // URL schemes routed to this backend
}

// StoreRegistration contains info + the factory opening a store for a URL.
type StoreRegistration struct {
	Info    StoreInfo
	Factory func(ctx context.Context, cfg *Config) (Store, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]StoreRegistration) // keyed by scheme
)

// Register is called by each backend's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg StoreRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, scheme := range reg.Info.Schemes {
		registry[scheme] = reg
	}
}

// RegisteredStores returns info for all registered backends, sorted by type.
func RegisteredStores() []StoreInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	var result []StoreInfo
	for _, reg := range registry {
		if seen[reg.Info.Type] {
			continue
		}
		seen[reg.Info.Type] = true
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// Scheme returns the lower-cased URL scheme of a connection URL.
func Scheme(rawURL string) string {
	scheme, _, ok := strings.Cut(rawURL, "://")
	if !ok {
		return ""
	}
	return strings.ToLower(scheme)
}

// GetFactory returns the factory for a connection URL.
// Returns nil if no backend handles its scheme.
func GetFactory(rawURL string) func(ctx context.Context, cfg *Config) (Store, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[Scheme(rawURL)]; ok {
		return reg.Factory
	}
	return nil
}

// OpenError reports a failed store connection. Its message is sanitized; the
// driver error stays reachable through errors.Is and errors.As.
type OpenError struct {
	URL string
	Err error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open store %s: %s", logging.SanitizeConnectionString(e.URL), logging.SanitizeError(e.Err))
}

func (e *OpenError) Unwrap() error { return e.Err }

// Open connects to the store named by cfg.URL, retrying transient connection failures.
func Open(ctx context.Context, cfg *Config, logger *zap.Logger) (Store, error) {
	factory := GetFactory(cfg.URL)
	if factory == nil {
		return nil, fmt.Errorf("%w: scheme %q in %s", apperrors.ErrUnsupportedStore,
			Scheme(cfg.URL), logging.SanitizeConnectionString(cfg.URL))
	}

	attempt := 0
	store, err := retry.DoWithResult(ctx, cfg.Retry, func() (Store, error) {
		attempt++
		s, err := factory(ctx, cfg)
		if err != nil {
			logger.Warn("Store connection attempt failed",
				zap.Int("attempt", attempt),
				zap.String("error", logging.SanitizeError(err)))
		}
		return s, err
	})
	if err != nil {
		return nil, &OpenError{URL: cfg.URL, Err: err}
	}

	logger.Info("Connected to store",
		zap.String("type", store.Dialect().Name()),
		zap.String("url", logging.SanitizeConnectionString(cfg.URL)))
	return store, nil
}
