package logger

import "go.uber.org/zap"

// New builds the production logger. It is constructed once in main and
// passed down explicitly; no package keeps a global.
func New(service string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("service", service)), nil
}
