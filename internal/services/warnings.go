package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/epeers/refsync/internal/models"
)

type warningsKey struct{}

// WarningCollector gathers non-fatal problems raised while serving one request.
// Repeats of the same code and message are kept once.
type WarningCollector struct {
	mu       sync.Mutex
	seen     map[models.Warning]bool
	warnings []models.Warning
}

// NewWarningContext attaches an empty collector to ctx and returns both.
func NewWarningContext(ctx context.Context) (context.Context, *WarningCollector) {
	wc := &WarningCollector{seen: make(map[models.Warning]bool)}
	return context.WithValue(ctx, warningsKey{}, wc), wc
}

// AddWarning records w on the collector carried by ctx, if any.
func AddWarning(ctx context.Context, w models.Warning) {
	wc, _ := ctx.Value(warningsKey{}).(*WarningCollector)
	if wc == nil {
		return
	}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	if wc.seen[w] {
		return
	}
	wc.seen[w] = true
	wc.warnings = append(wc.warnings, w)
}

// Warnf formats a message and records it under code.
func Warnf(ctx context.Context, code models.WarningCode, format string, args ...any) {
	AddWarning(ctx, models.Warning{Code: code, Message: fmt.Sprintf(format, args...)})
}

// GetWarnings returns a copy of the collected warnings in the order raised.
func (wc *WarningCollector) GetWarnings() []models.Warning {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	out := make([]models.Warning, len(wc.warnings))
	copy(out, wc.warnings)
	return out
}

// Messages renders each warning as "CODE: message".
func (wc *WarningCollector) Messages() []string {
	var out []string
	for _, w := range wc.GetWarnings() {
		out = append(out, string(w.Code)+": "+w.Message)
	}
	return out
}
