package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/epeers/refsync/internal/models"
)

func TestWarningCollector(t *testing.T) {
	ctx, wc := NewWarningContext(context.Background())

	Warnf(ctx, models.WarnUnconsumedSplits, "TST ends %s", "2023-03-01")
	Warnf(ctx, models.WarnUnconsumedSplits, "TST ends %s", "2023-03-01")
	AddWarning(ctx, models.Warning{Code: models.WarnMalformedSplitText, Message: "bad ratio"})

	assert.Equal(t, []string{"W2001: TST ends 2023-03-01", "W3001: bad ratio"}, wc.Messages())

	got := wc.GetWarnings()
	got[0].Message = "changed"
	assert.Equal(t, "TST ends 2023-03-01", wc.GetWarnings()[0].Message)
}

func TestAddWarningWithoutCollector(t *testing.T) {
	assert.NotPanics(t, func() {
		AddWarning(context.Background(), models.Warning{Code: models.WarnUnconsumedSplits, Message: "dropped"})
	})
}

func TestWarningCollectorConcurrent(t *testing.T) {
	ctx, wc := NewWarningContext(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Warnf(ctx, models.WarnMalformedSplitText, "ratio %d", n%5)
		}(i)
	}
	wg.Wait()

	assert.Len(t, wc.GetWarnings(), 5)
}
