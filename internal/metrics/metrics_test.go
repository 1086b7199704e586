package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { Register(reg) })

	FetchTotal.WithLabelValues("upcoming", "ok").Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(FetchTotal.WithLabelValues("upcoming", "ok")))

	// second registration on the same registry is a programming error
	assert.Panics(t, func() { Register(reg) })
}
