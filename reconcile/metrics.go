package reconcile

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "vault"
	subsystem = "reconcile"
)

var (
	recordedBalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recorded_balance",
		Help:      "the balance recorded by the vault",
	})

	custodyBalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "custody_balance",
		Help:      "the amount of tokens held by the vault contract",
	})

	deficitBalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "deficit",
		Help:      "the part of the recorded balance not backed by custody",
	})

	checkErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "check_errors_total",
		Help:      "the number of failed reconciliation checks",
	})
)

// RegisterMetrics registers reconciliation metrics. Checker exports them only
// if Prm.Metrics is set.
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		recordedBalance,
		custodyBalance,
		deficitBalance,
		checkErrors,
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func exportReport(rep Report) {
	recordedBalance.Set(toFloat(rep.Recorded))
	custodyBalance.Set(toFloat(rep.Custody))
	deficitBalance.Set(toFloat(rep.Deficit()))
}

func toFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
