package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const temperatureSubsystem = "temperature"

type TemperatureCollector struct {
	source   StatusSource
	value    *prometheus.Desc
	forecast *prometheus.Desc
	target   *prometheus.Desc
}

func NewTemperatureCollector(source StatusSource) *TemperatureCollector {
	return &TemperatureCollector{
		source: source,
		value: prometheus.NewDesc(prometheus.BuildFQName(namespace, temperatureSubsystem, "value"),
			"Current temperature reading in °C",
			[]string{"source"}, nil,
		),
		forecast: prometheus.NewDesc(prometheus.BuildFQName(namespace, temperatureSubsystem, "forecast"),
			"Forecast temperature at the prediction horizon in °C",
			[]string{"source"}, nil,
		),
		target: prometheus.NewDesc(prometheus.BuildFQName(namespace, temperatureSubsystem, "target"),
			"Computed target speed in percent",
			[]string{"group"}, nil,
		),
	}
}

func (collector *TemperatureCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.value
	ch <- collector.forecast
	ch <- collector.target
}

func (collector *TemperatureCollector) Collect(ch chan<- prometheus.Metric) {
	status := collector.source.Status()
	ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, status.CpuTemp, "cpu")
	ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, status.GpuTemp, "gpu")
	ch <- prometheus.MustNewConstMetric(collector.forecast, prometheus.GaugeValue, status.CpuForecast, "cpu")
	ch <- prometheus.MustNewConstMetric(collector.forecast, prometheus.GaugeValue, status.GpuForecast, "gpu")
	ch <- prometheus.MustNewConstMetric(collector.target, prometheus.GaugeValue, float64(status.SystemTarget), "system")
	ch <- prometheus.MustNewConstMetric(collector.target, prometheus.GaugeValue, float64(status.GpuTarget), "gpu")
}
