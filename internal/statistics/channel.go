package statistics

import (
	"github.com/dynfan/dynfan/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
)

const channelSubsystem = "channel"

// StatusSource yields the state of the most recent loop iteration.
type StatusSource interface {
	Status() controller.Status
}

type ChannelCollector struct {
	source  StatusSource
	percent *prometheus.Desc
	bits    *prometheus.Desc
}

func NewChannelCollector(source StatusSource) *ChannelCollector {
	return &ChannelCollector{
		source: source,
		percent: prometheus.NewDesc(prometheus.BuildFQName(namespace, channelSubsystem, "percent"),
			"Last applied speed of the fan channel in percent",
			[]string{"id"}, nil,
		),
		bits: prometheus.NewDesc(prometheus.BuildFQName(namespace, channelSubsystem, "bits"),
			"Last applied duty cycle of the fan channel in bits",
			[]string{"id"}, nil,
		),
	}
}

func (collector *ChannelCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.percent
	ch <- collector.bits
}

func (collector *ChannelCollector) Collect(ch chan<- prometheus.Metric) {
	status := collector.source.Status()
	for _, channel := range status.Channels {
		ch <- prometheus.MustNewConstMetric(collector.percent, prometheus.GaugeValue, float64(channel.Percent), channel.ID)
		ch <- prometheus.MustNewConstMetric(collector.bits, prometheus.GaugeValue, float64(channel.Bits), channel.ID)
	}
}
