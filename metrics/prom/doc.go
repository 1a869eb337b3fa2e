// Package prom exports hfabric operation metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	hf, _ := hfabric.Open(ctx, src, hfabric.WithMetricsCollector(prom.New(reg)))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom
