package lconfig

// PodInfo identifies the running pod; logged at startup.
type PodInfo struct {
	Cluster           string `env:"POD_CLUSTER"`
	MonitoringCluster string `env:"POD_MONITORING_CLUSTER"`
	LoggingCluster    string `env:"POD_LOGGING_CLUSTER"`
	Namespace         string `env:"POD_NAMESPACE"`
	Name              string `env:"POD_NAME"`
}
