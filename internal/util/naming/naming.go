package naming

import "fmt"

// Prefix is prepended to every resource name.
const Prefix = "psc"

// Naming functions for chain resources.
// Names are stable across process restarts; do not add random suffixes here.

func HealthCheck(cluster string) string {
	return resource(cluster, "hc")
}

func BackendService(cluster string) string {
	return resource(cluster, "bs")
}

func ForwardingRule(cluster string) string {
	return resource(cluster, "ilb")
}

func ServiceAttachment(cluster string) string {
	return resource(cluster, "sa")
}

func ConsumerEndpoint(cluster string) string {
	return resource(cluster, "ep")
}

func DNSZone(cluster string) string {
	return resource(cluster, "dns")
}

func Firewall(cluster string) string {
	return resource(cluster, "fw")
}

// DNSDomain is the private zone used when a request does not name one.
func DNSDomain(cluster string) string {
	return fmt.Sprintf("%s.psclink.internal.", cluster)
}

// Object layout of persisted records: RecordPrefix + cluster + "/" + RecordFile.
const (
	RecordPrefix = "clusters/"
	RecordFile   = "records.json"
)

// RecordObject is the object key holding a cluster's resource records.
func RecordObject(cluster string) string {
	return RecordPrefix + cluster + "/" + RecordFile
}

func resource(cluster, suffix string) string {
	return fmt.Sprintf("%s-%s-%s", Prefix, cluster, suffix)
}
