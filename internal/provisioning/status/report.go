package status

import (
	"encoding/json"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/imamik/psclink/internal/provisioning"
)

// Report is the externally visible status of one cluster id.
type Report struct {
	ClusterID  string                        `json:"clusterId"`
	Generation int64                         `json:"generation"`
	Conditions []metav1.Condition            `json:"conditions,omitempty"`
	Records    []provisioning.ResourceRecord `json:"records,omitempty"`
	Health     *provisioning.HealthSnapshot  `json:"health,omitempty"`
}

// Format renders the report as "json" or "yaml".
func (r Report) Format(output string) ([]byte, error) {
	switch output {
	case "", "yaml":
		return yaml.Marshal(r)
	case "json":
		return json.MarshalIndent(r, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported output format %q (want yaml or json)", output)
	}
}
