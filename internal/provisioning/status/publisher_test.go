package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

func readyRecords(gen int64) []provisioning.ResourceRecord {
	var out []provisioning.ResourceRecord
	for _, kind := range provisioning.AllKinds {
		rec := provisioning.NewRecord(kind, "psc-c1-"+kind.Label(), "p", gen)
		rec.State = provisioning.StateReady
		rec.URI = "uri"
		out = append(out, rec)
	}
	return out
}

func TestPublish(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		records     func() []provisioning.ResourceRecord
		wantStatus  metav1.ConditionStatus
		wantReason  string
		wantMessage string
	}{
		{
			name:       "all ready",
			records:    func() []provisioning.ResourceRecord { return readyRecords(1) },
			wantStatus: metav1.ConditionTrue,
			wantReason: ReasonAllResourcesReady,
		},
		{
			name:        "no records",
			records:     func() []provisioning.ResourceRecord { return nil },
			wantStatus:  metav1.ConditionFalse,
			wantReason:  ReasonResourceNotReady,
			wantMessage: "HealthCheck has not been reconciled",
		},
		{
			name: "first failing node is named with its error",
			records: func() []provisioning.ResourceRecord {
				recs := readyRecords(1)
				recs[2].State = provisioning.StateFailed
				recs[2].LastError = &provisioning.RecordError{Kind: cloud.ErrorQuota, Message: "quota exceeded"}
				recs[4].State = provisioning.StateFailed
				recs[4].LastError = &provisioning.RecordError{Kind: cloud.ErrorPermissionDenied, Message: "denied"}
				return recs
			},
			wantStatus:  metav1.ConditionFalse,
			wantReason:  string(cloud.ErrorQuota),
			wantMessage: "ForwardingRule psc-c1-forwarding-rule is Failed: quota exceeded",
		},
		{
			name: "pending downstream of ready prefix",
			records: func() []provisioning.ResourceRecord {
				return readyRecords(1)[:3]
			},
			wantStatus:  metav1.ConditionFalse,
			wantReason:  ReasonResourceNotReady,
			wantMessage: "ServiceAttachment has not been reconciled",
		},
		{
			name: "firewall failure blocks availability",
			records: func() []provisioning.ResourceRecord {
				recs := readyRecords(1)
				recs[6].State = provisioning.StateCreating
				return recs
			},
			wantStatus:  metav1.ConditionFalse,
			wantReason:  ReasonResourceNotReady,
			wantMessage: "FirewallRule psc-c1-firewall-rule is Creating",
		},
		{
			name: "ready for an older generation",
			records: func() []provisioning.ResourceRecord {
				recs := readyRecords(2)
				recs[0].ObservedGeneration = 1
				return recs
			},
			wantStatus:  metav1.ConditionFalse,
			wantReason:  ReasonResourceNotReady,
			wantMessage: "HealthCheck psc-c1-health-check observed generation 1, want 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gen := int64(1)
			if tt.name == "ready for an older generation" {
				gen = 2
			}
			c := Publish(tt.records(), gen)

			assert.Equal(t, ConditionAvailable, c.Type)
			assert.Equal(t, tt.wantStatus, c.Status)
			assert.Equal(t, tt.wantReason, c.Reason)
			assert.Equal(t, gen, c.ObservedGeneration)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, c.Message)
			}
		})
	}
}

func TestSetConditionKeepsTransitionTime(t *testing.T) {
	t.Parallel()
	var conditions []metav1.Condition

	first := Publish(nil, 1)
	first.LastTransitionTime = metav1.NewTime(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, SetCondition(&conditions, first))
	assert.False(t, IsAvailable(conditions))

	again := Publish(readyRecords(1)[:1], 1)
	SetCondition(&conditions, again)
	require.Len(t, conditions, 1)
	assert.Equal(t, first.LastTransitionTime, conditions[0].LastTransitionTime)

	SetCondition(&conditions, Publish(readyRecords(1), 1))
	assert.True(t, IsAvailable(conditions))
	assert.NotEqual(t, first.LastTransitionTime, conditions[0].LastTransitionTime)
}

func TestReportFormat(t *testing.T) {
	t.Parallel()
	r := Report{ClusterID: "c1", Generation: 3, Records: readyRecords(3)[:1]}

	out, err := r.Format("yaml")
	require.NoError(t, err)
	assert.Contains(t, string(out), "clusterId: c1")
	assert.Contains(t, string(out), "state: Ready")

	out, err = r.Format("json")
	require.NoError(t, err)
	assert.Contains(t, string(out), `"generation": 3`)

	_, err = r.Format("xml")
	assert.Error(t, err)
}
